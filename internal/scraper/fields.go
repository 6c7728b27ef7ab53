package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FieldSpec describes how one raw field is pulled out of a document: the
// CSS selector of the element, optionally the attribute to read instead of
// the element text, and the value to fall back to when nothing matches.
type FieldSpec struct {
	Selector string `yaml:"selector"`
	Attr     string `yaml:"attr,omitempty"`
	Default  string `yaml:"default,omitempty"`
}

// SelectValue resolves one FieldSpec against a selection. Missing elements
// and missing attributes both yield the configured default.
func SelectValue(sel *goquery.Selection, spec FieldSpec) string {
	found := sel.Find(spec.Selector).First()
	if found.Length() == 0 {
		return spec.Default
	}
	if spec.Attr != "" {
		if value, ok := found.Attr(spec.Attr); ok {
			return value
		}
		return spec.Default
	}
	return strings.TrimSpace(found.Text())
}

// ExtractFields resolves every named FieldSpec against a selection,
// producing the raw field mapping for one scraped item.
func ExtractFields(sel *goquery.Selection, fields map[string]FieldSpec) map[string]string {
	out := make(map[string]string, len(fields))
	for name, spec := range fields {
		out[name] = SelectValue(sel, spec)
	}
	return out
}
