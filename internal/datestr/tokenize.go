package datestr

import (
	"regexp"
	"strings"
)

// Term is one entry of a tokenizer match order: a directive plus optional
// adjacency context. When After (or Before) is set the directive only
// matches directly after (before) a match of the context directive,
// disambiguating cases like a day-of-month that must follow a month name
// versus a bare two-digit year.
type Term struct {
	Directive Directive
	After     Directive
	Before    Directive
}

// D is shorthand for a context-free term.
func D(d Directive) Term { return Term{Directive: d} }

// DAfter matches d only directly after a match of after.
func DAfter(d, after Directive) Term { return Term{Directive: d, After: after} }

// DBefore matches d only directly before a match of before.
func DBefore(d, before Directive) Term { return Term{Directive: d, Before: before} }

// PlainOrder builds a match order of context-free terms.
func PlainOrder(ds ...Directive) []Term {
	order := make([]Term, len(ds))
	for i, d := range ds {
		order[i] = D(d)
	}
	return order
}

// termPattern resolves a term into a concrete regexp with the target
// directive in capture group 1. Context directives become part of the
// enclosing expression so only the target text is consumed by the tokenizer.
func (t *Table) termPattern(term Term) (*regexp.Regexp, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if re, ok := t.contextual[term]; ok {
		return re, nil
	}

	src, ok := t.sources[term.Directive]
	if !ok {
		return nil, &InvalidDirectiveError{Directive: term.Directive}
	}
	var b strings.Builder
	if term.After != "" {
		ctx, ok := t.sources[term.After]
		if !ok {
			return nil, &InvalidDirectiveError{Directive: term.After}
		}
		b.WriteString(`(?:` + ctx + `) ?`)
	}
	b.WriteString(`((?:` + src + `))`)
	if term.Before != "" {
		ctx, ok := t.sources[term.Before]
		if !ok {
			return nil, &InvalidDirectiveError{Directive: term.Before}
		}
		b.WriteString(` ?(?:` + ctx + `)`)
	}
	re := regexp.MustCompile(b.String())
	t.contextual[term] = re
	return re, nil
}

// Tokenize extracts the first occurrence of each ordered directive from
// text, returning the accumulated directive map. The matched substring is
// removed from the working text so later, more general directives cannot
// re-match it; order matters and callers must list specific or contextual
// terms before generic ones that could shadow them. Directives absent from
// the text are simply missing from the result.
func Tokenize(t *Table, text string, order []Term) (DirectiveMap, error) {
	work := strings.ToLower(text)
	out := make(DirectiveMap)

	for _, term := range order {
		if _, done := out[term.Directive]; done {
			continue
		}

		var start, end int
		if term.After == "" && term.Before == "" {
			re, err := t.Pattern(term.Directive)
			if err != nil {
				return nil, err
			}
			loc := re.FindStringIndex(work)
			if loc == nil {
				continue
			}
			start, end = loc[0], loc[1]
		} else {
			re, err := t.termPattern(term)
			if err != nil {
				return nil, err
			}
			m := re.FindStringSubmatchIndex(work)
			if m == nil {
				continue
			}
			// Group 1 is the target; context text stays in place.
			start, end = m[2], m[3]
		}

		out[term.Directive] = work[start:end]
		work = work[:start] + work[end:]
	}

	return out, nil
}
