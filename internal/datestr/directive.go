package datestr

import (
	"regexp"
	"strings"
	"sync"
)

// Directive names one date/time component using strptime notation.
type Directive string

const (
	WeekdayAbbr  Directive = "%a"
	WeekdayName  Directive = "%A"
	WeekdayDigit Directive = "%w"
	Day          Directive = "%d"
	MonthDigit   Directive = "%m"
	YearShort    Directive = "%y"
	Year         Directive = "%Y"
	Hour         Directive = "%H"
	Hour12       Directive = "%I"
	Period       Directive = "%p"
	Minute       Directive = "%M"
	Second       Directive = "%S"
	Microsecond  Directive = "%f"
	MonthAbbr    Directive = "%b"
	MonthName    Directive = "%B"
	UTCOffset    Directive = "%z"
	ZoneName     Directive = "%Z"
	LocaleDate   Directive = "%x"
	LocaleTime   Directive = "%X"
)

// DirectiveMap holds the textual value matched for each directive of one
// tokenized fragment. Insertion order is irrelevant.
type DirectiveMap map[Directive]string

// fixedPatterns are the locale-independent pattern sources. Sources must not
// contain capture groups; the tokenizer wraps them as needed.
var fixedPatterns = map[Directive]string{
	WeekdayDigit: `[0-6]`,
	Day:          `\d?\d`,
	MonthDigit:   `\d?\d`,
	YearShort:    `\d\d`,
	Year:         `\d\d\d\d`,
	Hour:         `\d?\d`,
	Hour12:       `\d?\d`,
	Period:       `am|pm`,
	Minute:       `\d?\d`,
	Second:       `\d?\d`,
	Microsecond:  `\d{6}`,
	UTCOffset:    `[+-]\d\d\d\d`,
	ZoneName:     `utc|est|cst|msk`,
	LocaleDate:   `\d\d[/.-]\d\d[/.-]\d\d`,
	LocaleTime:   `\d?\d:\d?\d:\d?\d`,
}

// Table maps directives to compiled matching patterns for one locale. Name
// directives (%a %A %b %B) are alternations of the locale's calendar names.
// A Table is immutable after construction apart from its contextual-pattern
// cache, which is mutex-guarded, so one Table may be shared by concurrent
// tokenizer calls.
type Table struct {
	locale  *Locale
	sources map[Directive]string
	plain   map[Directive]*regexp.Regexp

	mu         sync.Mutex
	contextual map[Term]*regexp.Regexp
}

// NewTable builds and compiles the pattern table for loc.
func NewTable(loc *Locale) *Table {
	sources := make(map[Directive]string, len(fixedPatterns)+4)
	for d, src := range fixedPatterns {
		sources[d] = src
	}
	sources[WeekdayAbbr] = strings.Join(loc.WeekdayAbbrs[:], "|")
	sources[WeekdayName] = strings.Join(loc.WeekdayNames[:], "|")
	sources[MonthAbbr] = strings.Join(loc.MonthAbbrs[:], "|")
	sources[MonthName] = strings.Join(loc.MonthNames[:], "|")

	plain := make(map[Directive]*regexp.Regexp, len(sources))
	for d, src := range sources {
		plain[d] = regexp.MustCompile(`(?:` + src + `)`)
	}

	return &Table{
		locale:     loc,
		sources:    sources,
		plain:      plain,
		contextual: make(map[Term]*regexp.Regexp),
	}
}

// Locale returns the locale the table was built for.
func (t *Table) Locale() *Locale { return t.locale }

// Pattern returns the compiled pattern for a directive.
func (t *Table) Pattern(d Directive) (*regexp.Regexp, error) {
	re, ok := t.plain[d]
	if !ok {
		return nil, &InvalidDirectiveError{Directive: d}
	}
	return re, nil
}

var (
	tablesMu sync.Mutex
	tables   = map[string]*Table{}
)

// TableFor returns the cached table for a locale, building it on first use.
// The cache is keyed by locale ID, so differently-localized callers never
// invalidate each other's tables.
func TableFor(loc *Locale) *Table {
	tablesMu.Lock()
	defer tablesMu.Unlock()
	if t, ok := tables[loc.ID]; ok {
		return t
	}
	t := NewTable(loc)
	tables[loc.ID] = t
	return t
}
