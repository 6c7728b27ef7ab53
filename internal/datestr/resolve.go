package datestr

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// canonicalOrder fixes the positional order in which directive values and
// layout fragments are joined before parsing.
var canonicalOrder = []Directive{
	WeekdayAbbr, WeekdayName, WeekdayDigit,
	Year, YearShort,
	MonthAbbr, MonthName, MonthDigit,
	Day,
	Hour, Hour12, Minute, Second, Period, Microsecond,
	UTCOffset, ZoneName,
	LocaleDate, LocaleTime,
}

// requiredGroups lists the directive groups of which at least one member
// must be present for a map to resolve to a date. The year group never
// fails in practice because a missing year defaults to the current one
// before validation runs.
var requiredGroups = []struct {
	name    string
	members []Directive
}{
	{"year", []Directive{Year, YearShort}},
	{"month", []Directive{MonthAbbr, MonthName, MonthDigit}},
	{"day", []Directive{Day}},
}

// goLayouts maps directives to their time.Parse layout fragments. Weekday
// directives are absent on purpose: a weekday token never pins the calendar
// date, and %f is applied additively after parsing.
var goLayouts = map[Directive]string{
	Year:       "2006",
	YearShort:  "06",
	MonthAbbr:  "Jan",
	MonthName:  "January",
	MonthDigit: "1",
	Day:        "2",
	Hour:       "15",
	Hour12:     "3",
	Minute:     "4",
	Second:     "5",
	Period:     "pm",
	UTCOffset:  "-0700",
	ZoneName:   "MST",
}

// Resolver converts directive maps into concrete time values. Now is the
// clock used for the default-year heuristic and is injectable for tests.
//
// A fragment that omits the year resolves into the current calendar year.
// That is safe for "recurring this year" listings and wrong for pages that
// mean a different year without saying so; the source data does not
// disambiguate, so neither do we.
type Resolver struct {
	table *Table
	Now   func() time.Time
}

// NewResolver builds a resolver for the given locale.
func NewResolver(loc *Locale) *Resolver {
	return &Resolver{table: TableFor(loc), Now: time.Now}
}

// Table exposes the resolver's pattern table for tokenizing.
func (r *Resolver) Table() *Table { return r.table }

// Locale returns the resolver's locale.
func (r *Resolver) Locale() *Locale { return r.table.Locale() }

// Resolve validates a directive map and parses it into a time.Time. The
// input map is not mutated. A fully absent month or day group fails with
// *DateNotValidError.
func (r *Resolver) Resolve(m DirectiveMap) (time.Time, error) {
	complete := make(DirectiveMap, len(m)+1)
	for d, v := range m {
		complete[d] = v
	}
	if _, ok := complete[Year]; !ok {
		if _, ok := complete[YearShort]; !ok {
			complete[Year] = strconv.Itoa(r.Now().Year())
		}
	}

	for _, group := range requiredGroups {
		present := false
		for _, d := range group.members {
			if _, ok := complete[d]; ok {
				present = true
				break
			}
		}
		if !present {
			return time.Time{}, &DateNotValidError{Group: group.name, Missing: group.members}
		}
	}

	loc := r.table.Locale()
	var layouts, values []string
	micro := 0

	for _, d := range canonicalOrder {
		value, ok := complete[d]
		if !ok {
			continue
		}
		switch d {
		case WeekdayAbbr, WeekdayName, WeekdayDigit:
			continue
		case Microsecond:
			micro, _ = strconv.Atoi(value)
			continue
		case MonthAbbr, MonthName:
			month, ok := loc.MonthIndex(value)
			if !ok {
				return time.Time{}, fmt.Errorf("datestr: unknown month name %q", value)
			}
			if d == MonthAbbr {
				value = strings.ToLower(month.String()[:3])
			} else {
				value = strings.ToLower(month.String())
			}
		case ZoneName:
			value = strings.ToUpper(value)
		case LocaleDate:
			value = normalizeSeparators(value, ".")
		}
		layouts = append(layouts, layoutFor(loc, d))
		values = append(values, value)
	}

	layout := strings.Join(layouts, " ")
	joined := strings.Join(values, " ")
	parsed, err := time.Parse(layout, joined)
	if err != nil {
		return time.Time{}, fmt.Errorf("datestr: parsing %q as %q: %w", joined, layout, err)
	}
	if micro > 0 {
		parsed = parsed.Add(time.Duration(micro) * time.Microsecond)
	}
	return parsed, nil
}

// ResolveAll resolves every map, short-circuiting on the first failure.
func (r *Resolver) ResolveAll(maps []DirectiveMap) ([]time.Time, error) {
	out := make([]time.Time, 0, len(maps))
	for _, m := range maps {
		resolved, err := r.Resolve(m)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}
	return out, nil
}

// ParseDate tokenizes one fragment and resolves it.
func (r *Resolver) ParseDate(text string, order []Term) (time.Time, error) {
	m, err := Tokenize(r.table, text, order)
	if err != nil {
		return time.Time{}, err
	}
	return r.Resolve(m)
}

// ParseDates tokenizes several fragments, optionally complementing them
// against each other, and resolves each into a time value.
func (r *Resolver) ParseDates(texts []string, order []Term, complement bool) ([]time.Time, error) {
	var maps []DirectiveMap
	var err error
	if complement {
		maps, err = Complement(r.table, texts, order)
	} else {
		maps = make([]DirectiveMap, 0, len(texts))
		for _, text := range texts {
			var m DirectiveMap
			m, err = Tokenize(r.table, text, order)
			if err != nil {
				break
			}
			maps = append(maps, m)
		}
	}
	if err != nil {
		return nil, err
	}
	return r.ResolveAll(maps)
}

// ParseDateRange resolves a start and an end fragment and expands them into
// the full occurrence sequence across the span.
func (r *Resolver) ParseDateRange(start, end string, order []Term, complement bool) ([]time.Time, error) {
	resolved, err := r.ParseDates([]string{start, end}, order, complement)
	if err != nil {
		return nil, err
	}
	return Occurrences(resolved[0], resolved[1], nil), nil
}

func layoutFor(loc *Locale, d Directive) string {
	switch d {
	case LocaleDate:
		return loc.DateLayout
	case LocaleTime:
		return loc.TimeLayout
	}
	return goLayouts[d]
}

func normalizeSeparators(value, sep string) string {
	value = strings.ReplaceAll(value, "/", sep)
	value = strings.ReplaceAll(value, "-", sep)
	return value
}
