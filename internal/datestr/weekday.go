package datestr

import (
	"regexp"
	"strings"
	"time"
)

// ExpandWeekdayRange enumerates the weekday names between start and end
// inclusive, Monday-first, wrapping across the week boundary when the end
// precedes the start (Fri-Mon yields friday..monday). Either bound may be a
// full or abbreviated name; the result always uses full names.
func ExpandWeekdayRange(start, end string, loc *Locale) ([]string, error) {
	startIdx, ok := loc.WeekdayIndex(start)
	if !ok {
		return nil, &WeekdayNameError{Name: start, Locale: loc.ID}
	}
	endIdx, ok := loc.WeekdayIndex(end)
	if !ok {
		return nil, &WeekdayNameError{Name: end, Locale: loc.ID}
	}

	names := loc.WeekdayNames[:]
	if endIdx >= startIdx {
		return append([]string(nil), names[startIdx:endIdx+1]...), nil
	}
	wrapped := append([]string(nil), names[startIdx:]...)
	return append(wrapped, names[:endIdx+1]...), nil
}

// ParseWeekdayList scans text for weekday tokens (full or short names,
// case-insensitive). An adjacent pair whose separating text is exactly one
// delimiter, optionally padded by single spaces, is treated as a range and
// expanded; other tokens are listed individually. Returns nil when the text
// contains no weekday token at all. The default delimiter set is "-".
func ParseWeekdayList(text string, loc *Locale, delimiters ...string) ([]string, error) {
	if len(delimiters) == 0 {
		delimiters = []string{"-"}
	}

	source := strings.Join(loc.WeekdayNames[:], "|") + "|" + strings.Join(loc.WeekdayAbbrs[:], "|")
	re := regexp.MustCompile(`(?:` + source + `)`)

	lowered := strings.ToLower(text)
	matches := re.FindAllStringIndex(lowered, -1)
	if len(matches) == 0 {
		return nil, nil
	}

	canonical := func(token string) string {
		idx, _ := loc.WeekdayIndex(token)
		return loc.WeekdayNames[idx]
	}

	out := make([]string, 0, len(matches))
	prev := matches[0]
	// prevPending marks a token not yet emitted: it may still turn out to
	// be the start of a range.
	prevPending := true
	for _, curr := range matches[1:] {
		between := lowered[prev[1]:curr[0]]
		if matchesDelimiter(between, delimiters) {
			expanded, err := ExpandWeekdayRange(
				lowered[prev[0]:prev[1]],
				lowered[curr[0]:curr[1]],
				loc,
			)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
			prev = curr
			prevPending = false
			continue
		}
		if prevPending {
			out = append(out, canonical(lowered[prev[0]:prev[1]]))
		}
		prev = curr
		prevPending = true
	}
	if prevPending {
		out = append(out, canonical(lowered[prev[0]:prev[1]]))
	}

	return out, nil
}

// WeekdayDates pins expanded weekday names to concrete date-times in the
// anchor's week (Monday-first), keeping the anchor's time-of-day. Weekday
// occurrences scraped without explicit dates resolve against the listing's
// date anchor this way.
func WeekdayDates(anchor time.Time, names []string, loc *Locale) ([]time.Time, error) {
	// Monday-first index of the anchor's own weekday.
	anchorIdx := (int(anchor.Weekday()) + 6) % 7
	monday := anchor.AddDate(0, 0, -anchorIdx)

	out := make([]time.Time, 0, len(names))
	for _, name := range names {
		idx, ok := loc.WeekdayIndex(name)
		if !ok {
			return nil, &WeekdayNameError{Name: name, Locale: loc.ID}
		}
		out = append(out, monday.AddDate(0, 0, idx))
	}
	return out, nil
}

func matchesDelimiter(between string, delimiters []string) bool {
	for _, delim := range delimiters {
		trimmed := between
		trimmed = strings.TrimPrefix(trimmed, " ")
		trimmed = strings.TrimSuffix(trimmed, " ")
		if trimmed == delim {
			return true
		}
	}
	return false
}
