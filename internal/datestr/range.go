package datestr

import "time"

// TimeOfDay is the wall-clock time applied to interior days of a multi-day
// occurrence sequence.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Span is one occurrence pair: the concrete start and end of a single
// calendar-day instance of a scraped event.
type Span struct {
	Start time.Time
	End   time.Time
}

// DaysBetween returns every calendar day from start to end inclusive, one
// entry per day at start's time-of-day. When end precedes start the result
// is empty; callers that consider that an error must check beforehand.
func DaysBetween(start, end time.Time) []time.Time {
	n := daysApart(start, end)
	if n < 0 {
		return nil
	}
	out := make([]time.Time, 0, n+1)
	for day := 0; day <= n; day++ {
		out = append(out, start.AddDate(0, 0, day))
	}
	return out
}

// Occurrences expands a start/end pair into the sequence of date-times the
// span covers: start first, one entry per interior calendar day, end last.
// Interior days carry daily's wall-clock time, or start's when daily is nil.
// When start and end are equal the sequence collapses to a single entry.
func Occurrences(start, end time.Time, daily *TimeOfDay) []time.Time {
	if start.Equal(end) {
		return []time.Time{start}
	}

	out := []time.Time{start}
	base := start
	if daily != nil {
		base = time.Date(start.Year(), start.Month(), start.Day(),
			daily.Hour, daily.Minute, 0, 0, start.Location())
	}
	for day := 1; day < daysApart(start, end); day++ {
		out = append(out, base.AddDate(0, 0, day))
	}
	return append(out, end)
}

// StartEndPairs converts an occurrence sequence into per-day (start, end)
// pairs. A sequence confined to one calendar date yields the single pair
// (first, last). Otherwise the first pair keeps the real start time and is
// bounded at 23:59, every interior date runs from its entry to 23:59, and
// the last pair runs from midnight to the real end time.
func StartEndPairs(seq []time.Time) []Span {
	if len(seq) == 0 {
		return nil
	}
	first, last := seq[0], seq[len(seq)-1]
	if sameDate(first, last) {
		return []Span{{Start: first, End: last}}
	}

	spans := make([]Span, 0, len(seq))
	spans = append(spans, Span{Start: first, End: endOfDay(first)})
	for _, day := range seq[1 : len(seq)-1] {
		spans = append(spans, Span{Start: day, End: endOfDay(day)})
	}
	return append(spans, Span{Start: startOfDay(last), End: last})
}

func daysApart(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua) / (24 * time.Hour))
}

func sameDate(a, b time.Time) bool {
	return daysApart(a, b) == 0
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 0, 0, t.Location())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
