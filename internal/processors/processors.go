// Package processors contains small composable post-processing steps applied
// to event drafts between field extraction and persistence. Each source
// configures its own chain.
package processors

import (
	"fmt"
	"regexp"
	"time"

	"github.com/cityevents/eventline/internal/datestr"
	"github.com/cityevents/eventline/internal/event"
	"github.com/cityevents/eventline/internal/scraper"
)

// Processor mutates one draft, failing the item on error.
type Processor func(*event.Draft) error

// Apply runs every processor in order, stopping at the first error.
func Apply(d *event.Draft, procs ...Processor) error {
	for _, proc := range procs {
		if err := proc(d); err != nil {
			return err
		}
	}
	return nil
}

// Field accessors for processors that operate on selected draft slots.
var (
	OriginURL  = func(d *event.Draft) *string { return &d.OriginURL }
	Cover      = func(d *event.Draft) *string { return &d.Cover }
	BookingURL = func(d *event.Draft) *string { return &d.BookingURL }
	Title      = func(d *event.Draft) *string { return &d.Title }
	Address    = func(d *event.Draft) *string { return &d.Address }
)

// AddRoot resolves the selected URL fields against the scraper's root URL.
func AddRoot(sc *scraper.Scraper, fields ...func(*event.Draft) *string) Processor {
	return func(d *event.Draft) error {
		for _, field := range fields {
			slot := field(d)
			*slot = sc.AddRoot(*slot)
		}
		return nil
	}
}

// AddPrefix prepends a fixed prefix to the selected fields.
func AddPrefix(prefix string, fields ...func(*event.Draft) *string) Processor {
	return func(d *event.Draft) error {
		for _, field := range fields {
			slot := field(d)
			*slot = prefix + *slot
		}
		return nil
	}
}

// CategoryFromURL derives the category list from the first capture group of
// re matched against the origin URL; no match leaves the list empty.
func CategoryFromURL(re *regexp.Regexp) Processor {
	return func(d *event.Draft) error {
		if m := re.FindStringSubmatch(d.OriginURL); m != nil {
			d.Categories = []string{m[1]}
		} else {
			d.Categories = nil
		}
		return nil
	}
}

// StartTimeFromText resolves the raw start fragment into StartTime.
func StartTimeFromText(r *datestr.Resolver, order []datestr.Term) Processor {
	return func(d *event.Draft) error {
		start, err := r.ParseDate(d.StartText, order)
		if err != nil {
			return fmt.Errorf("start time from %q: %w", d.StartText, err)
		}
		d.StartTime = start
		return nil
	}
}

// TimesFromTexts resolves the start and end fragments together, letting each
// borrow directives the other matched.
func TimesFromTexts(r *datestr.Resolver, order []datestr.Term, complement bool) Processor {
	return func(d *event.Draft) error {
		resolved, err := r.ParseDates([]string{d.StartText, d.EndText}, order, complement)
		if err != nil {
			return fmt.Errorf("times from %q and %q: %w", d.StartText, d.EndText, err)
		}
		d.StartTime, d.EndTime = resolved[0], resolved[1]
		return nil
	}
}

// EndOfDay sets the end time to 23:59 on the start date. Used for sources
// that publish only an opening time.
func EndOfDay() Processor {
	return func(d *event.Draft) error {
		s := d.StartTime
		d.EndTime = time.Date(s.Year(), s.Month(), s.Day(), 23, 59, 0, 0, s.Location())
		return nil
	}
}

// Localize re-interprets naive (UTC-parsed) start and end times as wall
// clock times in loc.
func Localize(loc *time.Location) Processor {
	return func(d *event.Draft) error {
		d.StartTime = rebase(d.StartTime, loc)
		d.EndTime = rebase(d.EndTime, loc)
		return nil
	}
}

func rebase(t time.Time, loc *time.Location) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(),
		t.Second(), t.Nanosecond(), loc)
}
