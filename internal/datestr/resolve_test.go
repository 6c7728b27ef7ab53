package datestr

import (
	"errors"
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2017, time.June, 15, 12, 0, 0, 0, time.UTC)
}

func newTestResolver(loc *Locale) *Resolver {
	r := NewResolver(loc)
	r.Now = fixedNow
	return r
}

func TestResolve(t *testing.T) {
	r := newTestResolver(English)

	tests := []struct {
		name string
		m    DirectiveMap
		want time.Time
	}{
		{
			name: "Year month name day",
			m:    DirectiveMap{Year: "2017", MonthName: "october", Day: "12"},
			want: time.Date(2017, time.October, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "Short year and month abbreviation",
			m:    DirectiveMap{YearShort: "17", MonthAbbr: "oct", Day: "3"},
			want: time.Date(2017, time.October, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "Numeric month with time of day",
			m: DirectiveMap{
				Year: "2017", MonthDigit: "10", Day: "12",
				Hour: "19", Minute: "30",
			},
			want: time.Date(2017, time.October, 12, 19, 30, 0, 0, time.UTC),
		},
		{
			name: "Missing year defaults to the current one",
			m:    DirectiveMap{MonthName: "october", Day: "12"},
			want: time.Date(2017, time.October, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "Twelve hour clock with period",
			m: DirectiveMap{
				Year: "2017", MonthDigit: "6", Day: "1",
				Hour12: "7", Period: "pm",
			},
			want: time.Date(2017, time.June, 1, 19, 0, 0, 0, time.UTC),
		},
		{
			name: "Weekday tokens do not pin the date",
			m: DirectiveMap{
				WeekdayName: "thursday",
				Year:        "2017", MonthName: "october", Day: "12",
			},
			want: time.Date(2017, time.October, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "Seconds and microseconds",
			m: DirectiveMap{
				Year: "2017", MonthDigit: "1", Day: "2",
				Hour: "3", Minute: "4", Second: "5", Microsecond: "000123",
			},
			want: time.Date(2017, time.January, 2, 3, 4, 5, 123000, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.m)
			if err != nil {
				t.Fatalf("Resolve(%v) error = %v", tt.m, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Resolve(%v) = %v, want %v", tt.m, got, tt.want)
			}
		})
	}
}

func TestResolveRequiredGroups(t *testing.T) {
	r := newTestResolver(English)

	tests := []struct {
		name      string
		m         DirectiveMap
		wantGroup string
	}{
		{
			name:      "Missing month group",
			m:         DirectiveMap{Year: "2017", Day: "12"},
			wantGroup: "month",
		},
		{
			name:      "Missing day group",
			m:         DirectiveMap{Year: "2017", MonthName: "october"},
			wantGroup: "day",
		},
		{
			name: "Locale date alone still lacks month and day directives",
			// %x carries a full date but does not satisfy the month/day
			// groups; inherited from the source engine.
			m:         DirectiveMap{LocaleDate: "12.10.17"},
			wantGroup: "month",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(tt.m)
			var notValid *DateNotValidError
			if !errors.As(err, &notValid) {
				t.Fatalf("Resolve(%v) error = %v, want *DateNotValidError", tt.m, err)
			}
			if notValid.Group != tt.wantGroup {
				t.Errorf("DateNotValidError.Group = %q, want %q", notValid.Group, tt.wantGroup)
			}
		})
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	r := newTestResolver(English)

	m := DirectiveMap{MonthName: "october", Day: "12"}
	if _, err := r.Resolve(m); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, ok := m[Year]; ok {
		t.Errorf("Resolve() injected the default year into the caller's map")
	}
}

func TestResolveAllShortCircuits(t *testing.T) {
	r := newTestResolver(English)

	maps := []DirectiveMap{
		{Year: "2017", MonthName: "october", Day: "12"},
		{Year: "2017"}, // month group missing
		{Year: "2017", MonthName: "november", Day: "1"},
	}
	got, err := r.ResolveAll(maps)
	if err == nil {
		t.Fatal("ResolveAll() error = nil, want *DateNotValidError")
	}
	if got != nil {
		t.Errorf("ResolveAll() = %v, want nil on failure", got)
	}
}

func TestResolveRussianMonthNames(t *testing.T) {
	r := newTestResolver(Russian)

	got, err := r.Resolve(DirectiveMap{Year: "2017", MonthName: "октября", Day: "12"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := time.Date(2017, time.October, 12, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}
}

func TestParseDate(t *testing.T) {
	r := newTestResolver(English)

	got, err := r.ParseDate("12 October 2017", PlainOrder(Year, MonthName, Day))
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	want := time.Date(2017, time.October, 12, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseDate() = %v, want %v", got, want)
	}
}

func TestParseDatesWithComplement(t *testing.T) {
	r := newTestResolver(English)

	got, err := r.ParseDates([]string{"12", "October 2017"}, PlainOrder(Year, MonthName, Day), true)
	if err != nil {
		t.Fatalf("ParseDates() error = %v", err)
	}
	want := time.Date(2017, time.October, 12, 0, 0, 0, 0, time.UTC)
	if len(got) != 2 {
		t.Fatalf("ParseDates() returned %d values, want 2", len(got))
	}
	for i, ts := range got {
		if !ts.Equal(want) {
			t.Errorf("ParseDates()[%d] = %v, want %v", i, ts, want)
		}
	}
}

func TestParseDateRange(t *testing.T) {
	r := newTestResolver(English)

	got, err := r.ParseDateRange("12 October 2017", "14 October 2017",
		PlainOrder(Year, MonthName, Day), false)
	if err != nil {
		t.Fatalf("ParseDateRange() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ParseDateRange() returned %d occurrences, want 3", len(got))
	}
	if got[0].Day() != 12 || got[1].Day() != 13 || got[2].Day() != 14 {
		t.Errorf("ParseDateRange() days = %d,%d,%d, want 12,13,14",
			got[0].Day(), got[1].Day(), got[2].Day())
	}
}

// Formatting a known instant with a directive set and feeding the text back
// through tokenize and resolve must reproduce the instant.
func TestTokenizeResolveRoundTrip(t *testing.T) {
	r := newTestResolver(English)
	table := r.Table()

	tests := []struct {
		name   string
		layout string
		order  []Term
		want   time.Time
	}{
		{
			name:   "Date with month name",
			layout: "2 January 2006",
			order:  PlainOrder(Year, MonthName, Day),
			want:   time.Date(2019, time.March, 8, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "Date and time",
			layout: "2 Jan 2006 15:04",
			order:  PlainOrder(Year, MonthAbbr, Day, Hour, Minute),
			want:   time.Date(2021, time.December, 31, 18, 45, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := tt.want.Format(tt.layout)
			m, err := Tokenize(table, text, tt.order)
			if err != nil {
				t.Fatalf("Tokenize(%q) error = %v", text, err)
			}
			got, err := r.Resolve(m)
			if err != nil {
				t.Fatalf("Resolve(%v) error = %v", m, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("round trip of %q = %v, want %v", text, got, tt.want)
			}
		})
	}
}
