package datestr

import (
	"errors"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	table := TableFor(English)

	tests := []struct {
		name  string
		text  string
		order []Term
		want  DirectiveMap
	}{
		{
			name:  "Full date with month name",
			text:  "12 October 2017",
			order: PlainOrder(Year, MonthName, Day),
			want:  DirectiveMap{Year: "2017", MonthName: "october", Day: "12"},
		},
		{
			name:  "Date and time",
			text:  "Opens 12 October 2017 at 19:30",
			order: PlainOrder(Year, MonthName, Day, Hour, Minute),
			want: DirectiveMap{
				Year: "2017", MonthName: "october", Day: "12",
				Hour: "19", Minute: "30",
			},
		},
		{
			name:  "Matched text is removed before later directives run",
			text:  "October 2017",
			order: PlainOrder(Year, MonthName, Day),
			// The 4-digit year is consumed first, so %d finds no digits left.
			want: DirectiveMap{Year: "2017", MonthName: "october"},
		},
		{
			name:  "Generic directive listed first shadows the year",
			text:  "2017",
			order: PlainOrder(Day, Year),
			// Order sensitivity: %d greedily takes the first two digits.
			want: DirectiveMap{Day: "20"},
		},
		{
			name:  "Repeated directive in order is matched once",
			text:  "12 13 14",
			order: PlainOrder(Day, Day, Hour),
			want:  DirectiveMap{Day: "12", Hour: "13"},
		},
		{
			name:  "Twelve hour clock with period",
			text:  "7 PM",
			order: PlainOrder(Hour12, Period),
			want:  DirectiveMap{Hour12: "7", Period: "pm"},
		},
		{
			name:  "Day only matches directly after month name",
			text:  "hall 5, October 12",
			order: []Term{D(Year), DAfter(Day, MonthName), D(MonthName)},
			// The contextual form skips the bare "5".
			want: DirectiveMap{MonthName: "october", Day: "12"},
		},
		{
			name:  "Contextual form with no context present matches nothing",
			text:  "hall 5",
			order: []Term{DAfter(Day, MonthName)},
			want:  DirectiveMap{},
		},
		{
			name:  "Locale date and time",
			text:  "12/10/17 18:00:00",
			order: PlainOrder(LocaleDate, LocaleTime),
			want:  DirectiveMap{LocaleDate: "12/10/17", LocaleTime: "18:00:00"},
		},
		{
			name:  "No match at all",
			text:  "no dates here",
			order: PlainOrder(Year, MonthDigit, Day),
			want:  DirectiveMap{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(table, tt.text, tt.order)
			if err != nil {
				t.Fatalf("Tokenize(%q) error = %v", tt.text, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestTokenizeContextBeforeTerm(t *testing.T) {
	table := TableFor(English)

	got, err := Tokenize(table, "12 October", []Term{DBefore(Day, MonthName), D(MonthName)})
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	want := DirectiveMap{Day: "12", MonthName: "october"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenizeRussian(t *testing.T) {
	table := TableFor(Russian)

	got, err := Tokenize(table, "12 Октября 2017", PlainOrder(Year, MonthName, Day))
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	want := DirectiveMap{Year: "2017", MonthName: "октября", Day: "12"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenizeInvalidDirective(t *testing.T) {
	table := TableFor(English)

	_, err := Tokenize(table, "12 October", PlainOrder(Directive("%Q")))
	var invalid *InvalidDirectiveError
	if !errors.As(err, &invalid) {
		t.Fatalf("Tokenize() error = %v, want *InvalidDirectiveError", err)
	}
	if invalid.Directive != "%Q" {
		t.Errorf("InvalidDirectiveError.Directive = %q, want %%Q", invalid.Directive)
	}
}

func TestComplement(t *testing.T) {
	table := TableFor(English)

	tests := []struct {
		name      string
		fragments []string
		order     []Term
		want      []DirectiveMap
	}{
		{
			name:      "Day node borrows month and year from sibling",
			fragments: []string{"12", "October 2017"},
			order:     PlainOrder(Year, MonthName, Day),
			want: []DirectiveMap{
				{Day: "12", MonthName: "october", Year: "2017"},
				{MonthName: "october", Year: "2017", Day: "12"},
			},
		},
		{
			name:      "Own matches are never overwritten",
			fragments: []string{"12 October", "14 November 2017"},
			order:     PlainOrder(Year, MonthName, Day),
			want: []DirectiveMap{
				{Day: "12", MonthName: "october", Year: "2017"},
				{Day: "14", MonthName: "november", Year: "2017"},
			},
		},
		{
			name:      "First supplier wins for a shared gap",
			fragments: []string{"12", "October 2017", "November 2018"},
			order:     PlainOrder(Year, MonthName, Day),
			want: []DirectiveMap{
				{Day: "12", MonthName: "october", Year: "2017"},
				{MonthName: "october", Year: "2017", Day: "12"},
				{MonthName: "november", Year: "2018", Day: "12"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Complement(table, tt.fragments, tt.order)
			if err != nil {
				t.Fatalf("Complement(%v) error = %v", tt.fragments, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Complement(%v) = %v, want %v", tt.fragments, got, tt.want)
			}
		})
	}
}
