package datestr

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Locale carries the calendar name tables used to build matching patterns
// and to canonicalize matched name values. Weekday tables are Monday-first.
// All names are stored lower case; lookups are case-insensitive.
type Locale struct {
	ID string

	WeekdayNames [7]string
	WeekdayAbbrs [7]string
	MonthNames   [12]string
	MonthAbbrs   [12]string

	// DateLayout and TimeLayout parse %x and %X values after their
	// separators have been normalized to the layout's separator.
	DateLayout string
	TimeLayout string
}

// English is the default locale.
var English = &Locale{
	ID: "en",
	WeekdayNames: [7]string{
		"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	},
	WeekdayAbbrs: [7]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"},
	MonthNames: [12]string{
		"january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december",
	},
	MonthAbbrs: [12]string{
		"jan", "feb", "mar", "apr", "may", "jun",
		"jul", "aug", "sep", "oct", "nov", "dec",
	},
	DateLayout: "01.02.06",
	TimeLayout: "15:04:05",
}

// Russian uses the genitive month forms that appear in listing dates
// ("12 октября 2017").
var Russian = &Locale{
	ID: "ru",
	WeekdayNames: [7]string{
		"понедельник", "вторник", "среда", "четверг", "пятница", "суббота", "воскресенье",
	},
	WeekdayAbbrs: [7]string{"пн", "вт", "ср", "чт", "пт", "сб", "вс"},
	MonthNames: [12]string{
		"января", "февраля", "марта", "апреля", "мая", "июня",
		"июля", "августа", "сентября", "октября", "ноября", "декабря",
	},
	MonthAbbrs: [12]string{
		"янв", "фев", "мар", "апр", "мая", "июн",
		"июл", "авг", "сен", "окт", "ноя", "дек",
	},
	DateLayout: "02.01.06",
	TimeLayout: "15:04:05",
}

var (
	localeMu sync.RWMutex
	locales  = map[string]*Locale{
		English.ID: English,
		Russian.ID: Russian,
	}
)

// RegisterLocale makes a locale resolvable via LookupLocale. Registering an
// ID twice replaces the previous entry.
func RegisterLocale(l *Locale) {
	localeMu.Lock()
	defer localeMu.Unlock()
	locales[l.ID] = l
}

// LookupLocale returns the locale registered under id.
func LookupLocale(id string) (*Locale, error) {
	localeMu.RLock()
	defer localeMu.RUnlock()
	if l, ok := locales[id]; ok {
		return l, nil
	}
	return nil, fmt.Errorf("datestr: unknown locale %q", id)
}

// MonthIndex resolves a full or abbreviated month name to its time.Month.
func (l *Locale) MonthIndex(name string) (time.Month, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range l.MonthNames {
		if n == name {
			return time.Month(i + 1), true
		}
	}
	for i, n := range l.MonthAbbrs {
		if n == name {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

// WeekdayIndex resolves a full or abbreviated weekday name to its
// Monday-first index (0..6).
func (l *Locale) WeekdayIndex(name string) (int, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range l.WeekdayNames {
		if n == name {
			return i, true
		}
	}
	for i, n := range l.WeekdayAbbrs {
		if n == name {
			return i, true
		}
	}
	return 0, false
}
