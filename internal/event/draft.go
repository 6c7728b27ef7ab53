package event

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDraft marks a draft that is missing required scraped fields.
var ErrInvalidDraft = errors.New("invalid event draft")

// Draft is the ephemeral record built while processing one scraped item.
// Known fields have explicit slots; site-specific extras that only matter to
// a source's post-processors live in Extra. Raw date text stays in
// StartText/EndText/DateTexts until the normalization step resolves it into
// StartTime/EndTime.
type Draft struct {
	Title       string
	PlaceTitle  string
	City        string
	Address     string
	Cover       string
	Description string
	OriginURL   string
	BookingURL  string
	Origin      string

	StartText string
	EndText   string
	DateTexts []string

	StartTime time.Time
	EndTime   time.Time

	Categories []string
	Extra      map[string]string
}

// Validate checks the fields every persisted event requires: title, city and
// origin URL must be present, and at least one of address or place title.
func (d *Draft) Validate() error {
	var missing []string
	if d.Title == "" {
		missing = append(missing, "title")
	}
	if d.City == "" {
		missing = append(missing, "city")
	}
	if d.OriginURL == "" {
		missing = append(missing, "origin_url")
	}
	if d.Address == "" && d.PlaceTitle == "" {
		missing = append(missing, "address or place_title")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidDraft, strings.Join(missing, ", "))
	}
	return nil
}

// Record builds the Event row template for one occurrence pair. Storage
// limits are applied here so every write path truncates consistently.
func (d *Draft) Record(start, end time.Time, language string) Event {
	e := Event{
		Title:       d.Title,
		PlaceTitle:  d.PlaceTitle,
		City:        d.City,
		Address:     d.Address,
		StartTime:   start,
		EndTime:     end,
		Cover:       d.Cover,
		Description: d.Description,
		OriginURL:   d.OriginURL,
		Origin:      d.Origin,
		BookingURL:  d.BookingURL,
		Language:    language,
		Categories:  append([]string(nil), d.Categories...),
	}
	e.TruncateFields()
	return e
}
