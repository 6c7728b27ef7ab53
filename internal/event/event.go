package event

import "time"

// Event is one persisted occurrence of a scraped event. A logical event
// spanning several days is stored as one Event per calendar day; the row
// identity is (OriginURL, StartTime, EndTime).
type Event struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	PlaceTitle string    `json:"place_title,omitempty"`
	City       string    `json:"city"`
	Address    string    `json:"address,omitempty"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Cover      string    `json:"cover,omitempty"`
	Description string   `json:"description,omitempty"`
	OriginURL  string    `json:"origin_url"`
	PostedID   int64     `json:"posted_id"`
	Origin     string    `json:"origin"`
	BookingURL string    `json:"booking_url,omitempty"`
	Language   string    `json:"language"`
	Categories []string  `json:"categories,omitempty"`
}

// Storage limits per text field, in characters. Values longer than the
// limit are silently truncated before writing.
const (
	TitleLimit       = 128
	PlaceTitleLimit  = 128
	CityLimit        = 128
	AddressLimit     = 512
	CoverLimit       = 2048
	DescriptionLimit = 4096
	OriginURLLimit   = 2048
	OriginLimit      = 300
	BookingURLLimit  = 512
)

// Truncate cuts s down to at most limit characters.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// TruncateFields applies every storage limit in place.
func (e *Event) TruncateFields() {
	e.Title = Truncate(e.Title, TitleLimit)
	e.PlaceTitle = Truncate(e.PlaceTitle, PlaceTitleLimit)
	e.City = Truncate(e.City, CityLimit)
	e.Address = Truncate(e.Address, AddressLimit)
	e.Cover = Truncate(e.Cover, CoverLimit)
	e.Description = Truncate(e.Description, DescriptionLimit)
	e.OriginURL = Truncate(e.OriginURL, OriginURLLimit)
	e.Origin = Truncate(e.Origin, OriginLimit)
	e.BookingURL = Truncate(e.BookingURL, BookingURLLimit)
}
