package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cityevents/eventline/internal/event"
)

const eventColumns = `id, title, place_title, city, address, start_time, end_time,
	cover, description, origin_url, posted_id, origin, booking_url, language`

// UpsertEvent writes one occurrence row. When a row with the same
// (origin_url, start_time, end_time) key exists its fields are updated in
// place and its categories are left untouched; otherwise a new row is
// inserted and every category is attached, created lazily by title. The
// whole operation runs in one transaction, and the unique index on the
// identity key keeps concurrent scrapers from duplicating rows.
func (s *Store) UpsertEvent(ctx context.Context, rec event.Event) (created bool, err error) {
	rec.TruncateFields()
	start := rec.StartTime.Format(time.RFC3339)
	end := rec.EndTime.Format(time.RFC3339)

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var id int64
		row := tx.QueryRowContext(ctx,
			`SELECT id FROM events WHERE origin_url = ? AND start_time = ? AND end_time = ?`,
			rec.OriginURL, start, end)
		switch err := row.Scan(&id); err {
		case nil:
			_, err2 := tx.ExecContext(ctx, `
				UPDATE events SET title = ?, place_title = ?, city = ?, address = ?,
					cover = ?, description = ?, origin = ?, booking_url = ?, language = ?
				WHERE id = ?`,
				rec.Title, rec.PlaceTitle, rec.City, rec.Address,
				rec.Cover, rec.Description, rec.Origin, rec.BookingURL, rec.Language,
				id)
			if err2 != nil {
				return fmt.Errorf("updating event: %w", err2)
			}
			return nil
		case sql.ErrNoRows:
			res, err2 := tx.ExecContext(ctx, `
				INSERT INTO events (title, place_title, city, address, start_time, end_time,
					cover, description, origin_url, posted_id, origin, booking_url, language)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?)`,
				rec.Title, rec.PlaceTitle, rec.City, rec.Address, start, end,
				rec.Cover, rec.Description, rec.OriginURL, rec.Origin, rec.BookingURL,
				rec.Language)
			if err2 != nil {
				return fmt.Errorf("inserting event: %w", err2)
			}
			id, err2 = res.LastInsertId()
			if err2 != nil {
				return fmt.Errorf("reading inserted id: %w", err2)
			}
			created = true
			return attachCategories(ctx, tx, id, rec.Categories)
		default:
			return fmt.Errorf("looking up event: %w", err)
		}
	})
	return created, err
}

// attachCategories resolves each title to a category row, creating missing
// ones, and links them to the event.
func attachCategories(ctx context.Context, tx *sql.Tx, eventID int64, titles []string) error {
	for _, title := range titles {
		if title == "" {
			continue
		}
		var catID int64
		row := tx.QueryRowContext(ctx, `SELECT id FROM categories WHERE title = ?`, title)
		if err := row.Scan(&catID); err == sql.ErrNoRows {
			res, err2 := tx.ExecContext(ctx, `INSERT INTO categories (title) VALUES (?)`, title)
			if err2 != nil {
				return fmt.Errorf("creating category %q: %w", title, err2)
			}
			catID, err2 = res.LastInsertId()
			if err2 != nil {
				return fmt.Errorf("reading category id: %w", err2)
			}
		} else if err != nil {
			return fmt.Errorf("looking up category %q: %w", title, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO event_categories (event_id, category_id) VALUES (?, ?)`,
			eventID, catID); err != nil {
			return fmt.Errorf("attaching category %q: %w", title, err)
		}
	}
	return nil
}

// GetEvent loads one row by its natural identity key.
func (s *Store) GetEvent(ctx context.Context, originURL string, start, end time.Time) (*event.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE origin_url = ? AND start_time = ? AND end_time = ?`,
		originURL, start.Format(time.RFC3339), end.Format(time.RFC3339))
	rec, err := scanEvent(row)
	if err != nil {
		return nil, err
	}
	rec.Categories, err = s.categoriesFor(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListUnposted returns every event not yet forwarded to the aggregation
// middleware, categories included, oldest start first.
func (s *Store) ListUnposted(ctx context.Context) ([]*event.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE posted_id = 0 ORDER BY start_time, id`)
	if err != nil {
		return nil, fmt.Errorf("listing unposted events: %w", err)
	}
	defer rows.Close()

	var out []*event.Event
	for rows.Next() {
		rec, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing unposted events: %w", err)
	}
	for _, rec := range out {
		if rec.Categories, err = s.categoriesFor(ctx, rec.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// MarkPosted records the id assigned by the middleware for a posted event.
func (s *Store) MarkPosted(ctx context.Context, id, postedID int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE events SET posted_id = ? WHERE id = ?`, postedID, id)
	if err != nil {
		return fmt.Errorf("marking event %d posted: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("marking event %d posted: no such event", id)
	}
	return nil
}

// Origins returns the distinct origin domains present in the store.
func (s *Store) Origins(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT origin FROM events ORDER BY origin`)
	if err != nil {
		return nil, fmt.Errorf("listing origins: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var origin string
		if err := rows.Scan(&origin); err != nil {
			return nil, fmt.Errorf("scanning origin: %w", err)
		}
		out = append(out, origin)
	}
	return out, rows.Err()
}

// CountByOrigin reports total and not-yet-posted row counts for one origin.
func (s *Store) CountByOrigin(ctx context.Context, origin string) (total, unposted int64, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN posted_id = 0 THEN 1 ELSE 0 END), 0)
		FROM events WHERE origin = ?`, origin)
	if err := row.Scan(&total, &unposted); err != nil {
		return 0, 0, fmt.Errorf("counting events for %q: %w", origin, err)
	}
	return total, unposted, nil
}

// DeleteByOrigin bulk-deletes every event of one origin and returns the
// number of removed rows. Category links go with the rows via cascade.
func (s *Store) DeleteByOrigin(ctx context.Context, origin string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE origin = ?`, origin)
	if err != nil {
		return 0, fmt.Errorf("deleting events for %q: %w", origin, err)
	}
	return res.RowsAffected()
}

func (s *Store) categoriesFor(ctx context.Context, eventID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.title FROM categories c
		JOIN event_categories ec ON ec.category_id = c.id
		WHERE ec.event_id = ? ORDER BY c.title`, eventID)
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*event.Event, error) {
	var rec event.Event
	var start, end string
	err := row.Scan(&rec.ID, &rec.Title, &rec.PlaceTitle, &rec.City, &rec.Address,
		&start, &end, &rec.Cover, &rec.Description, &rec.OriginURL,
		&rec.PostedID, &rec.Origin, &rec.BookingURL, &rec.Language)
	if err != nil {
		return nil, fmt.Errorf("scanning event: %w", err)
	}
	if rec.StartTime, err = time.Parse(time.RFC3339, start); err != nil {
		return nil, fmt.Errorf("parsing start_time: %w", err)
	}
	if rec.EndTime, err = time.Parse(time.RFC3339, end); err != nil {
		return nil, fmt.Errorf("parsing end_time: %w", err)
	}
	return &rec, nil
}
