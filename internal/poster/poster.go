// Package poster forwards persisted events to the aggregation middleware.
// Failures are per-event: a post that keeps failing after bounded retries is
// skipped and the batch moves on.
package poster

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dghubble/sling"

	"github.com/cityevents/eventline/internal/event"
	"github.com/cityevents/eventline/internal/logger"
	"github.com/cityevents/eventline/internal/storage"
)

const eventsPath = "events/multilanguage-events/"

// Config holds the middleware endpoint settings.
type Config struct {
	BaseURL       string
	Token         string
	PreActionPath string
	MaxRetries    uint64
}

// Client posts events and pre-action notices to the middleware.
type Client struct {
	base       *sling.Sling
	store      *storage.Store
	preAction  string
	maxRetries uint64
}

// New creates a poster client over the given store.
func New(store *storage.Store, cfg Config) *Client {
	base := sling.New().
		Client(&http.Client{Timeout: 30 * time.Second}).
		Base(cfg.BaseURL).
		Set("Authorization", "Token "+cfg.Token)
	retries := cfg.MaxRetries
	if retries == 0 {
		retries = 3
	}
	return &Client{
		base:       base,
		store:      store,
		preAction:  cfg.PreActionPath,
		maxRetries: retries,
	}
}

// eventPayload mirrors the middleware contract: date-times travel as Unix
// timestamps.
type eventPayload struct {
	Title       string   `json:"title"`
	PlaceTitle  string   `json:"place_title,omitempty"`
	City        string   `json:"city"`
	Address     string   `json:"address,omitempty"`
	StartTime   int64    `json:"start_time"`
	EndTime     int64    `json:"end_time"`
	Cover       string   `json:"cover,omitempty"`
	Description string   `json:"description,omitempty"`
	OriginURL   string   `json:"origin_url"`
	Origin      string   `json:"origin"`
	BookingURL  string   `json:"booking_url,omitempty"`
	Language    string   `json:"language"`
	Categories  []string `json:"categories,omitempty"`
}

type postResult struct {
	ID int64 `json:"id"`
}

func payloadFor(e *event.Event) eventPayload {
	return eventPayload{
		Title:       e.Title,
		PlaceTitle:  e.PlaceTitle,
		City:        e.City,
		Address:     e.Address,
		StartTime:   e.StartTime.Unix(),
		EndTime:     e.EndTime.Unix(),
		Cover:       e.Cover,
		Description: e.Description,
		OriginURL:   e.OriginURL,
		Origin:      e.Origin,
		BookingURL:  e.BookingURL,
		Language:    e.Language,
		Categories:  e.Categories,
	}
}

// PostEvents forwards every not-yet-posted event. Each accepted event is
// marked with the id the middleware assigned. Returns how many events were
// posted; per-event failures are logged and skipped.
func (c *Client) PostEvents(ctx context.Context) (int, error) {
	unposted, err := c.store.ListUnposted(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing unposted events: %w", err)
	}
	logger.Debug("posting events", logger.Fields{"count": len(unposted)})

	posted := 0
	for _, evt := range unposted {
		id, err := c.postOne(ctx, evt)
		if err != nil {
			logger.Error("posting event failed, skipping", logger.Fields{
				"event_id":   evt.ID,
				"origin_url": evt.OriginURL,
			}, err)
			logger.IncrCounter("post.skipped")
			continue
		}
		if err := c.store.MarkPosted(ctx, evt.ID, id); err != nil {
			return posted, fmt.Errorf("recording posted id for event %d: %w", evt.ID, err)
		}
		posted++
		logger.IncrCounter("post.posted")
	}

	logger.Info("posting finished", logger.Fields{
		"posted": posted,
		"total":  len(unposted),
	})
	return posted, nil
}

func (c *Client) postOne(ctx context.Context, evt *event.Event) (int64, error) {
	var result postResult

	operation := func() error {
		var failure struct {
			Detail string `json:"detail"`
		}
		req, err := c.base.New().Post(eventsPath).
			BodyJSON(payloadFor(evt)).
			Request()
		if err != nil {
			return backoff.Permanent(err)
		}
		httpResp, err := c.base.New().Do(req.WithContext(ctx), &result, &failure)
		if err != nil {
			return err
		}
		if httpResp.StatusCode != http.StatusCreated {
			return fmt.Errorf("middleware returned %d: %s", httpResp.StatusCode, failure.Detail)
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return 0, err
	}
	return result.ID, nil
}

// preActionPayload is the notice sent before a batch action, per origin.
type preActionPayload struct {
	ActionType string       `json:"action_type"`
	Origin     originDomain `json:"origin"`
	Datetime   int64        `json:"datetime"`
	Total      int64        `json:"total"`
	NotPosted  int64        `json:"not_posted"`
}

type originDomain struct {
	Domain string `json:"domain"`
}

// PreActionNotice reports per-origin totals to the middleware before a
// batch action runs. Notice failures are logged, not returned: a missing
// notice must not block the action itself.
func (c *Client) PreActionNotice(ctx context.Context, action string) error {
	if c.preAction == "" {
		return nil
	}
	origins, err := c.store.Origins(ctx)
	if err != nil {
		return fmt.Errorf("listing origins: %w", err)
	}

	for _, origin := range origins {
		total, unposted, err := c.store.CountByOrigin(ctx, origin)
		if err != nil {
			return fmt.Errorf("counting events for %q: %w", origin, err)
		}
		payload := preActionPayload{
			ActionType: action,
			Origin:     originDomain{Domain: origin},
			Datetime:   time.Now().Unix(),
			Total:      total,
			NotPosted:  unposted,
		}
		httpResp, err := c.base.New().Post(c.preAction).
			BodyJSON(payload).
			ReceiveSuccess(nil)
		if err != nil {
			logger.Warn("pre-action notice failed", logger.Fields{"origin": origin, "error": err.Error()})
			continue
		}
		if httpResp.StatusCode != http.StatusCreated {
			logger.Warn("pre-action notice rejected", logger.Fields{
				"origin": origin,
				"status": httpResp.StatusCode,
			})
		}
	}
	return nil
}
