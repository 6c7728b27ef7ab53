package poster

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cityevents/eventline/internal/event"
	"github.com/cityevents/eventline/internal/storage"
)

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedEvent(t *testing.T, store *storage.Store, day int) event.Event {
	t.Helper()
	start := time.Date(2017, time.October, day, 14, 0, 0, 0, time.UTC)
	rec := event.Event{
		Title:     "Autumn fair",
		City:      "Moscow",
		Address:   "Park entrance 3",
		StartTime: start,
		EndTime:   start.Add(4 * time.Hour),
		OriginURL: "https://example.com/events/42",
		Origin:    "example.com",
		Language:  "ru",
	}
	if _, err := store.UpsertEvent(context.Background(), rec); err != nil {
		t.Fatalf("UpsertEvent() error = %v", err)
	}
	return rec
}

func TestPostEventsMarksPosted(t *testing.T) {
	store := newTestStore(t)
	seedEvent(t, store, 12)
	seedEvent(t, store, 13)

	var got []eventPayload
	var nextID int64 = 100
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Token secret" {
			t.Errorf("Authorization = %q, want %q", auth, "Token secret")
		}
		var p eventPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Fatalf("decoding payload: %v", err)
		}
		got = append(got, p)
		id := atomic.AddInt64(&nextID, 1)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(postResult{ID: id})
	}))
	defer srv.Close()

	client := New(store, Config{BaseURL: srv.URL + "/", Token: "secret"})
	posted, err := client.PostEvents(context.Background())
	if err != nil {
		t.Fatalf("PostEvents() error = %v", err)
	}
	if posted != 2 {
		t.Fatalf("PostEvents() = %d, want 2", posted)
	}
	if len(got) != 2 {
		t.Fatalf("middleware received %d payloads, want 2", len(got))
	}
	wantStart := time.Date(2017, time.October, 12, 14, 0, 0, 0, time.UTC).Unix()
	if got[0].StartTime != wantStart {
		t.Errorf("payload start_time = %d, want %d", got[0].StartTime, wantStart)
	}
	if got[0].Origin != "example.com" {
		t.Errorf("payload origin = %q, want %q", got[0].Origin, "example.com")
	}

	left, err := store.ListUnposted(context.Background())
	if err != nil {
		t.Fatalf("ListUnposted() error = %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("unposted after PostEvents = %d, want 0", len(left))
	}
}

func TestPostEventsSkipsFailures(t *testing.T) {
	store := newTestStore(t)
	seedEvent(t, store, 12)
	seedEvent(t, store, 13)

	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&calls, 1)
		var p eventPayload
		json.NewDecoder(r.Body).Decode(&p)
		// Reject the first event on every attempt, accept the second.
		if p.StartTime == time.Date(2017, time.October, 12, 14, 0, 0, 0, time.UTC).Unix() {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"detail": "bad event"})
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(postResult{ID: n})
	}))
	defer srv.Close()

	client := New(store, Config{BaseURL: srv.URL + "/", Token: "secret", MaxRetries: 1})
	posted, err := client.PostEvents(context.Background())
	if err != nil {
		t.Fatalf("PostEvents() error = %v", err)
	}
	if posted != 1 {
		t.Fatalf("PostEvents() = %d, want 1", posted)
	}

	left, err := store.ListUnposted(context.Background())
	if err != nil {
		t.Fatalf("ListUnposted() error = %v", err)
	}
	if len(left) != 1 {
		t.Fatalf("unposted after PostEvents = %d, want 1", len(left))
	}
}

func TestPreActionNotice(t *testing.T) {
	store := newTestStore(t)
	seedEvent(t, store, 12)

	var got preActionPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pre-action/" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/pre-action/")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decoding payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := New(store, Config{
		BaseURL:       srv.URL + "/",
		Token:         "secret",
		PreActionPath: "pre-action/",
	})
	if err := client.PreActionNotice(context.Background(), "post"); err != nil {
		t.Fatalf("PreActionNotice() error = %v", err)
	}
	if got.ActionType != "post" {
		t.Errorf("action_type = %q, want %q", got.ActionType, "post")
	}
	if got.Origin.Domain != "example.com" {
		t.Errorf("origin.domain = %q, want %q", got.Origin.Domain, "example.com")
	}
	if got.Total != 1 || got.NotPosted != 1 {
		t.Errorf("totals = (%d, %d), want (1, 1)", got.Total, got.NotPosted)
	}
}

func TestPreActionNoticeDisabledWithoutPath(t *testing.T) {
	store := newTestStore(t)
	client := New(store, Config{BaseURL: "http://middleware.invalid/", Token: "secret"})
	if err := client.PreActionNotice(context.Background(), "post"); err != nil {
		t.Fatalf("PreActionNotice() error = %v", err)
	}
}
