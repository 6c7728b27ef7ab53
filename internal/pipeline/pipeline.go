// Package pipeline drives one scraping batch: fetch listing pages, extract
// raw fields per item, normalize free-text dates, expand multi-day events
// into per-day occurrences, and upsert everything into storage. Items fail
// individually; a batch never aborts because one event is malformed.
package pipeline

import (
	"context"
	"fmt"
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/cityevents/eventline/internal/config"
	"github.com/cityevents/eventline/internal/datestr"
	"github.com/cityevents/eventline/internal/event"
	"github.com/cityevents/eventline/internal/logger"
	"github.com/cityevents/eventline/internal/processors"
	"github.com/cityevents/eventline/internal/scraper"
	"github.com/cityevents/eventline/internal/storage"
)

// Source is a fully materialized scrape definition: a compiled version of
// config.SourceConfig plus any code-level processors for the site.
type Source struct {
	Name         string
	URL          string
	ItemSelector string
	StartPage    int
	MaxPages     int
	Fields       map[string]scraper.FieldSpec
	Order        []datestr.Term
	Complement   bool

	// Processors run after the built-in field rooting and before date
	// resolution.
	Processors []processors.Processor

	// DailyTime, when set, pins interior occurrence days of a multi-day
	// event to this start time instead of the first day's.
	DailyTime *datestr.TimeOfDay
}

// SourceFromConfig compiles one configured source. Order strings become
// plain directive terms; contextual terms are attached in code via
// Processors when a site needs them.
func SourceFromConfig(sc config.SourceConfig) (Source, error) {
	src := Source{
		Name:         sc.Name,
		URL:          sc.URL,
		ItemSelector: sc.ItemSelector,
		StartPage:    sc.StartPage,
		MaxPages:     sc.MaxPages,
		Fields:       sc.Fields,
		Complement:   sc.Complement,
	}
	if src.StartPage == 0 {
		src.StartPage = 1
	}
	for _, d := range sc.Order {
		src.Order = append(src.Order, datestr.D(datestr.Directive(d)))
	}
	if sc.CategoryPattern != "" {
		re, err := regexp.Compile(sc.CategoryPattern)
		if err != nil {
			return Source{}, fmt.Errorf("source %s: category pattern: %w", sc.Name, err)
		}
		src.Processors = append(src.Processors, processors.CategoryFromURL(re))
	}
	return src, nil
}

// Stats summarizes one batch run.
type Stats struct {
	Items   int
	Skipped int
	Created int
	Updated int
}

// Runner executes scrape batches against one site and one store.
type Runner struct {
	scraper  *scraper.Scraper
	resolver *datestr.Resolver
	store    *storage.Store
	origin   string
	language string
	city     string
}

// NewRunner builds a Runner from the application configuration.
func NewRunner(cfg *config.Config, store *storage.Store) (*Runner, error) {
	loc, err := datestr.LookupLocale(cfg.Locale)
	if err != nil {
		return nil, err
	}
	return &Runner{
		scraper:  scraper.New(cfg.RootURL),
		resolver: datestr.NewResolver(loc),
		store:    store,
		origin:   cfg.Origin,
		language: cfg.Language,
		city:     cfg.City,
	}, nil
}

// Scraper exposes the runner's scraper for code-level processors.
func (r *Runner) Scraper() *scraper.Scraper { return r.scraper }

// Resolver exposes the runner's date resolver for code-level processors.
func (r *Runner) Resolver() *datestr.Resolver { return r.resolver }

// Run scrapes one source to completion and returns batch totals. Item
// failures are logged and counted, never propagated; only fetch errors
// abort the batch.
func (r *Runner) Run(ctx context.Context, src Source) (Stats, error) {
	var stats Stats

	process := func(doc *goquery.Document) error {
		doc.Find(src.ItemSelector).Each(func(_ int, sel *goquery.Selection) {
			stats.Items++
			created, updated, err := r.processItem(ctx, src, sel)
			if err != nil {
				stats.Skipped++
				logger.IncrCounter("pipeline.skipped")
				logger.Error("skipping item", logger.Fields{"source": src.Name}, err)
				return
			}
			stats.Created += created
			stats.Updated += updated
		})
		return nil
	}

	var err error
	if src.MaxPages > 0 {
		lastPage := src.StartPage + src.MaxPages - 1
		page := src.StartPage
		until := func(doc *goquery.Document) bool {
			more := page < lastPage && doc.Find(src.ItemSelector).Length() > 0
			page++
			return more
		}
		err = r.scraper.EachPage(ctx, src.URL, src.StartPage, until, process)
	} else {
		var doc *goquery.Document
		doc, err = r.scraper.Fetch(ctx, src.URL)
		if err == nil {
			err = process(doc)
		}
	}
	if err != nil {
		return stats, fmt.Errorf("scraping %s: %w", src.Name, err)
	}

	logger.Info("batch finished", logger.Fields{
		"source":  src.Name,
		"items":   stats.Items,
		"skipped": stats.Skipped,
		"created": stats.Created,
		"updated": stats.Updated,
	})
	return stats, nil
}

// RunAll runs every source, accumulating totals. A source whose listing
// cannot be fetched is logged and skipped; the remaining sources still run.
func (r *Runner) RunAll(ctx context.Context, sources []Source) Stats {
	var total Stats
	for _, src := range sources {
		stats, err := r.Run(ctx, src)
		if err != nil {
			logger.Error("source failed", logger.Fields{"source": src.Name}, err)
		}
		total.Items += stats.Items
		total.Skipped += stats.Skipped
		total.Created += stats.Created
		total.Updated += stats.Updated
	}
	return total
}

func (r *Runner) processItem(ctx context.Context, src Source, sel *goquery.Selection) (created, updated int, err error) {
	fields := scraper.ExtractFields(sel, src.Fields)
	draft := draftFromFields(fields)
	draft.Origin = r.origin
	if draft.City == "" {
		draft.City = r.city
	}

	chain := []processors.Processor{
		processors.AddRoot(r.scraper, processors.OriginURL, processors.Cover, processors.BookingURL),
	}
	chain = append(chain, src.Processors...)
	chain = append(chain, r.timeProcessor(src, draft))
	if err := processors.Apply(draft, chain...); err != nil {
		return 0, 0, err
	}
	if err := draft.Validate(); err != nil {
		return 0, 0, err
	}

	occurrences := datestr.Occurrences(draft.StartTime, draft.EndTime, src.DailyTime)
	for _, span := range datestr.StartEndPairs(occurrences) {
		wasCreated, err := r.store.UpsertEvent(ctx, draft.Record(span.Start, span.End, r.language))
		if err != nil {
			return created, updated, fmt.Errorf("persisting %q: %w", draft.OriginURL, err)
		}
		if wasCreated {
			created++
			logger.IncrCounter("pipeline.created")
		} else {
			updated++
			logger.IncrCounter("pipeline.updated")
		}
	}
	return created, updated, nil
}

// timeProcessor picks the date-resolution step for one item: start and end
// fragments resolved together when the source scrapes both, a bare start
// stretched to 23:59 otherwise.
func (r *Runner) timeProcessor(src Source, draft *event.Draft) processors.Processor {
	if draft.EndText != "" {
		return processors.TimesFromTexts(r.resolver, src.Order, src.Complement)
	}
	return func(d *event.Draft) error {
		if err := processors.StartTimeFromText(r.resolver, src.Order)(d); err != nil {
			return err
		}
		return processors.EndOfDay()(d)
	}
}

// draftFromFields routes extracted raw fields into draft slots. Unknown
// field names land in Extra for site-specific processors.
func draftFromFields(fields map[string]string) *event.Draft {
	draft := &event.Draft{}
	for name, value := range fields {
		switch name {
		case "title":
			draft.Title = value
		case "place_title":
			draft.PlaceTitle = value
		case "city":
			draft.City = value
		case "address":
			draft.Address = value
		case "cover":
			draft.Cover = value
		case "description":
			draft.Description = value
		case "origin_url":
			draft.OriginURL = value
		case "booking_url":
			draft.BookingURL = value
		case "start_text":
			draft.StartText = value
		case "end_text":
			draft.EndText = value
		default:
			if draft.Extra == nil {
				draft.Extra = make(map[string]string)
			}
			draft.Extra[name] = value
		}
	}
	return draft
}
