package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/oswaldlabs/sitechat/internal/core/ports/driven"
	"github.com/oswaldlabs/sitechat/internal/core/ports/driving"
	"github.com/oswaldlabs/sitechat/internal/extractors/faq"
	"github.com/oswaldlabs/sitechat/internal/extractors/markdown"
	"github.com/oswaldlabs/sitechat/internal/extractors/page"
	"github.com/oswaldlabs/sitechat/internal/logger"
)

// Ensure Coordinator implements the interface.
var _ driving.IngestionService = (*Coordinator)(nil)

const (
	keyFAQStruct   = "faq-struct"
	keyFAQMarkdown = "faq-markdown"
)

// CoordinatorOptions tune the warm-up behaviour. Zero values fall back
// to the defaults.
type CoordinatorOptions struct {
	// FetchConcurrency caps concurrent outbound page fetches. Default 4.
	FetchConcurrency int

	// SiteMaxAge is how long an ensured page stays fresh before the next
	// ensure call re-fetches it. Zero disables re-fetching. Default 15m.
	SiteMaxAge time.Duration

	// WorkBudget bounds the wall clock of one ingestion execution so a
	// warm-up call can never hang a request indefinitely. Default 30s.
	WorkBudget time.Duration
}

func (o CoordinatorOptions) withDefaults() CoordinatorOptions {
	if o.FetchConcurrency <= 0 {
		o.FetchConcurrency = 4
	}
	if o.SiteMaxAge == 0 {
		o.SiteMaxAge = 15 * time.Minute
	}
	if o.WorkBudget <= 0 {
		o.WorkBudget = 30 * time.Second
	}
	return o
}

// Coordinator makes the warm-up operations idempotent and safe under
// concurrent invocation. Concurrent ensure calls for the same logical
// source coalesce onto a single execution; all callers observe that
// execution's completion. A failed execution leaves the source
// un-ensured so a later call retries from scratch.
//
// Ingestion state is process-wide: an aborted request abandons only its
// own wait, never the shared work.
type Coordinator struct {
	store   driven.IndexStore
	fetcher driven.PageFetcher
	faqs    driven.FAQSource
	opts    CoordinatorOptions

	group singleflight.Group

	mu          sync.Mutex
	faqDone     bool
	faqMDDone   bool
	faqMDGen    uint64 // bumped by InvalidateFAQMarkdown
	pageEnsured map[string]time.Time // canonical URL -> ensured at
	pageClaimed map[string]bool      // canonical URL -> fetch in flight
}

// NewCoordinator creates an ingestion coordinator.
func NewCoordinator(store driven.IndexStore, fetcher driven.PageFetcher, faqs driven.FAQSource, opts CoordinatorOptions) *Coordinator {
	return &Coordinator{
		store:       store,
		fetcher:     fetcher,
		faqs:        faqs,
		opts:        opts.withDefaults(),
		pageEnsured: make(map[string]time.Time),
		pageClaimed: make(map[string]bool),
	}
}

// EnsureFAQDocs ingests the structured FAQ records exactly once per
// process lifetime.
func (c *Coordinator) EnsureFAQDocs(ctx context.Context) error {
	c.mu.Lock()
	done := c.faqDone
	c.mu.Unlock()
	if done {
		return nil
	}
	return c.coalesce(ctx, keyFAQStruct, c.ingestFAQDocs)
}

// EnsureFAQMarkdown ingests the markdown FAQ document exactly once per
// process lifetime, until InvalidateFAQMarkdown clears the flag.
func (c *Coordinator) EnsureFAQMarkdown(ctx context.Context) error {
	c.mu.Lock()
	done := c.faqMDDone
	c.mu.Unlock()
	if done {
		return nil
	}
	return c.coalesce(ctx, keyFAQMarkdown, c.ingestFAQMarkdown)
}

// EnsureSiteIndexed fetches and indexes the given site paths. Already
// ensured paths are never re-fetched while fresh; failed paths stay
// un-ensured and are retried on the next call.
func (c *Coordinator) EnsureSiteIndexed(ctx context.Context, origin string, paths []string) error {
	if origin == "" || len(paths) == 0 {
		return nil
	}

	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	if !c.sitePending(origin, sorted) {
		return nil
	}

	key := "site|" + origin + "|" + strings.Join(sorted, ",")
	return c.coalesce(ctx, key, func(wctx context.Context) error {
		return c.ingestSite(wctx, origin, sorted)
	})
}

// InvalidateFAQMarkdown clears the markdown FAQ ensured flag so the
// next warm-up re-ingests the file. Called by the file watcher.
func (c *Coordinator) InvalidateFAQMarkdown() {
	c.mu.Lock()
	c.faqMDDone = false
	c.faqMDGen++
	c.mu.Unlock()
	c.group.Forget(keyFAQMarkdown)
	logger.Info("faq markdown invalidated, will re-ingest on next warm-up")
}

// coalesce runs work at most once per key across concurrent callers.
// The work itself runs on a detached, budget-bounded context so one
// caller's cancellation never aborts work other callers wait on; the
// caller's own wait still honours its context.
func (c *Coordinator) coalesce(ctx context.Context, key string, work func(context.Context) error) error {
	ch := c.group.DoChan(key, func() (any, error) {
		wctx, cancel := context.WithTimeout(context.Background(), c.opts.WorkBudget)
		defer cancel()
		return nil, work(wctx)
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

func (c *Coordinator) ingestFAQDocs(ctx context.Context) error {
	entries, err := c.faqs.Entries(ctx)
	if err != nil {
		return fmt.Errorf("faq entries: %w", err)
	}

	docs := faq.Extract(entries)
	for i := range docs {
		if err := c.store.Upsert(ctx, &docs[i]); err != nil {
			return fmt.Errorf("index faq %s: %w", docs[i].ID, err)
		}
	}

	c.mu.Lock()
	c.faqDone = true
	c.mu.Unlock()

	logger.Info("ingested %d faq entries", len(docs))
	return nil
}

func (c *Coordinator) ingestFAQMarkdown(ctx context.Context) error {
	c.mu.Lock()
	gen := c.faqMDGen
	c.mu.Unlock()

	content, err := c.faqs.MarkdownDoc(ctx)
	if err != nil {
		return fmt.Errorf("faq markdown: %w", err)
	}

	// Zero sections is not an error: a markdown file with no headings
	// simply contributes nothing, and the flag still flips so the file
	// is not re-read on every request.
	docs := markdown.Extract(content)
	for i := range docs {
		if err := c.store.Upsert(ctx, &docs[i]); err != nil {
			return fmt.Errorf("index faq section %s: %w", docs[i].ID, err)
		}
	}

	// An invalidation that raced this ingest means the content read above
	// may predate the change; leave the flag unset so the next warm-up
	// re-reads the file.
	c.mu.Lock()
	if gen == c.faqMDGen {
		c.faqMDDone = true
	}
	c.mu.Unlock()

	logger.Info("ingested %d faq markdown sections", len(docs))
	return nil
}

// sitePending reports whether any path still needs fetching.
func (c *Coordinator) sitePending(origin string, paths []string) bool {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range paths {
		u := page.CanonicalURL(origin, p)
		if u == "" {
			continue
		}
		at, ok := c.pageEnsured[u]
		if !ok || c.stale(at, now) {
			return true
		}
	}
	return false
}

func (c *Coordinator) stale(ensuredAt, now time.Time) bool {
	return c.opts.SiteMaxAge > 0 && now.Sub(ensuredAt) > c.opts.SiteMaxAge
}

// ingestSite fetches and indexes every pending path. A path that fails
// to fetch or extracts to nothing is skipped and stays un-ensured; only
// a store write failure aborts, surfacing the same error to every
// coalesced waiter.
func (c *Coordinator) ingestSite(ctx context.Context, origin string, paths []string) error {
	type target struct {
		path string
		url  string
	}

	now := time.Now()
	var targets []target

	c.mu.Lock()
	for _, p := range paths {
		u := page.CanonicalURL(origin, p)
		if u == "" {
			logger.Warn("warm-up: unusable path %q for origin %q", p, origin)
			continue
		}
		if at, ok := c.pageEnsured[u]; ok && !c.stale(at, now) {
			continue
		}
		if c.pageClaimed[u] {
			// Another overlapping ensure call is already fetching it.
			// This call does not wait for that fetch: it may return
			// before the URL is indexed, and the next warm-up picks
			// it up. Coalescing only spans identical path sets.
			continue
		}
		c.pageClaimed[u] = true
		targets = append(targets, target{path: p, url: u})
	}
	c.mu.Unlock()

	if len(targets) == 0 {
		return nil
	}
	defer func() {
		c.mu.Lock()
		for _, t := range targets {
			delete(c.pageClaimed, t.url)
		}
		c.mu.Unlock()
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.FetchConcurrency)

	for _, t := range targets {
		t := t
		g.Go(func() error {
			body, ok := c.fetcher.Fetch(gctx, t.url)
			if !ok {
				logger.Warn("warm-up: skipping %s (fetch failed)", t.url)
				return nil
			}

			docs := page.Extract(origin, t.path, body)
			if len(docs) == 0 {
				logger.Warn("warm-up: no indexable content at %s", t.url)
				return nil
			}

			for i := range docs {
				if err := c.store.Upsert(gctx, &docs[i]); err != nil {
					return fmt.Errorf("index %s: %w", t.url, err)
				}
			}

			c.mu.Lock()
			c.pageEnsured[t.url] = time.Now()
			c.mu.Unlock()

			logger.Debug("warm-up: indexed %s", t.url)
			return nil
		})
	}

	return g.Wait()
}
