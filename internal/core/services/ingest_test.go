package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oswaldlabs/sitechat/internal/adapters/driven/storage/memory"
	"github.com/oswaldlabs/sitechat/internal/analyzer"
	"github.com/oswaldlabs/sitechat/internal/core/domain"
	"github.com/oswaldlabs/sitechat/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockFetcher implements driven.PageFetcher with per-URL counters.
type mockFetcher struct {
	mu       sync.Mutex
	counts   map[string]int
	fail     map[string]bool
	bodies   map[string]string
	block    chan struct{} // when set, fetches wait on it
	blockURL string        // when set, only this URL blocks
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{
		counts: make(map[string]int),
		fail:   make(map[string]bool),
		bodies: make(map[string]string),
	}
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) (string, bool) {
	m.mu.Lock()
	m.counts[url]++
	failed := m.fail[url]
	body, hasBody := m.bodies[url]
	block := m.block
	blockURL := m.blockURL
	m.mu.Unlock()

	if block != nil && (blockURL == "" || blockURL == url) {
		select {
		case <-block:
		case <-ctx.Done():
			return "", false
		}
	}
	if failed {
		return "", false
	}
	if !hasBody {
		body = "<h1>Page</h1><p>default body text</p>"
	}
	return body, true
}

func (m *mockFetcher) count(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[url]
}

func (m *mockFetcher) setFail(url string, fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[url] = fail
}

// mockFAQSource implements driven.FAQSource with call counters.
type mockFAQSource struct {
	mu         sync.Mutex
	entries    []domain.FAQEntry
	entriesErr error
	md         string
	mdErr      error
	mdReads    int
	mdBlock    chan struct{} // when set, MarkdownDoc waits after reading
}

func (m *mockFAQSource) Entries(context.Context) ([]domain.FAQEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries, m.entriesErr
}

func (m *mockFAQSource) MarkdownDoc(context.Context) (string, error) {
	m.mu.Lock()
	m.mdReads++
	md, mdErr := m.md, m.mdErr
	block := m.mdBlock
	m.mu.Unlock()

	// Holds the content read above across the wait, like a slow disk read.
	if block != nil {
		<-block
	}
	return md, mdErr
}

func (m *mockFAQSource) markdownReads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mdReads
}

// failingStore wraps a real store and fails upserts on demand.
type failingStore struct {
	driven.IndexStore
	failing atomic.Bool
}

func (s *failingStore) Upsert(ctx context.Context, doc *domain.Document) error {
	if s.failing.Load() {
		return errors.New("disk on fire")
	}
	return s.IndexStore.Upsert(ctx, doc)
}

func newTestCoordinator(fetcher driven.PageFetcher, faqs driven.FAQSource) (*Coordinator, *memory.IndexStore) {
	store := memory.NewIndexStore(analyzer.NewTokenizer())
	c := NewCoordinator(store, fetcher, faqs, CoordinatorOptions{})
	return c, store
}

// --- Tests ---

func TestCoordinator_EnsureFAQDocs_Idempotent(t *testing.T) {
	faqs := &mockFAQSource{entries: []domain.FAQEntry{
		{ID: "q1", Question: "What is this?", Answer: "A personal site."},
		{ID: "q2", Question: "Who made it?", Answer: "I did."},
	}}
	c, store := newTestCoordinator(newMockFetcher(), faqs)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, c.EnsureFAQDocs(ctx))
	}

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCoordinator_EnsureFAQDocs_RetriesAfterFailure(t *testing.T) {
	faqs := &mockFAQSource{entriesErr: errors.New("source offline")}
	c, store := newTestCoordinator(newMockFetcher(), faqs)
	ctx := context.Background()

	err := c.EnsureFAQDocs(ctx)
	require.Error(t, err)

	faqs.mu.Lock()
	faqs.entriesErr = nil
	faqs.entries = []domain.FAQEntry{{ID: "q1", Question: "Fixed?", Answer: "Yes."}}
	faqs.mu.Unlock()

	require.NoError(t, c.EnsureFAQDocs(ctx))
	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCoordinator_EnsureSiteIndexed_CoalescesConcurrentCalls(t *testing.T) {
	fetcher := newMockFetcher()
	c, store := newTestCoordinator(fetcher, &mockFAQSource{})
	origin := "https://example.dev"
	paths := []string{"/a", "/b", "/c"}

	const callers = 16
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.EnsureSiteIndexed(context.Background(), origin, paths)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	for _, p := range paths {
		assert.Equal(t, 1, fetcher.count(origin+p), "path %s fetched more than once", p)
	}

	n, err := store.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestCoordinator_EnsureSiteIndexed_FailedPathRetriedAlone(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.setFail("https://example.dev/b", true)
	c, store := newTestCoordinator(fetcher, &mockFAQSource{})
	ctx := context.Background()
	paths := []string{"/a", "/b"}

	// First warm-up: /b fails, /a is indexed; the overall call still succeeds.
	require.NoError(t, c.EnsureSiteIndexed(ctx, "https://example.dev", paths))
	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Second warm-up retries only /b.
	fetcher.setFail("https://example.dev/b", false)
	require.NoError(t, c.EnsureSiteIndexed(ctx, "https://example.dev", paths))

	assert.Equal(t, 1, fetcher.count("https://example.dev/a"))
	assert.Equal(t, 2, fetcher.count("https://example.dev/b"))

	n, err = store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCoordinator_EnsureSiteIndexed_NewPathsOnly(t *testing.T) {
	fetcher := newMockFetcher()
	c, _ := newTestCoordinator(fetcher, &mockFAQSource{})
	ctx := context.Background()

	require.NoError(t, c.EnsureSiteIndexed(ctx, "https://example.dev", []string{"/a"}))
	require.NoError(t, c.EnsureSiteIndexed(ctx, "https://example.dev", []string{"/a", "/b"}))

	assert.Equal(t, 1, fetcher.count("https://example.dev/a"))
	assert.Equal(t, 1, fetcher.count("https://example.dev/b"))

	// A repeat with the full set is a no-op.
	require.NoError(t, c.EnsureSiteIndexed(ctx, "https://example.dev", []string{"/a", "/b"}))
	assert.Equal(t, 1, fetcher.count("https://example.dev/a"))
	assert.Equal(t, 1, fetcher.count("https://example.dev/b"))
}

func TestCoordinator_EnsureFAQMarkdown_InvalidateForcesReingest(t *testing.T) {
	faqs := &mockFAQSource{md: "## One\n\nfirst answer\n"}
	c, store := newTestCoordinator(newMockFetcher(), faqs)
	ctx := context.Background()

	require.NoError(t, c.EnsureFAQMarkdown(ctx))
	require.NoError(t, c.EnsureFAQMarkdown(ctx))
	assert.Equal(t, 1, faqs.markdownReads())

	faqs.mu.Lock()
	faqs.md = "## One\n\nrewritten answer\n"
	faqs.mu.Unlock()
	c.InvalidateFAQMarkdown()

	require.NoError(t, c.EnsureFAQMarkdown(ctx))
	assert.Equal(t, 2, faqs.markdownReads())

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Contains(t, snap[0].Document.Text, "rewritten")
}

func TestCoordinator_EnsureFAQMarkdown_InvalidateDuringIngestWins(t *testing.T) {
	faqs := &mockFAQSource{md: "## One\n\nfirst answer\n", mdBlock: make(chan struct{})}
	c, store := newTestCoordinator(newMockFetcher(), faqs)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		done <- c.EnsureFAQMarkdown(ctx)
	}()
	require.Eventually(t, func() bool {
		return faqs.markdownReads() == 1
	}, time.Second, 10*time.Millisecond)

	// The file changes while the first ingest still holds the old content.
	faqs.mu.Lock()
	faqs.md = "## One\n\nrewritten answer\n"
	faqs.mu.Unlock()
	c.InvalidateFAQMarkdown()

	close(faqs.mdBlock)
	require.NoError(t, <-done)

	// The invalidation must survive the in-flight ingest completing: the
	// next warm-up re-reads the file and indexes the new content.
	require.NoError(t, c.EnsureFAQMarkdown(ctx))
	assert.Equal(t, 2, faqs.markdownReads())

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Contains(t, snap[0].Document.Text, "rewritten")
}

func TestCoordinator_EnsureSiteIndexed_OverlappingSetSkipsClaimedPaths(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.block = make(chan struct{})
	fetcher.blockURL = "https://example.dev/a"
	c, store := newTestCoordinator(fetcher, &mockFAQSource{})
	origin := "https://example.dev"

	first := make(chan error, 1)
	go func() {
		first <- c.EnsureSiteIndexed(context.Background(), origin, []string{"/a"})
	}()
	require.Eventually(t, func() bool {
		return fetcher.count(origin+"/a") == 1
	}, time.Second, 10*time.Millisecond)

	// An overlapping call with a different set skips the claimed path and
	// returns once its own remainder is indexed.
	require.NoError(t, c.EnsureSiteIndexed(context.Background(), origin, []string{"/a", "/b"}))
	assert.Equal(t, 1, fetcher.count(origin+"/a"))
	assert.Equal(t, 1, fetcher.count(origin+"/b"))

	n, err := store.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	close(fetcher.block)
	require.NoError(t, <-first)
	require.Eventually(t, func() bool {
		n, err := store.Len(context.Background())
		return err == nil && n == 2
	}, time.Second, 10*time.Millisecond)
}

func TestCoordinator_EnsureFAQMarkdown_NoHeadingsStillEnsured(t *testing.T) {
	faqs := &mockFAQSource{md: "plain prose, no sections"}
	c, store := newTestCoordinator(newMockFetcher(), faqs)
	ctx := context.Background()

	require.NoError(t, c.EnsureFAQMarkdown(ctx))
	require.NoError(t, c.EnsureFAQMarkdown(ctx))
	assert.Equal(t, 1, faqs.markdownReads())

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCoordinator_StoreFailureSharedByWaiters(t *testing.T) {
	faqs := &mockFAQSource{entries: []domain.FAQEntry{{ID: "q1", Question: "Q?", Answer: "A."}}}
	store := &failingStore{IndexStore: memory.NewIndexStore(analyzer.NewTokenizer())}
	store.failing.Store(true)
	c := NewCoordinator(store, newMockFetcher(), faqs, CoordinatorOptions{})

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.EnsureFAQDocs(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk on fire")
	}

	// The flag stayed unset, so a later call retries and succeeds.
	store.failing.Store(false)
	require.NoError(t, c.EnsureFAQDocs(context.Background()))
}

func TestCoordinator_AbortedWaiterLeavesWorkRunning(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.block = make(chan struct{})
	c, store := newTestCoordinator(fetcher, &mockFAQSource{})
	origin := "https://example.dev"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.EnsureSiteIndexed(ctx, origin, []string{"/a"})
	}()

	// Give the warm-up a moment to start, then abandon the wait.
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("aborted waiter did not return")
	}

	// The shared execution keeps going and finishes the ingest.
	close(fetcher.block)
	require.Eventually(t, func() bool {
		n, err := store.Len(context.Background())
		return err == nil && n == 1
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, fetcher.count(origin+"/a"))
}
