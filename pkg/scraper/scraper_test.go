package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"raisonne/pkg/catalogue"
	"raisonne/pkg/config"
	errs "raisonne/pkg/errors"
	"raisonne/pkg/idpool"
	"raisonne/pkg/logger"
	"raisonne/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// artwork is one table row on a fixture page; an empty image means the row
// has no large image.
type artwork struct {
	image string
	desc  string
}

// mockCatalogueServer serves a small catalogue whose navigation tree lists
// every page in order.
type mockCatalogueServer struct {
	server *httptest.Server
	order  []string
	pages  map[string][]artwork
	status map[string]int

	mu   sync.Mutex
	hits map[string]int
}

func newMockCatalogueServer(t *testing.T) *mockCatalogueServer {
	t.Helper()

	m := &mockCatalogueServer{
		order: []string{"/p1", "/p2", "/stop", "/after"},
		pages: map[string][]artwork{
			"/p1": {
				{image: "/img/a.jpg?width=100&height=50", desc: "<b>Dune</b> 1910"},
				{},
				{image: "/img/b.png", desc: "sketch, undated"},
			},
			"/p2": {
				{image: "/img/c.jpg", desc: "<b>Pier</b> c. 1914–15"},
				{image: "/img/d.jpg"},
			},
			"/stop": {
				{image: "/img/e.jpg", desc: "<b>Tree</b> 1910"},
			},
			"/after": {
				{image: "/img/f.jpg", desc: "<b>Never</b> 1920"},
			},
		},
		status: map[string]int{},
		hits:   map[string]int{},
	}

	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	t.Cleanup(m.server.Close)
	return m
}

func (m *mockCatalogueServer) url(path string) string {
	return m.server.URL + path
}

func (m *mockCatalogueServer) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.hits[r.URL.Path]++
	status := m.status[r.URL.Path]
	m.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}

	rows, ok := m.pages[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}

	var b strings.Builder
	b.WriteString(`<html><body><ul class="portletNavigationTree navTreeLevel0">`)
	for _, p := range m.order {
		fmt.Fprintf(&b, `<li><a href="%s">%s</a></li>`, m.url(p), p)
	}
	b.WriteString(`</ul><table class="area">`)
	for _, row := range rows {
		b.WriteString("<tr>")
		if row.image != "" {
			fmt.Fprintf(&b, `<td><span class="image-large"><img src="%s"></span></td>`, row.image)
		} else {
			b.WriteString("<td>no image</td>")
		}
		if row.desc != "" {
			fmt.Fprintf(&b, `<td><div class="image-description">%s</div></td>`, row.desc)
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table></body></html>")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

func (m *mockCatalogueServer) failWith(path string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status[path] = status
}

func (m *mockCatalogueServer) hitCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits[path]
}

func newTestScraper(t *testing.T, m *mockCatalogueServer, maxPages int, pool catalogue.IDSource) *Scraper {
	t.Helper()

	if pool == nil {
		p, err := idpool.NewSeeded(15000, 10000, 42)
		require.NoError(t, err)
		pool = p
	}

	cfg := config.CatalogueConfig{
		SeedURL:  m.url("/p1"),
		StopURL:  m.url("/stop"),
		SourceID: 1,
		MaxPages: maxPages,
	}
	client := catalogue.NewClient(5*time.Second, logger.NewNopLogger())
	return New(cfg, client, pool, logger.NewTestLogger())
}

func TestCrawl(t *testing.T) {
	m := newMockCatalogueServer(t)
	s := newTestScraper(t, m, 0, nil)

	collection, stats, err := s.Crawl(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Pages)
	assert.Equal(t, 6, stats.Rows)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 5, stats.Records)
	assert.Equal(t, 5, collection.Len())

	assert.Equal(t, []int{-1, 1910, 1914}, collection.Years())

	y1910 := collection[1910]
	require.Len(t, y1910, 2)
	assert.Equal(t, "Dune", y1910[0].Description)
	assert.Equal(t, models.Dimensions{100, 50}, y1910[0].Dimensions)
	assert.Equal(t, "Tree", y1910[1].Description, "later pages append after earlier ones")

	unknown := collection[models.UnknownYear]
	require.Len(t, unknown, 2)
	assert.Equal(t, models.DescriptionUntitled, unknown[0].Description)
	assert.Equal(t, models.DescriptionMissing, unknown[1].Description)

	for _, record := range collection.Records() {
		assert.Equal(t, 1, record.SourceID)
	}
}

func TestCrawlFetchesEachPageOnce(t *testing.T) {
	m := newMockCatalogueServer(t)
	s := newTestScraper(t, m, 0, nil)

	_, _, err := s.Crawl(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, m.hitCount("/p1"))
	assert.Equal(t, 1, m.hitCount("/p2"))
	assert.Equal(t, 1, m.hitCount("/stop"))
	assert.Equal(t, 0, m.hitCount("/after"), "pages past the stop page are never fetched")
}

func TestCrawlIDsAreUnique(t *testing.T) {
	m := newMockCatalogueServer(t)
	pool, err := idpool.NewSeeded(15000, 10000, 99)
	require.NoError(t, err)
	s := newTestScraper(t, m, 0, pool)

	collection, stats, err := s.Crawl(context.Background())
	require.NoError(t, err)

	seen := map[int]bool{}
	for _, record := range collection.Records() {
		assert.False(t, seen[record.ArtworkID], "duplicate id %d", record.ArtworkID)
		seen[record.ArtworkID] = true
		assert.GreaterOrEqual(t, record.ArtworkID, 0)
		assert.Less(t, record.ArtworkID, 15000)
	}

	// skipped rows consume ids too
	assert.Equal(t, stats.Rows, pool.Consumed())
}

func TestCrawlMaxPages(t *testing.T) {
	m := newMockCatalogueServer(t)
	s := newTestScraper(t, m, 2, nil)

	collection, stats, err := s.Crawl(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, 4, collection.Len())
	assert.Equal(t, 0, m.hitCount("/stop"))
}

func TestCrawlFetchFailureAborts(t *testing.T) {
	m := newMockCatalogueServer(t)
	m.failWith("/p2", http.StatusInternalServerError)
	s := newTestScraper(t, m, 0, nil)

	collection, stats, err := s.Crawl(context.Background())
	require.Error(t, err)
	assert.Nil(t, collection)
	assert.Nil(t, stats)
	assert.True(t, errs.IsType(err, errs.ErrorTypeFetch))
	assert.Equal(t, http.StatusInternalServerError, errs.StatusCode(err))
	assert.Equal(t, 0, m.hitCount("/stop"))
}

func TestCrawlPoolExhaustion(t *testing.T) {
	m := newMockCatalogueServer(t)
	pool, err := idpool.NewSeeded(10, 4, 1)
	require.NoError(t, err)
	s := newTestScraper(t, m, 0, pool)

	_, _, err = s.Crawl(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypePoolExhausted))
}

func TestCrawlCancelled(t *testing.T) {
	m := newMockCatalogueServer(t)
	s := newTestScraper(t, m, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.Crawl(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, m.hitCount("/p1"))
}

func TestCrawlSeedIsStop(t *testing.T) {
	m := newMockCatalogueServer(t)
	client := catalogue.NewClient(5*time.Second, logger.NewNopLogger())
	pool, err := idpool.NewSeeded(100, 50, 3)
	require.NoError(t, err)

	s := New(config.CatalogueConfig{
		SeedURL:  m.url("/stop"),
		StopURL:  m.url("/stop"),
		SourceID: 1,
	}, client, pool, logger.NewNopLogger())

	collection, stats, err := s.Crawl(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pages)
	assert.Equal(t, 1, collection.Len())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "start", StateStart.String())
	assert.Equal(t, "fetching_page", StateFetchingPage.String())
	assert.Equal(t, "merging", StateMerging.String())
	assert.Equal(t, "advancing", StateAdvancing.String())
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "state(9)", State(9).String())
}
