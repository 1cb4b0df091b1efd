package scraper

import (
	"context"
	"fmt"
	"time"

	"raisonne/pkg/catalogue"
	"raisonne/pkg/config"
	"raisonne/pkg/idpool"
	"raisonne/pkg/logger"
	"raisonne/pkg/models"

	"github.com/PuerkitoBio/goquery"
)

// State is a step of the crawl
type State int

const (
	StateStart State = iota
	StateFetchingPage
	StateMerging
	StateAdvancing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateFetchingPage:
		return "fetching_page"
	case StateMerging:
		return "merging"
	case StateAdvancing:
		return "advancing"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Stats summarises a crawl
type Stats struct {
	Pages    int
	Rows     int
	Records  int
	Skipped  int
	Duration time.Duration
}

// Scraper walks the catalogue from the seed page to the stop page
type Scraper struct {
	fetcher PageFetcher
	ids     catalogue.IDSource
	config  config.CatalogueConfig
	logger  logger.Logger
}

// New creates a Scraper from its parts
func New(cfg config.CatalogueConfig, fetcher PageFetcher, ids catalogue.IDSource, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Scraper{
		fetcher: fetcher,
		ids:     ids,
		config:  cfg,
		logger:  log,
	}
}

// NewFromConfig wires an HTTP client and a seeded identifier pool
func NewFromConfig(cfg *config.Config) (*Scraper, error) {
	log := logger.GetLogger()

	client := catalogue.NewClient(cfg.Download.Timeout, log)
	if cfg.Catalogue.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.Catalogue.UserAgent)
	}

	pool, err := idpool.NewSeeded(cfg.IDPool.RangeSize, cfg.IDPool.DrawSize, cfg.IDPool.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create identifier pool: %w", err)
	}

	return New(cfg.Catalogue, client, pool, log), nil
}

// crawl holds the mutable state of one Crawl call
type crawl struct {
	state      State
	currentURL string
	doc        *goquery.Document
	page       *catalogue.PageResult
	collection models.Collection
	stats      Stats
}

// Crawl fetches pages starting at the seed URL until the navigation tree
// says the crawl is over, and returns every record found. Any error stops
// the crawl; nothing collected so far is returned with it.
func (s *Scraper) Crawl(ctx context.Context) (models.Collection, *Stats, error) {
	start := time.Now()
	c := &crawl{state: StateStart}

	logger.LogComponentStart("scraper", map[string]interface{}{
		"seed_url":  s.config.SeedURL,
		"stop_url":  s.config.StopURL,
		"max_pages": s.config.MaxPages,
	})

	for c.state != StateDone {
		prev := c.state

		var err error
		switch c.state {
		case StateStart:
			c.collection = models.NewCollection()
			c.currentURL = s.config.SeedURL
			c.state = StateFetchingPage

		case StateFetchingPage:
			err = s.fetchPage(ctx, c)

		case StateMerging:
			c.collection.Merge(c.page.Records)
			c.stats.Rows += c.page.Rows
			c.stats.Skipped += c.page.Skipped
			c.stats.Records += c.page.Records.Len()
			logger.LogPage(s.logger, c.stats.Pages, c.currentURL, c.page.Rows, c.page.Records.Len())
			c.state = StateAdvancing

		case StateAdvancing:
			err = s.advance(c)
		}

		if err != nil {
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"state": prev.String(),
				"url":   c.currentURL,
				"page":  c.stats.Pages,
			}).Error("Crawl aborted")
			logger.LogComponentStop("scraper", "error")
			return nil, nil, err
		}

		s.logger.DebugWithFields("Crawl state transition", map[string]interface{}{
			"from": prev.String(),
			"to":   c.state.String(),
		})
	}

	c.stats.Duration = time.Since(start)
	s.logger.InfoWithFields("Crawl complete", map[string]interface{}{
		"pages":    c.stats.Pages,
		"rows":     c.stats.Rows,
		"records":  c.stats.Records,
		"skipped":  c.stats.Skipped,
		"duration": c.stats.Duration.String(),
	})
	logger.LogComponentStop("scraper", "done")

	return c.collection, &c.stats, nil
}

func (s *Scraper) fetchPage(ctx context.Context, c *crawl) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := s.fetcher.FetchDocument(ctx, c.currentURL)
	if err != nil {
		return err
	}

	page, err := catalogue.ExtractPage(doc, c.currentURL, s.ids, s.config.SourceID)
	if err != nil {
		return err
	}

	c.doc = doc
	c.page = page
	c.stats.Pages++
	c.state = StateMerging
	return nil
}

func (s *Scraper) advance(c *crawl) error {
	if s.config.MaxPages > 0 && c.stats.Pages >= s.config.MaxPages {
		s.logger.WarnWithFields("Page limit reached, stopping crawl", map[string]interface{}{
			"max_pages": s.config.MaxPages,
			"url":       c.currentURL,
		})
		c.state = StateDone
		return nil
	}

	next, ok, err := catalogue.NextPage(c.doc, c.currentURL, s.config.StopURL)
	if err != nil {
		return err
	}
	if !ok {
		c.state = StateDone
		return nil
	}

	c.currentURL = next
	c.doc = nil
	c.page = nil
	c.state = StateFetchingPage
	return nil
}
