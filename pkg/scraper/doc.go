// Package scraper crawls the catalogue raisonné.
//
// A Scraper runs a small state machine:
//
//	start -> fetching_page -> merging -> advancing -> fetching_page | done
//
// Each page is fetched once. The parsed document is handed to the page
// extractor, whose records are merged into the running collection, and then
// to the navigation walker, which picks the next page or ends the crawl.
// Pages are processed strictly one after another.
//
// Usage:
//
//	cfg, err := config.Load("", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	s, err := scraper.NewFromConfig(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	collection, stats, err := s.Crawl(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d records from %d pages\n", stats.Records, stats.Pages)
package scraper
