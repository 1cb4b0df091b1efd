package scraper

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// PageFetcher retrieves and parses a catalogue page
type PageFetcher interface {
	FetchDocument(ctx context.Context, url string) (*goquery.Document, error)
}
