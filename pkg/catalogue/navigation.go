package catalogue

import (
	"net/url"
	"strings"

	errs "raisonne/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

const (
	navigationSelector = "ul.portletNavigationTree.navTreeLevel0"
	navEntrySelector   = "li"
	navLinkSelector    = "a"
)

// NextPage scans the navigation tree of the page at currentURL and returns
// the entry that follows currentURL. ok is false when the crawl is over:
// either stopURL appears before currentURL is found, or nothing follows it.
//
// Relative hrefs are resolved against currentURL before comparison.
func NextPage(doc *goquery.Document, currentURL, stopURL string) (next string, ok bool, err error) {
	nav := doc.Find(navigationSelector).First()
	if nav.Length() == 0 {
		return "", false, errs.NewParseError(currentURL, "navigation list not found")
	}

	base, _ := url.Parse(currentURL)

	foundCurrent := false
	for _, entry := range nav.Find(navEntrySelector).EachIter() {
		href, exists := entry.Find(navLinkSelector).First().Attr("href")
		if !exists {
			return "", false, errs.NewParseError(currentURL, "navigation entry without link")
		}
		link := resolve(base, href)

		if foundCurrent {
			return link, true, nil
		}
		if link == stopURL {
			return "", false, nil
		}
		if link == currentURL {
			foundCurrent = true
		}
	}

	return "", false, nil
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil || ref.IsAbs() {
		return href
	}
	return base.ResolveReference(ref).String()
}
