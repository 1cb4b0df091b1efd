package catalogue

import (
	"net/url"
	"regexp"
	"strconv"

	errs "raisonne/pkg/errors"
	"raisonne/pkg/models"

	"github.com/PuerkitoBio/goquery"
)

// Selectors for the catalogue's page layout
const (
	areaTableSelector   = "table.area"
	rowSelector         = "tr"
	largeImageSelector  = "span.image-large"
	imageSelector       = "img"
	descriptionSelector = "div.image-description"
	titleSelector       = "b"
)

var (
	digitRun    = regexp.MustCompile(`\d+`)
	widthParam  = regexp.MustCompile(`width=(\d+)`)
	heightParam = regexp.MustCompile(`height=(\d+)`)
)

// IDSource hands out artwork identifiers
type IDSource interface {
	Next() (int, error)
}

// PageResult is what one catalogue page contributed
type PageResult struct {
	Records models.Collection
	// Rows counts every table row scanned, and therefore every id consumed
	Rows int
	// Skipped counts rows without a large image
	Skipped int
}

// ExtractPage turns one catalogue page into records grouped by year.
// One id is taken from ids for every row, including rows that are skipped
// for lacking an image. Relative image sources are resolved against pageURL.
func ExtractPage(doc *goquery.Document, pageURL string, ids IDSource, sourceID int) (*PageResult, error) {
	result := &PageResult{Records: models.NewCollection()}
	base, _ := url.Parse(pageURL)

	for _, table := range doc.Find(areaTableSelector).EachIter() {
		for _, row := range table.Find(rowSelector).EachIter() {
			id, err := ids.Next()
			if err != nil {
				return nil, err
			}
			result.Rows++

			record, ok, err := extractRow(row, pageURL, base)
			if err != nil {
				return nil, err
			}
			if !ok {
				result.Skipped++
				continue
			}

			record.ArtworkID = id
			record.SourceID = sourceID
			result.Records.Append(record)
		}
	}

	return result, nil
}

// extractRow reads one table row. ok is false when the row has no large image.
func extractRow(row *goquery.Selection, pageURL string, base *url.URL) (models.ArtworkRecord, bool, error) {
	span := row.Find(largeImageSelector).First()
	if span.Length() == 0 {
		return models.ArtworkRecord{}, false, nil
	}

	src, exists := span.Find(imageSelector).First().Attr("src")
	if !exists {
		return models.ArtworkRecord{}, false, errs.NewParseError(pageURL, "large image has no img src")
	}
	imageURL := resolve(base, src)

	record := models.ArtworkRecord{
		ImageURL:    imageURL,
		Description: models.DescriptionMissing,
		Year:        models.UnknownYear,
		Dimensions:  ParseDimensions(imageURL),
	}

	description := row.Find(descriptionSelector).First()
	if description.Length() > 0 {
		record.Description = models.DescriptionUntitled
		if title := description.Find(titleSelector).First(); title.Length() > 0 {
			record.Description = title.Text()
		}
		record.Year = ParseYear(description.Text())
	}

	return record, true, nil
}

// ParseYear returns the first run of ASCII digits in text, or UnknownYear.
// The run is taken as-is: "c. 1905–08" gives 1905, "no. 3" gives 3.
func ParseYear(text string) int {
	match := digitRun.FindString(text)
	if match == "" {
		return models.UnknownYear
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		// digit run too long for an int
		return models.UnknownYear
	}
	return year
}

// ParseDimensions reads the integers following "width=" and "height=" in
// an image URL, each defaulting to 0.
func ParseDimensions(imageURL string) models.Dimensions {
	return models.Dimensions{
		firstIntParam(widthParam, imageURL),
		firstIntParam(heightParam, imageURL),
	}
}

func firstIntParam(re *regexp.Regexp, s string) int {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
