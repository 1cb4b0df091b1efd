package models

import "sort"

const (
	// UnknownYear buckets records whose description carries no digits
	UnknownYear = -1

	// DescriptionMissing marks a row with no description element at all
	DescriptionMissing = "NA"
	// DescriptionUntitled marks a description element without a bold title
	DescriptionUntitled = "None"
)

// Dimensions is the (width, height) pair parsed from an image URL.
// It serializes as a two-element JSON array.
type Dimensions [2]int

func (d Dimensions) Width() int  { return d[0] }
func (d Dimensions) Height() int { return d[1] }

// ArtworkRecord is one catalogue entry
type ArtworkRecord struct {
	ImageURL    string     `json:"url"`
	Description string     `json:"written_desc"`
	Year        int        `json:"year"`
	Dimensions  Dimensions `json:"dimension"`
	ArtworkID   int        `json:"img_id"`
	SourceID    int        `json:"src_id"`
}

// Collection maps a year (UnknownYear included) to records in the order
// they were found.
type Collection map[int][]ArtworkRecord

// NewCollection returns an empty collection
func NewCollection() Collection {
	return make(Collection)
}

// Bucket returns the records for year, creating an empty bucket if needed
func (c Collection) Bucket(year int) []ArtworkRecord {
	bucket, ok := c[year]
	if !ok {
		bucket = []ArtworkRecord{}
		c[year] = bucket
	}
	return bucket
}

// Append adds a record to the bucket for its year
func (c Collection) Append(record ArtworkRecord) {
	c[record.Year] = append(c.Bucket(record.Year), record)
}

// Merge extends each of c's buckets with the matching bucket of other.
// Nothing already in c is removed or reordered.
func (c Collection) Merge(other Collection) {
	for _, year := range other.Years() {
		c[year] = append(c.Bucket(year), other[year]...)
	}
}

// Years returns the bucket keys in ascending order
func (c Collection) Years() []int {
	years := make([]int, 0, len(c))
	for year := range c {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}

// Len returns the total number of records across all buckets
func (c Collection) Len() int {
	n := 0
	for _, records := range c {
		n += len(records)
	}
	return n
}

// Records returns every record, ordered by year then by insertion
func (c Collection) Records() []ArtworkRecord {
	out := make([]ArtworkRecord, 0, c.Len())
	for _, year := range c.Years() {
		out = append(out, c[year]...)
	}
	return out
}
