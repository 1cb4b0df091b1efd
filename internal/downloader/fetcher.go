package downloader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"raisonne/pkg/logger"
	"raisonne/pkg/models"
)

// Extensions recognised in image URLs, in match order
var knownExtensions = []string{".jpg", ".png", ".jpeg"}

// ImageSource downloads raw image bytes
type ImageSource interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// ImageStorage stores image bytes under an artwork id
type ImageStorage interface {
	SaveImage(r io.Reader, artworkID int, ext string) (string, error)
}

// DownloadJob is one image to fetch
type DownloadJob struct {
	URL       string
	ArtworkID int
}

// DownloadResult is the outcome of a successful job
type DownloadResult struct {
	Job      DownloadJob
	Path     string
	Size     int
	Duration time.Duration
}

// Summary totals a batch of downloads
type Summary struct {
	Downloaded int
	Bytes      int64
	Duration   time.Duration
}

// Fetcher downloads images one at a time. The first failure stops a batch.
// Image URLs are expected to be absolute, as recorded by the page extractor.
type Fetcher struct {
	client  ImageSource
	storage ImageStorage
	logger  logger.Logger
}

// NewFetcher creates an image fetcher
func NewFetcher(client ImageSource, storage ImageStorage, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Fetcher{
		client:  client,
		storage: storage,
		logger:  log,
	}
}

// CanonicalExtension picks the file extension for an image URL from the
// extension of its path. Anything other than .jpg, .png or .jpeg gives "".
func CanonicalExtension(imageURL string) string {
	p := imageURL
	if u, err := url.Parse(imageURL); err == nil {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))

	for _, known := range knownExtensions {
		if ext == known {
			return known
		}
	}
	return ""
}

// Download fetches one image and stores it as img<artworkID><ext>
func (f *Fetcher) Download(ctx context.Context, job DownloadJob) (*DownloadResult, error) {
	start := time.Now()

	data, err := f.client.FetchBytes(ctx, job.URL)
	if err != nil {
		logger.LogDownload(f.logger, job.ArtworkID, job.URL, false, err)
		return nil, err
	}

	savedPath, err := f.storage.SaveImage(bytes.NewReader(data), job.ArtworkID, CanonicalExtension(job.URL))
	if err != nil {
		logger.LogDownload(f.logger, job.ArtworkID, job.URL, false, err)
		return nil, err
	}

	logger.LogDownload(f.logger, job.ArtworkID, job.URL, true, nil)

	return &DownloadResult{
		Job:      job,
		Path:     savedPath,
		Size:     len(data),
		Duration: time.Since(start),
	}, nil
}

// DownloadCollection downloads every record's image in year order
func (f *Fetcher) DownloadCollection(ctx context.Context, collection models.Collection, progress func(done, total int)) (*Summary, error) {
	start := time.Now()
	records := collection.Records()
	summary := &Summary{}

	f.logger.InfoWithFields("Downloading images", map[string]interface{}{
		"total": len(records),
	})

	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result, err := f.Download(ctx, DownloadJob{URL: record.ImageURL, ArtworkID: record.ArtworkID})
		if err != nil {
			return summary, fmt.Errorf("failed to download image for artwork %d: %w", record.ArtworkID, err)
		}

		summary.Downloaded++
		summary.Bytes += int64(result.Size)
		if progress != nil {
			progress(i+1, len(records))
		}
	}

	summary.Duration = time.Since(start)
	f.logger.InfoWithFields("Image download complete", map[string]interface{}{
		"downloaded": summary.Downloaded,
		"bytes":      summary.Bytes,
		"duration":   summary.Duration.String(),
	})

	return summary, nil
}
