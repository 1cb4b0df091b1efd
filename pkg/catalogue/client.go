package catalogue

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	errs "raisonne/pkg/errors"
	"raisonne/pkg/logger"

	"github.com/PuerkitoBio/goquery"
)

// Response is the outcome of a GET that reached the server. Callers must
// branch on OK before touching Body.
type Response struct {
	URL        string
	StatusCode int
	Body       []byte
}

// OK reports whether the server answered 200
func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

// Client fetches catalogue pages and images. Requests are issued one at a
// time and are never retried.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	logger     logger.Logger
}

// NewClient creates a catalogue client. A zero timeout waits forever.
func NewClient(timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
		},
		logger: log,
	}
}

// SetHeader sets a header sent with every request
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// Fetch performs a GET. Only transport failures are returned as errors;
// a non-200 answer comes back as a Response with OK() == false.
func (c *Client) Fetch(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.NewNetworkError(url, err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("url", url).Error("HTTP request failed")
		return nil, errs.NewNetworkError(url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.NewNetworkError(url, err)
	}

	logger.LogRequest(c.logger, req.Method, url, resp.StatusCode, time.Since(start).Milliseconds())

	return &Response{
		URL:        url,
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

// FetchBytes returns the body of a successful GET
func (c *Client) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, errs.NewFetchError(url, resp.StatusCode)
	}
	return resp.Body, nil
}

// FetchDocument fetches url and parses it as HTML
func (c *Client) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := c.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, errs.NewFetchError(url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, errs.NewParseError(url, err.Error())
	}
	return doc, nil
}
