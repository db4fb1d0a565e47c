package discovery

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/spigell/fundraiser/internal/logger"
)

const (
	serpAPIURL      = "https://serpapi.com/search.json"
	userAgent       = "spigell/fundraiser"
	contentEncoding = "gzip"

	defaultMaxRetries = 2
	defaultRetryBase  = time.Second
)

// statusError is a non-200 answer from the search API.
type statusError struct {
	Code   int
	Status string
}

func (e *statusError) Error() string {
	return "bad status: " + e.Status
}

func (e *statusError) temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// OrganicResult is one web search hit.
type OrganicResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// SerpClient queries the SerpAPI Google engine.
type SerpClient struct {
	apiKey     string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
	// MaxRetries and RetryBase control the Fibonacci backoff used for
	// throttling and server errors.
	MaxRetries uint64
	RetryBase  time.Duration
}

func NewSerpClient(apiKey string, log *zap.Logger) *SerpClient {
	return &SerpClient{
		apiKey: apiKey,
		logger: logger.OrNop(log),
		HTTPClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		UserAgent:  userAgent,
		APIURL:     serpAPIURL,
		MaxRetries: defaultMaxRetries,
		RetryBase:  defaultRetryBase,
	}
}

// Search runs one query and returns its organic results.
func (c *SerpClient) Search(ctx context.Context, query string) ([]OrganicResult, error) {
	if c.apiKey == "" {
		return nil, errors.New("serpapi key is not configured")
	}

	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("engine", "google")
	q.Set("q", query)
	q.Set("num", "10")
	q.Set("hl", "en")
	q.Set("safe", "active")

	base := c.RetryBase
	if base <= 0 {
		base = defaultRetryBase
	}

	var payload map[string]any
	err := retry.Do(ctx, retry.WithMaxRetries(c.MaxRetries, retry.NewFibonacci(base)), func(ctx context.Context) error {
		payload = nil
		err := c.getJSON(ctx, c.APIURL, q, &payload)

		var status *statusError
		if errors.As(err, &status) && status.temporary() {
			c.logger.Debug("search request throttled or failed, retrying", zap.Int("status", status.Code))
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("serpapi search %q: %w", query, err)
	}

	var results []OrganicResult
	cfg := &mapstructure.DecoderConfig{
		Result:           &results,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(payload["organic_results"]); err != nil {
		return nil, fmt.Errorf("decode organic results: %w", err)
	}

	c.logger.Debug("got search results", zap.String("query", query), zap.Int("results", len(results)))

	return results, nil
}

func (c *SerpClient) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("Accept", "application/json")

	return req
}

func (c *SerpClient) getJSON(ctx context.Context, endpoint string, q url.Values, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	req = c.setHeaders(req)
	req.URL.RawQuery = q.Encode()

	c.logger.Debug("make request", zap.String("url", endpoint), zap.String("query", q.Get("q")))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{Code: resp.StatusCode, Status: resp.Status}
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	return json.NewDecoder(reader).Decode(target)
}
