package enrichment

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"github.com/spigell/fundraiser/internal/logger"
)

const (
	fetchTimeout = 10 * time.Second
	maxPageBytes = 4 << 20
	userAgent    = "spigell/fundraiser"
)

// Allowed reports whether the host of rawURL ends with one of domains.
// An empty domain list allows everything.
func Allowed(rawURL string, domains []string) bool {
	if len(domains) == 0 {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	for _, d := range domains {
		if d = strings.TrimSpace(d); d != "" && strings.HasSuffix(u.Host, d) {
			return true
		}
	}
	return false
}

// HTTPFetcher downloads pages and extracts their readable text.
type HTTPFetcher struct {
	allowed    []string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
}

func NewHTTPFetcher(allowed []string, log *zap.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		allowed: allowed,
		logger:  logger.OrNop(log),
		HTTPClient: &http.Client{
			Timeout: fetchTimeout,
		},
		UserAgent: userAgent,
	}
}

// Fetch returns the whitespace-collapsed article text of rawURL. Any failure,
// including a disallowed domain, yields an empty string.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) string {
	if !Allowed(rawURL, f.allowed) {
		f.logger.Debug("domain is not allowed, skipping", zap.String("url", rawURL))
		return ""
	}

	text, err := f.fetch(ctx, rawURL)
	if err != nil {
		f.logger.Debug("fetch failed", zap.String("url", rawURL), zap.Error(err))
		return ""
	}
	return text
}

func (f *HTTPFetcher) fetch(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", err
	}

	article, err := readability.FromReader(strings.NewReader(string(body)), parsed)
	if err != nil {
		return "", fmt.Errorf("extract article: %w", err)
	}

	return strings.Join(strings.Fields(article.TextContent), " "), nil
}
