package wiki

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/osrs-mcp/config"
	"github.com/yourusername/osrs-mcp/internal/logging"
	"github.com/yourusername/osrs-mcp/internal/metrics"
	"github.com/yourusername/osrs-mcp/internal/tracing"
)

var (
	// ErrNoAPIEndpoint is returned when neither known api.php location answers.
	ErrNoAPIEndpoint = eris.New("no valid api endpoint")
	// ErrEmptyResponse is returned when the API answers without the requested module.
	ErrEmptyResponse = eris.New("empty api response")
)

// Client handles OSRS Wiki API requests
type Client struct {
	httpClient   *http.Client
	baseURL      string
	userAgent    string
	cache        *Cache
	cacheTTL     time.Duration
	cacheTTLInfo time.Duration
	limiter      *rate.Limiter
	logger       *logrus.Entry

	apiPath   string
	apiPathMu sync.RWMutex
}

// NewClient creates a new wiki API client
func NewClient(cfg config.WikiConfig, logger logrus.FieldLogger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL:      strings.TrimRight(cfg.URL, "/"),
		userAgent:    cfg.UserAgent,
		cache:        NewCache(),
		cacheTTL:     cfg.CacheTTL,
		cacheTTLInfo: cfg.CacheTTLInfo,
		limiter:      rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		logger:       logging.Component(logger, "wiki"),
	}
}

// BaseURL returns the wiki root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// getAPIPath discovers and caches the API path for the wiki
func (c *Client) getAPIPath(ctx context.Context) (string, error) {
	c.apiPathMu.RLock()
	if c.apiPath != "" {
		defer c.apiPathMu.RUnlock()
		return c.apiPath, nil
	}
	c.apiPathMu.RUnlock()

	// /api.php is the default MediaWiki path
	paths := []string{"/api.php", "/w/api.php"}

	for _, path := range paths {
		testURL := c.baseURL + path + "?action=query&meta=siteinfo&format=json"

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, testURL, nil)
		if err != nil {
			continue
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			continue
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			c.apiPathMu.Lock()
			c.apiPath = path
			c.apiPathMu.Unlock()
			c.logger.WithField("path", path).Debug("discovered api path")
			return path, nil
		}
	}

	return "", eris.Wrapf(ErrNoAPIEndpoint, "%s (tried %v)", c.baseURL, paths)
}

// MakeRequest makes an HTTP GET request to the MediaWiki API
func (c *Client) MakeRequest(ctx context.Context, params url.Values) (resp *mwResponse, err error) {
	action := params.Get("action")
	page := params.Get("page")
	if page == "" {
		page = params.Get("titles")
	}

	ctx, span := tracing.StartSpan(ctx, "wiki."+action)
	tracing.AddWikiAttributes(span, action, page)
	start := time.Now()
	defer func() {
		metrics.RecordWikiRequest(action, time.Since(start).Seconds(), err == nil)
		tracing.RecordError(span, err)
		span.End()
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "rate limit wait")
	}

	apiPath, err := c.getAPIPath(ctx)
	if err != nil {
		return nil, err
	}

	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("utf8", "1")
	params.Set("maxlag", "5")

	fullURL := c.baseURL + apiPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Encoding", "gzip")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "http request")
	}
	defer httpResp.Body.Close()

	gzipped := strings.Contains(httpResp.Header.Get("Content-Encoding"), "gzip")

	if httpResp.StatusCode != http.StatusOK {
		bodyStr := "(compressed error response)"
		if !gzipped {
			body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
			bodyStr = string(body)
		}
		return nil, eris.Errorf("http status %d: %s", httpResp.StatusCode, bodyStr)
	}

	reader := io.Reader(httpResp.Body)
	if gzipped {
		gzReader, err := gzip.NewReader(httpResp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "gzip reader")
		}
		defer gzReader.Close()
		reader = gzReader
	}

	var mwResp mwResponse
	if err := json.NewDecoder(reader).Decode(&mwResp); err != nil {
		return nil, eris.Wrap(err, "decode response")
	}

	if mwResp.Error != nil {
		return nil, &APIError{
			Code:    mwResp.Error.Code,
			Message: mwResp.Error.Info,
		}
	}

	c.logger.WithFields(logrus.Fields{
		"action":   action,
		"page":     page,
		"duration": time.Since(start).String(),
	}).Debug("wiki request complete")

	return &mwResp, nil
}

// ParseTree returns the XML parse tree of a page's wikitext, following
// redirects. Results are cached for the info TTL.
func (c *Client) ParseTree(ctx context.Context, title string) (string, error) {
	cacheKey := ParseTreeCacheKey(title)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.(string), nil
	}

	params := url.Values{}
	params.Set("action", "parse")
	params.Set("page", title)
	params.Set("prop", "parsetree")
	params.Set("redirects", "1")

	resp, err := c.MakeRequest(ctx, params)
	if err != nil {
		return "", eris.Wrapf(err, "get parse tree for %q", title)
	}

	if resp.Parse == nil || resp.Parse.ParseTree.Content == "" {
		return "", eris.Wrapf(ErrEmptyResponse, "parse tree for %q", title)
	}

	tree := resp.Parse.ParseTree.Content
	c.cache.Set(cacheKey, tree, c.cacheTTLInfo)

	return tree, nil
}

// Wikitext returns the current raw wikitext of a page.
func (c *Client) Wikitext(ctx context.Context, title string) (*PageRaw, error) {
	cacheKey := WikitextCacheKey(title)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.(*PageRaw), nil
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", title)
	params.Set("prop", "revisions")
	params.Set("rvprop", "content|timestamp")
	params.Set("rvslots", "main")
	params.Set("redirects", "1")

	resp, err := c.MakeRequest(ctx, params)
	if err != nil {
		return nil, eris.Wrapf(err, "get wikitext for %q", title)
	}

	if resp.Query == nil || len(resp.Query.Pages) == 0 {
		return nil, eris.Wrapf(ErrEmptyResponse, "wikitext for %q", title)
	}

	page := resp.Query.Pages[0]
	if page.Missing {
		return nil, &APIError{Code: "missingtitle", Message: "The page you specified doesn't exist."}
	}
	if len(page.Revisions) == 0 {
		return nil, eris.Wrapf(ErrEmptyResponse, "no revisions for %q", title)
	}

	rev := page.Revisions[0]
	raw := &PageRaw{
		Title:     page.Title,
		Wikitext:  rev.Slots.Main.Content,
		Timestamp: rev.Timestamp,
	}

	c.cache.Set(cacheKey, raw, c.cacheTTL)
	return raw, nil
}

// Download fetches a file hosted by the wiki, such as a page image, under the
// same rate limit as API calls. Bodies over maxBytes are rejected.
func (c *Client) Download(ctx context.Context, fileURL string, maxBytes int64) (data []byte, mimeType string, err error) {
	ctx, span := tracing.StartSpan(ctx, "wiki.download")
	tracing.AddWikiAttributes(span, "download", fileURL)
	start := time.Now()
	defer func() {
		metrics.RecordWikiRequest("download", time.Since(start).Seconds(), err == nil)
		tracing.RecordError(span, err)
		span.End()
	}()

	// Scheme-relative URLs are common in imageinfo responses
	if strings.HasPrefix(fileURL, "//") {
		fileURL = "https:" + fileURL
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", eris.Wrap(err, "rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, "", eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", eris.Wrap(err, "http request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", eris.Errorf("http status %d downloading %s", resp.StatusCode, fileURL)
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, "", eris.Wrap(err, "read body")
	}
	if int64(len(data)) > maxBytes {
		return nil, "", eris.Errorf("file %s exceeds %d bytes", fileURL, maxBytes)
	}

	mimeType = resp.Header.Get("Content-Type")
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}

	c.logger.WithFields(logrus.Fields{
		"url":   fileURL,
		"bytes": len(data),
	}).Debug("download complete")

	return data, mimeType, nil
}

// APIError represents a MediaWiki API error
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mediawiki api error: %s: %s", e.Code, e.Message)
}

// GetCache returns the cache instance
func (c *Client) GetCache() *Cache {
	return c.cache
}

// GetCacheTTL returns the default cache TTL
func (c *Client) GetCacheTTL() time.Duration {
	return c.cacheTTL
}

// GetCacheTTLInfo returns the cache TTL for slow-changing data
func (c *Client) GetCacheTTLInfo() time.Duration {
	return c.cacheTTLInfo
}
