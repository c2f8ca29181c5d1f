package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/samvad-hq/samvad-wiki-quiz/internal/logger"
	"github.com/samvad-hq/samvad-wiki-quiz/pkg/httpclient"
	"github.com/samvad-hq/samvad-wiki-quiz/pkg/sources"
)

const (
	// DefaultMaxMarkupBytes caps the article body accepted from a single fetch.
	DefaultMaxMarkupBytes int64 = 10 << 20
	snippetBytes                = 1024
)

// FetcherOptions tunes a Fetcher.
type FetcherOptions struct {
	MaxMarkupBytes int64
	Logger         logger.Logger
}

// Fetcher downloads article markup with exactly one GET per call.
type Fetcher struct {
	client   httpclient.Client
	sources  *sources.Registry
	maxBytes int64
	log      logger.Logger
}

// NewFetcher builds a Fetcher. A nil client falls back to a resty client
// bounded by httpclient.DefaultTimeout.
func NewFetcher(client httpclient.Client, reg *sources.Registry, opts FetcherOptions) *Fetcher {
	if client == nil {
		client = httpclient.NewRestyClient(httpclient.Options{Timeout: httpclient.DefaultTimeout})
	}
	if reg == nil {
		reg = sources.DefaultRegistry()
	}
	maxBytes := opts.MaxMarkupBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxMarkupBytes
	}
	return &Fetcher{
		client:   client,
		sources:  reg,
		maxBytes: maxBytes,
		log:      logger.Ensure(opts.Logger),
	}
}

// ValidateAddress rejects anything that does not start with http:// or https://.
func ValidateAddress(address string) error {
	if strings.HasPrefix(address, "http://") || strings.HasPrefix(address, "https://") {
		return nil
	}
	return fmt.Errorf("%w: address must start with http:// or https://", ErrInvalidInput)
}

// Fetch validates address and returns the raw markup of the page.
func (f *Fetcher) Fetch(ctx context.Context, address string) ([]byte, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}

	src, known := f.sources.Match(address)
	if !known {
		f.log.WarnObj("address is not a known encyclopedia source", "fetch", map[string]any{
			"url": address,
		})
	}

	resp, err := f.client.Get(ctx, address, sources.Headers(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d body: %s", ErrFetchFailed, resp.StatusCode(), bodySnippet(resp.Body()))
	}

	if declared, err := strconv.ParseInt(resp.Header("Content-Length"), 10, 64); err == nil && declared > f.maxBytes {
		return nil, fmt.Errorf("%w: declared body of %d bytes exceeds %d", ErrFetchFailed, declared, f.maxBytes)
	}
	body := resp.Body()
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: body of %d bytes exceeds %d", ErrFetchFailed, len(body), f.maxBytes)
	}

	f.log.DebugObj("article fetched", "fetch", map[string]any{
		"url":       address,
		"source_id": src.ID,
		"bytes":     len(body),
	})
	return body, nil
}

// bodySnippet trims body to at most snippetBytes without splitting a rune.
func bodySnippet(body []byte) string {
	snippet := strings.TrimSpace(string(body))
	if len(snippet) <= snippetBytes {
		return snippet
	}
	cut := snippetBytes
	for cut > 0 && !utf8.RuneStart(snippet[cut]) {
		cut--
	}
	return snippet[:cut]
}
