package scraper

import (
	"context"

	"github.com/samvad-hq/samvad-wiki-quiz/internal/domain"
	"github.com/samvad-hq/samvad-wiki-quiz/internal/logger"
	"github.com/samvad-hq/samvad-wiki-quiz/pkg/sources"
)

// Scraper turns an article address into its title and cleaned body text.
type Scraper struct {
	fetcher *Fetcher
	sources *sources.Registry
	log     logger.Logger
}

// NewScraper wires a fetcher to the profile registry used for selectors.
func NewScraper(fetcher *Fetcher, reg *sources.Registry, log logger.Logger) *Scraper {
	if reg == nil {
		reg = sources.DefaultRegistry()
	}
	if fetcher == nil {
		fetcher = NewFetcher(nil, reg, FetcherOptions{Logger: log})
	}
	return &Scraper{fetcher: fetcher, sources: reg, log: logger.Ensure(log)}
}

// Scrape fetches address and extracts the article. ctx is checked again before parsing so a
// late response is not parsed after its deadline.
func (s *Scraper) Scrape(ctx context.Context, address string) (domain.ScrapedArticle, error) {
	markup, err := s.fetcher.Fetch(ctx, address)
	if err != nil {
		return domain.ScrapedArticle{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.ScrapedArticle{}, err
	}

	src, _ := s.sources.Match(address)
	article, err := ExtractWith(src, markup)
	if err != nil {
		return domain.ScrapedArticle{}, err
	}

	s.log.InfoObj("article scraped", "scrape", map[string]any{
		"url":        address,
		"title":      article.Title,
		"text_chars": len(article.Text),
	})
	return article, nil
}
