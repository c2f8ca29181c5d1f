package api

import (
	"errors"
	"net/http"

	"github.com/samvad-hq/samvad-wiki-quiz/internal/pipeline"
	"github.com/samvad-hq/samvad-wiki-quiz/internal/scraper"
)

// statusFor maps a pipeline error to the HTTP status and the detail shown to clients.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, pipeline.ErrScrapeTimeout):
		return http.StatusRequestTimeout, "Scraping timed out. Please check your internet connection."
	case errors.Is(err, pipeline.ErrDeadlineExceeded):
		return http.StatusGatewayTimeout, "Request timed out. Please try again."
	case errors.Is(err, scraper.ErrInvalidInput),
		errors.Is(err, scraper.ErrFetchFailed),
		errors.Is(err, scraper.ErrParseFailed):
		return http.StatusBadRequest, "Failed to scrape URL: " + causeOf(err).Error()
	default:
		return http.StatusInternalServerError, "Error: " + causeOf(err).Error()
	}
}

// causeOf strips the stage prefix so clients see the underlying message.
func causeOf(err error) error {
	var se *pipeline.StageError
	if errors.As(err, &se) && se.Err != nil {
		return se.Err
	}
	return err
}
