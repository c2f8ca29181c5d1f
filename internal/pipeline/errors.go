package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrScrapeTimeout reports that the scrape step ran out of time while the request had budget left.
	ErrScrapeTimeout = errors.New("scraping timed out")
	// ErrDeadlineExceeded reports that the whole request budget was spent.
	ErrDeadlineExceeded = errors.New("request deadline exceeded")
)

// Pipeline stage names.
const (
	StageScrape     = "scrape"
	StageSynthesize = "synthesize"
	StagePersist    = "persist"
	StagePublish    = "publish"
)

// StageError tags a failure with the stage it happened in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage string, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// StageOf returns the stage recorded on err, or "" when err carries none.
func StageOf(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
