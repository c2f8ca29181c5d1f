package scraper

import "errors"

var (
	// ErrInvalidInput reports an address that is not an http(s) URL.
	ErrInvalidInput = errors.New("invalid input")
	// ErrFetchFailed reports a transport failure, non-200 status or oversize body.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrParseFailed reports markup that lacks the title, the content container or any text.
	ErrParseFailed = errors.New("parse failed")
)
