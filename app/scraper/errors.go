package scraper

import (
	"errors"
	"fmt"
)

type FetchErrorKind string

const (
	FetchKindNetwork FetchErrorKind = "network"
	FetchKindTimeout FetchErrorKind = "timeout"
	FetchKindStatus  FetchErrorKind = "status"
	FetchKindBlocked FetchErrorKind = "blocked"
)

// FetchError describes why the listing page could not be retrieved.
// Kind is FetchKindBlocked when the source (or an edge proxy in front of it)
// refused the request, so callers can report that cause specifically.
type FetchError struct {
	URL        string
	StatusCode int
	Kind       FetchErrorKind
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Kind == FetchKindBlocked:
		return fmt.Sprintf("fetch %s: blocked by source (HTTP %d)", e.URL, e.StatusCode)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	default:
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError means the fetched markup could not be turned into a document.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse listing page: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsBlocked reports whether err is a FetchError of kind blocked.
func IsBlocked(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == FetchKindBlocked
}

// IsParseError reports whether err wraps a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
