package fetch

import (
	"errors"
	"fmt"
)

// ErrChallenge marks an anti-bot interstitial. Challenges persist across
// pages, so the orchestrator stops the remaining pagination on it.
var ErrChallenge = errors.New("challenge detected")

// FetchError is a per-page network or HTTP failure. Recovered: it produces
// an ERROR page log and the run continues.
type FetchError struct {
	Err error
}

func (e FetchError) Error() string {
	return fmt.Errorf("fetch: %w", e.Err).Error()
}

func (e FetchError) Unwrap() error {
	return e.Err
}

// ParseError is a malformed payload or missing expected shape. Recovered
// the same way as FetchError.
type ParseError struct {
	Err error
}

func (e ParseError) Error() string {
	return fmt.Errorf("parse: %w", e.Err).Error()
}

func (e ParseError) Unwrap() error {
	return e.Err
}
