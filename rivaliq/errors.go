package rivaliq

import (
	"errors"
	"fmt"
	"time"
)

// ErrTooManyCompanies is returned by FollowCompanies when more than ten
// company IDs are supplied; the API rejects larger batches.
var ErrTooManyCompanies = errors.New(
	"at most 10 companies can be followed at a time",
)

// ErrUnknownChannel is wrapped by channel validation failures.
var ErrUnknownChannel = errors.New("unknown channel")

// StatusError reports a non-success HTTP response from the Rival IQ API
// or a result download, carrying the status code and response body.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf(
		"unexpected status %d on %s %s: %s",
		e.StatusCode, e.Method, e.Path, e.Body,
	)
}

// ExportFailedError indicates the remote service reported that a bulk
// export job failed. The job is terminal and must not be polled again.
type ExportFailedError struct {
	Token   string
	Elapsed time.Duration
}

func (e *ExportFailedError) Error() string {
	return fmt.Sprintf(
		"bulk export %s failed after %s", e.Token, e.Elapsed.Round(time.Second),
	)
}

// PollTimeoutError indicates a bulk export job did not reach a terminal
// status within the configured wall-clock bound.
type PollTimeoutError struct {
	Token   string
	Elapsed time.Duration
	MaxWait time.Duration
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf(
		"bulk export %s still in progress after %s (max wait %s)",
		e.Token, e.Elapsed.Round(time.Second), e.MaxWait,
	)
}
