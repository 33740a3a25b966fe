package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned before any I/O when a required input is empty.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotConfigured is returned when an operation needs a provider that was not set up.
	ErrNotConfigured = errors.New("provider not configured")
	// ErrUnsupportedURL is returned by the stream operations for URLs of no known provider.
	ErrUnsupportedURL = errors.New("unsupported url")
	// ErrUnresolvedCrossProvider means the other catalog had no candidate for a track.
	ErrUnresolvedCrossProvider = errors.New("no cross-provider match")
	// ErrDelegateFailure means the stream delegate produced no URL or stream.
	ErrDelegateFailure = errors.New("stream delegate failed")
)

// InvalidArgument builds an ErrInvalidArgument naming the offending input.
func InvalidArgument(what string) error {
	return fmt.Errorf("%w: %s is required", ErrInvalidArgument, what)
}

// ProviderError is a transport or authorization failure of a catalog or lyrics service
// that survived the adapter's retry.
type ProviderError struct {
	Provider   string
	Message    string
	HTTPStatus int // Zero when no HTTP response was received.
	Err        error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Message)
	if e.HTTPStatus != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.HTTPStatus)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps err for provider with a short message.
func NewProviderError(provider, message string, status int, err error) *ProviderError {
	return &ProviderError{Provider: provider, Message: message, HTTPStatus: status, Err: err}
}

// HTTPStatusOf returns the upstream status carried by a ProviderError in err's chain.
func HTTPStatusOf(err error) int {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.HTTPStatus
	}
	return 0
}

// Stage names a step of the cross-provider stream resolution.
type Stage string

const (
	StageSourceFetch         Stage = "source fetch"
	StageCrossProviderSearch Stage = "cross-provider search"
	StageDelegateResolution  Stage = "delegate resolution"
)

// StageError tells which step of a hard-failure operation failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageError(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
