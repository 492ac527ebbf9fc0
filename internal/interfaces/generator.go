package interfaces

import (
	"context"
	"fmt"
)

// ImageRequest holds the parameters of one generation
type ImageRequest struct {
	Prompt string
	Width  int
	Height int
	Model  string
}

// ImageResult is the raw outcome of a successful generation
type ImageResult struct {
	URL         string
	ContentType string
	Data        []byte
}

// ImageGenerator issues a single generation request against an image service
type ImageGenerator interface {
	// Generate sends one request and returns the full response body.
	// Non-success responses are reported as *StatusError, body read
	// failures as *BodyReadError, and anything else is a transport failure.
	Generate(ctx context.Context, req ImageRequest) (*ImageResult, error)
}

// StatusError reports a response received with a non-success status code
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// BodyReadError reports a response whose body could not be read
type BodyReadError struct {
	Err error
}

func (e *BodyReadError) Error() string {
	return fmt.Sprintf("failed to read response body: %v", e.Err)
}

func (e *BodyReadError) Unwrap() error {
	return e.Err
}
