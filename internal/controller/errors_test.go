package controller

import (
	"errors"
	"io"
	"strings"
	"testing"

	"imagelab-cli/internal/interfaces"
)

func TestGenerationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *GenerationError
		wantText string
	}{
		{
			name: "error with guidance",
			err: &GenerationError{
				Type:     ErrValidationFailed,
				Message:  "test message",
				Guidance: "test guidance",
			},
			wantText: "validation error: test message\n\nSuggestion: test guidance",
		},
		{
			name: "error without guidance",
			err: &GenerationError{
				Type:    ErrConfigurationInvalid,
				Message: "config error",
			},
			wantText: "configuration error: config error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.wantText {
				t.Errorf("GenerationError.Error() = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestNewConfigurationError(t *testing.T) {
	cause := errors.New("file not found")
	err := NewConfigurationError("config file missing", cause)

	if !errors.Is(err.Type, ErrConfigurationInvalid) {
		t.Errorf("Expected error type %v, got %v", ErrConfigurationInvalid, err.Type)
	}

	if !strings.Contains(err.Guidance, "configuration file") {
		t.Errorf("Expected guidance to mention configuration file, got: %s", err.Guidance)
	}

	if !errors.Is(err, cause) {
		t.Errorf("Expected error to wrap cause")
	}
}

func TestClassifyGenerationError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantType    error
		wantMessage string
	}{
		{
			name:        "status error",
			err:         &interfaces.StatusError{StatusCode: 404},
			wantType:    ErrHTTPStatus,
			wantMessage: "Error from server: HTTP 404",
		},
		{
			name:        "wrapped body read error",
			err:         errors.Join(errors.New("reading"), &interfaces.BodyReadError{Err: io.ErrUnexpectedEOF}),
			wantType:    ErrDecode,
			wantMessage: "Failed to read image bytes: unexpected EOF",
		},
		{
			name:        "anything else",
			err:         errors.New("no route to host"),
			wantType:    ErrTransport,
			wantMessage: "Network error: no route to host",
		},
		{
			name:        "already classified",
			err:         NewHTTPError(502, nil),
			wantType:    ErrHTTPStatus,
			wantMessage: "Error from server: HTTP 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyGenerationError(tt.err)
			if !errors.Is(got, tt.wantType) {
				t.Errorf("type = %v, want %v", got.Type, tt.wantType)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", got.Message, tt.wantMessage)
			}
			if got.Guidance == "" {
				t.Error("expected guidance")
			}
		})
	}
}

func TestNewTransportError_TimeoutGuidance(t *testing.T) {
	err := NewTransportError(errors.New("context deadline exceeded"))
	if !strings.Contains(err.Guidance, "request_timeout") {
		t.Errorf("expected timeout guidance, got %q", err.Guidance)
	}
}

func TestIsRecoverableError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		recoverable bool
	}{
		{
			name:        "clipboard output error",
			err:         NewOutputError("clipboard", errors.New("no display")),
			recoverable: true,
		},
		{
			name:        "file output error",
			err:         NewOutputError("file:/root/x", errors.New("denied")),
			recoverable: false,
		},
		{
			name:        "http error",
			err:         NewHTTPError(500, nil),
			recoverable: false,
		},
		{
			name:        "plain error",
			err:         errors.New("regular error"),
			recoverable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsRecoverableError(tt.err)
			if got != tt.recoverable {
				t.Errorf("IsRecoverableError() = %v, want %v", got, tt.recoverable)
			}
		})
	}
}

func TestRecoverFromError_WrapsUnknown(t *testing.T) {
	cause := errors.New("boom")
	err := RecoverFromError(cause)

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %T", err)
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be preserved")
	}
	if RecoverFromError(nil) != nil {
		t.Error("expected nil for nil")
	}
}
