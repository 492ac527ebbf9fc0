package controller

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"imagelab-cli/internal/interfaces"
)

// Error types for different categories of failures
var (
	ErrValidationFailed     = errors.New("validation error")
	ErrTransport            = errors.New("network error")
	ErrHTTPStatus           = errors.New("http error")
	ErrDecode               = errors.New("decode error")
	ErrConfigurationInvalid = errors.New("configuration error")
	ErrOutputFailed         = errors.New("output error")
)

// GenerationError represents a structured error with actionable guidance
type GenerationError struct {
	Type       error
	Message    string
	Guidance   string
	StatusCode int
	Cause      error
}

func (e *GenerationError) Error() string {
	if e.Guidance != "" {
		return fmt.Sprintf("%s: %s\n\nSuggestion: %s", e.Type, e.Message, e.Guidance)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is matches the error category so callers can use errors.Is(err, ErrHTTPStatus)
func (e *GenerationError) Is(target error) bool {
	return e.Type == target
}

// Error constructors with actionable guidance

func NewValidationError(field string, value interface{}, reason string) *GenerationError {
	message := fmt.Sprintf("validation failed for %s: %v (%s)", field, value, reason)
	guidance := "Check the input value and ensure it meets the required format."

	switch field {
	case "prompt":
		message = MsgMissingPrompt
		guidance = "Describe the image you want, or use the random prompt action to get an example."
	case "target":
		guidance = "Target must be 'clipboard', 'stdout', or 'file:/path/to/file'. " +
			"Example: --target file:/tmp/preview.txt"
	case "model":
		guidance = "Model must be one of flux, turbo, anime or realistic."
	case "config_path":
		guidance = "Configuration file path must be valid and accessible. " +
			"Ensure the file exists and you have read permissions."
	}

	return &GenerationError{
		Type:     ErrValidationFailed,
		Message:  message,
		Guidance: guidance,
	}
}

func NewTransportError(cause error) *GenerationError {
	guidance := "Check your network connection and that the image service is reachable."
	if cause != nil && strings.Contains(cause.Error(), "deadline exceeded") {
		guidance = "The request timed out. Increase request_timeout in the configuration or set it to 0."
	}

	return &GenerationError{
		Type:     ErrTransport,
		Message:  fmt.Sprintf("Network error: %v", cause),
		Guidance: guidance,
		Cause:    cause,
	}
}

func NewHTTPError(statusCode int, cause error) *GenerationError {
	guidance := "The image service rejected the request. Try again later or with a different prompt."
	if statusCode >= 500 {
		guidance = "The image service is having trouble. Wait a moment and generate again."
	} else if statusCode == 429 {
		guidance = "Too many requests were sent to the image service. Wait before generating again."
	}

	return &GenerationError{
		Type:       ErrHTTPStatus,
		Message:    fmt.Sprintf("Error from server: HTTP %d", statusCode),
		Guidance:   guidance,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

func NewDecodeError(cause error) *GenerationError {
	return &GenerationError{
		Type:     ErrDecode,
		Message:  fmt.Sprintf("Failed to read image bytes: %v", cause),
		Guidance: "The connection was interrupted while the image was downloading. Generate again.",
		Cause:    cause,
	}
}

func NewConfigurationError(message string, cause error) *GenerationError {
	guidance := "Check your configuration file syntax and values. " +
		"Use 'imagelab --config /path/to/config.toml' to specify a different config file."

	if strings.Contains(message, "permission") {
		guidance = "Check file permissions for your configuration directory. " +
			"Ensure you have read access to ~/.config/imagelab/"
	} else if strings.Contains(message, "not found") || strings.Contains(message, "does not exist") {
		guidance = "The configuration file doesn't exist. Create ~/.config/imagelab/config.toml " +
			"or specify a different path with --config flag."
	}

	return &GenerationError{
		Type:     ErrConfigurationInvalid,
		Message:  message,
		Guidance: guidance,
		Cause:    cause,
	}
}

func NewOutputError(target string, cause error) *GenerationError {
	message := fmt.Sprintf("failed to output to target '%s'", target)
	guidance := "Check that the output target is valid and accessible."

	if target == "clipboard" {
		guidance = "Clipboard access failed. Ensure you're running in a graphical environment " +
			"or try using --target stdout instead."
	} else if strings.HasPrefix(target, "file:") {
		filePath := strings.TrimPrefix(target, "file:")
		guidance = fmt.Sprintf("Failed to write to file '%s'. Check that the directory exists "+
			"and you have write permissions.", filePath)
	}

	return &GenerationError{
		Type:     ErrOutputFailed,
		Message:  message,
		Guidance: guidance,
		Cause:    cause,
	}
}

// ClassifyGenerationError maps a generator failure onto the error taxonomy
func ClassifyGenerationError(err error) *GenerationError {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}

	var statusErr *interfaces.StatusError
	if errors.As(err, &statusErr) {
		return NewHTTPError(statusErr.StatusCode, err)
	}

	var readErr *interfaces.BodyReadError
	if errors.As(err, &readErr) {
		return NewDecodeError(readErr.Err)
	}

	return NewTransportError(err)
}

// Recovery strategies

// RecoverFromError attempts to recover from common errors with fallback strategies
func RecoverFromError(err error) error {
	if err == nil {
		return nil
	}

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		// Wrap unknown errors
		return &GenerationError{
			Type:     errors.New("unknown error"),
			Message:  err.Error(),
			Guidance: "An unexpected error occurred. Please check your inputs and try again.",
			Cause:    err,
		}
	}

	switch genErr.Type {
	case ErrConfigurationInvalid:
		return recoverFromConfigError(genErr)
	case ErrOutputFailed:
		return recoverFromOutputError(genErr)
	default:
		return genErr
	}
}

func recoverFromConfigError(err *GenerationError) error {
	// Try to create default config directory if it doesn't exist
	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		return err
	}

	configDir := fmt.Sprintf("%s/.config/imagelab", homeDir)
	if _, statErr := os.Stat(configDir); os.IsNotExist(statErr) {
		if mkdirErr := os.MkdirAll(configDir, 0755); mkdirErr != nil {
			err.Guidance += fmt.Sprintf("\n\nAttempted to create config directory '%s' but failed: %v",
				configDir, mkdirErr)
			return err
		}

		err.Guidance += fmt.Sprintf("\n\nCreated config directory '%s'. You can now create a config.toml file there.",
			configDir)
	}

	return err
}

func recoverFromOutputError(err *GenerationError) error {
	if strings.Contains(err.Message, "clipboard") {
		err.Guidance += "\n\nTry using --target stdout as a fallback."
	}
	return err
}

// IsRecoverableError checks if an error can be recovered from
func IsRecoverableError(err error) bool {
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		return false
	}

	switch genErr.Type {
	case ErrOutputFailed:
		return strings.Contains(genErr.Message, "clipboard") // Can fallback to stdout
	default:
		return false
	}
}
