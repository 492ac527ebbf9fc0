package controller

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"imagelab-cli/internal/interfaces"
)

// OutputHandler implements the OutputHandler interface
type OutputHandler struct {
	out io.Writer
}

// NewOutputHandlerTo creates an output handler whose stdout target is w
func NewOutputHandlerTo(w io.Writer) interfaces.OutputHandler {
	return &OutputHandler{out: w}
}

// WriteToClipboard copies content to the system clipboard
func (h *OutputHandler) WriteToClipboard(content string) error {
	return clipboard.WriteAll(content)
}

// WriteToStdout writes content to standard output
func (h *OutputHandler) WriteToStdout(content string) error {
	_, err := fmt.Fprintln(h.out, content)
	return err
}

// WriteToFile writes content to the specified file path
func (h *OutputHandler) WriteToFile(content string, path string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

// ValidateTarget checks an output target of the form clipboard, stdout or file:/path
func ValidateTarget(target string) error {
	switch {
	case target == "", target == "clipboard", target == "stdout":
		return nil
	case strings.HasPrefix(target, "file:") && strings.TrimPrefix(target, "file:") != "":
		return nil
	}
	return NewValidationError("target", target, "must be 'clipboard', 'stdout', or 'file:/path'")
}

// WritePreview delivers a preview data URI to target. Progress notes go to notes.
// A clipboard failure falls back to stdout.
func WritePreview(h interfaces.OutputHandler, preview, target string, notes io.Writer) error {
	if target == "" {
		target = "stdout"
	}

	switch {
	case target == "clipboard":
		if err := h.WriteToClipboard(preview); err != nil {
			outputErr := NewOutputError(target, err)
			// Try to recover by falling back to stdout
			if IsRecoverableError(outputErr) {
				fmt.Fprintf(notes, "Warning: %s\nFalling back to stdout:\n\n", outputErr.Error())
				return h.WriteToStdout(preview)
			}
			return RecoverFromError(outputErr)
		}
		fmt.Fprintln(notes, "Image data URI copied to clipboard")

	case target == "stdout":
		if err := h.WriteToStdout(preview); err != nil {
			return RecoverFromError(NewOutputError(target, err))
		}

	case strings.HasPrefix(target, "file:"):
		filePath := strings.TrimPrefix(target, "file:")
		if err := h.WriteToFile(preview, filePath); err != nil {
			return RecoverFromError(NewOutputError(target, err))
		}
		fmt.Fprintf(notes, "Image data URI written to %s\n", filePath)

	default:
		return RecoverFromError(NewValidationError("target", target, "unsupported output target"))
	}

	return nil
}
