package controller

import (
	"os"
	"strconv"

	"imagelab-cli/internal/state"
	"imagelab-cli/pkg/models"
)

// ValidateRequest validates the options of a command-line run
func ValidateRequest(request *models.GenerationRequest) error {
	if request == nil {
		return NewValidationError("request", nil, "request cannot be nil")
	}

	// The prompt is not checked here: an empty one falls back to default_prompt
	// and Start rejects whatever is still blank.
	if err := ValidateTarget(request.Target); err != nil {
		return err
	}

	if request.Model != "" && !state.Model(request.Model).IsKnown() {
		return NewValidationError("model", request.Model, "unknown model")
	}

	for field, value := range map[string]string{"width": request.Width, "height": request.Height} {
		if value == "" {
			continue
		}
		if _, err := strconv.ParseUint(value, 10, 32); err != nil {
			return NewValidationError(field, value, "must be a positive whole number")
		}
	}

	// Validate config path if specified
	if request.ConfigPath != "" {
		if _, err := os.Stat(request.ConfigPath); os.IsNotExist(err) {
			return NewValidationError("config_path", request.ConfigPath, "file does not exist")
		}
	}

	return nil
}
