package interfaces

import (
	"html/template"
	"time"

	"imagelab-cli/internal/state"
)

// ViewData contains all variables available to view templates
type ViewData struct {
	State      state.State `json:"state"`
	Model      string      `json:"model"`
	Theme      string      `json:"theme"`
	ThemeClass string      `json:"theme_class"`
	Themes     []string    `json:"themes"`
	Models     []string    `json:"models"`
	MinSize    int         `json:"min_size"`
	MaxSize    int         `json:"max_size"`
	SizeStep   int         `json:"size_step"`
	Notice     string      `json:"notice,omitempty"`
	Now        time.Time   `json:"now"`
}

// ViewRenderer renders session state for the text and HTML front ends
type ViewRenderer interface {
	// RenderText renders a plain-text summary of the state
	RenderText(data ViewData) (string, error)

	// HTMLTemplate returns the parsed page template set
	HTMLTemplate() (*template.Template, error)
}
