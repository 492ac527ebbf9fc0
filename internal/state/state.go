package state

import "strings"

// Theme selects the colour scheme of the front end
type Theme int

const (
	ThemeTeal Theme = iota
	ThemeLilac
	ThemeDark
)

// Themes returns every theme in display order
func Themes() []Theme {
	return []Theme{ThemeTeal, ThemeLilac, ThemeDark}
}

// ParseTheme maps a selection string to a Theme. Unknown values map to Teal.
func ParseTheme(value string) Theme {
	switch value {
	case "Lilac":
		return ThemeLilac
	case "Dark":
		return ThemeDark
	default:
		return ThemeTeal
	}
}

func (t Theme) String() string {
	switch t {
	case ThemeLilac:
		return "Lilac"
	case ThemeDark:
		return "Dark"
	default:
		return "Teal"
	}
}

// Class returns the display class applied to the page root
func (t Theme) Class() string {
	return "theme-" + strings.ToLower(t.String())
}

// Model identifies the backend algorithm the image service should use
type Model string

const (
	ModelFlux      Model = "flux"
	ModelTurbo     Model = "turbo"
	ModelAnime     Model = "anime"
	ModelRealistic Model = "realistic"
)

// Models returns the selectable models in display order
func Models() []Model {
	return []Model{ModelFlux, ModelTurbo, ModelAnime, ModelRealistic}
}

// IsKnown reports whether m is one of the selectable models
func (m Model) IsKnown() bool {
	for _, known := range Models() {
		if m == known {
			return true
		}
	}
	return false
}

// State is a snapshot of everything the front ends render
type State struct {
	Prompt      string `json:"prompt"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Model       Model  `json:"model"`
	Theme       Theme  `json:"-"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	InFlight    bool   `json:"in_flight"`
	Preview     string `json:"preview,omitempty"`
	PreviewSize int    `json:"preview_size,omitempty"`
}

// HasError reports whether an error message is set
func (s State) HasError() bool {
	return s.Error != ""
}

// HasPreview reports whether a generated image is available
func (s State) HasPreview() bool {
	return s.Preview != ""
}
