package models

// GenerationRequest represents the options gathered from the command line for one run
type GenerationRequest struct {
	Prompt string
	Width  string
	Height string
	Model  string
	Theme  string
	Random bool
	Target string

	// SavePath, when set, receives the decoded JPEG of a one-shot run
	SavePath string

	ConfigPath string
	Verbose    bool

	// Interactive mode, resolved from the flags below and interactive_default
	Interactive         bool
	ForceInteractive    bool
	ForceNonInteractive bool
}

// NewGenerationRequest creates a request with interactive mode pending resolution
func NewGenerationRequest() *GenerationRequest {
	return &GenerationRequest{Interactive: true}
}

// HasPrompt reports whether a prompt was given on the command line
func (r *GenerationRequest) HasPrompt() bool {
	return r.Prompt != ""
}
