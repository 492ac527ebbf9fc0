package controller

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/dustin/go-humanize"

	"imagelab-cli/internal/interfaces"
	"imagelab-cli/internal/logutil"
	"imagelab-cli/internal/prompts"
	"imagelab-cli/internal/state"
)

// Dimension affordances offered by the front ends. The controller itself does not clamp.
const (
	MinDimension  = 256
	MaxDimension  = 4096
	DimensionStep = 64
)

// Status and error texts shown to the user
const (
	DefaultPrompt = "A serene mountain landscape at sunrise"
	DefaultWidth  = 1280
	DefaultHeight = 720

	StatusReady      = "Ready."
	StatusRandom     = "Random prompt suggested. Ready to generate! 🎲"
	StatusNeedPrompt = "Please enter a description for your image."
	StatusGenerating = "Generating image... please wait."
	StatusFailed     = "Error while generating image."

	MsgMissingPrompt = "Missing prompt"

	ConvertMessage = "JPG → PNG/ICO conversion is available in the desktop Python version.\n\n" +
		"In this web version, right-click the generated image and choose “Save image as…”"
)

const dataURIPrefix = "data:image/jpeg;base64,"

// Controller owns the state of one session and turns user events into state transitions
type Controller struct {
	store     *state.Store
	generator interfaces.ImageGenerator
	intn      func(n int) int
	logger    *slog.Logger

	// seq identifies the most recent generation; older results are dropped
	seq atomic.Uint64
}

// Option configures a Controller
type Option func(*Controller)

// WithRandom replaces the source used to pick example prompts
func WithRandom(intn func(n int) int) Option {
	return func(c *Controller) {
		c.intn = intn
	}
}

// WithLogger sets the logger used for state transitions
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// New creates a controller for a fresh session
func New(gen interfaces.ImageGenerator, initial state.State, opts ...Option) *Controller {
	c := &Controller{
		store:     state.NewStore(initial),
		generator: gen,
		intn:      rand.Intn,
		logger:    logutil.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// InitialState returns the state a new session starts in. A nil config yields the built-in defaults.
func InitialState(cfg *interfaces.Config) state.State {
	s := state.State{
		Prompt: DefaultPrompt,
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Model:  state.ModelFlux,
		Theme:  state.ThemeTeal,
		Status: StatusReady,
	}
	if cfg == nil {
		return s
	}

	if cfg.DefaultPrompt != "" {
		s.Prompt = cfg.DefaultPrompt
	}
	if cfg.DefaultWidth > 0 {
		s.Width = cfg.DefaultWidth
	}
	if cfg.DefaultHeight > 0 {
		s.Height = cfg.DefaultHeight
	}
	if cfg.DefaultModel != "" {
		s.Model = state.Model(cfg.DefaultModel)
	}
	if cfg.DefaultTheme != "" {
		s.Theme = state.ParseTheme(cfg.DefaultTheme)
	}
	return s
}

// Snapshot returns the current state
func (c *Controller) Snapshot() state.State {
	return c.store.Snapshot()
}

// Subscribe registers a listener for every state update
func (c *Controller) Subscribe(l state.Listener) func() {
	return c.store.Subscribe(l)
}

// SetTheme selects a theme by name. Unknown names select Teal.
func (c *Controller) SetTheme(value string) {
	theme := state.ParseTheme(value)
	c.store.Update(func(s *state.State) {
		s.Theme = theme
	})
}

// SetPrompt replaces the prompt verbatim
func (c *Controller) SetPrompt(text string) {
	c.store.Update(func(s *state.State) {
		s.Prompt = text
	})
}

// SetWidth parses text as an unsigned integer and stores it.
// It reports false and leaves the state untouched when text does not parse.
func (c *Controller) SetWidth(text string) bool {
	v, ok := parseDimension(text)
	if !ok {
		return false
	}
	c.store.Update(func(s *state.State) {
		s.Width = v
	})
	return true
}

// SetHeight is the height counterpart of SetWidth
func (c *Controller) SetHeight(text string) bool {
	v, ok := parseDimension(text)
	if !ok {
		return false
	}
	c.store.Update(func(s *state.State) {
		s.Height = v
	})
	return true
}

// SetModel stores the model identifier verbatim
func (c *Controller) SetModel(value string) {
	c.store.Update(func(s *state.State) {
		s.Model = state.Model(value)
	})
}

// PickRandomPrompt replaces the prompt with a random example and returns it
func (c *Controller) PickRandomPrompt() string {
	prompt := prompts.Pick(c.intn)
	c.store.Update(func(s *state.State) {
		s.Prompt = prompt
		s.Status = StatusRandom
		s.Error = ""
	})
	return prompt
}

// Start validates the prompt and, when it is usable, begins a generation in the background.
//
// The validation outcome and the in-flight transition are applied before Start returns.
// The returned channel receives exactly one value, nil on success, once the
// generation has reached a terminal state.
func (c *Controller) Start(ctx context.Context) <-chan error {
	done := make(chan error, 1)

	var (
		req   interfaces.ImageRequest
		seq   uint64
		valid bool
	)
	c.store.Update(func(s *state.State) {
		prompt := strings.TrimSpace(s.Prompt)
		if prompt == "" {
			s.Status = StatusNeedPrompt
			s.Error = MsgMissingPrompt
			return
		}

		valid = true
		seq = c.seq.Add(1)
		req = interfaces.ImageRequest{
			Prompt: prompt,
			Width:  s.Width,
			Height: s.Height,
			Model:  string(s.Model),
		}
		s.Status = StatusGenerating
		s.Error = ""
		s.InFlight = true
		s.Preview = ""
		s.PreviewSize = 0
	})

	if !valid {
		c.logger.Debug("generation rejected", "reason", "empty prompt")
		done <- NewValidationError("prompt", "", "prompt is empty")
		return done
	}

	c.logger.Info("generation started", "seq", seq, "width", req.Width, "height", req.Height, "model", req.Model)

	go func() {
		done <- c.run(ctx, seq, req)
	}()
	return done
}

// Generate runs one generation and waits for it to finish
func (c *Controller) Generate(ctx context.Context) error {
	return <-c.Start(ctx)
}

func (c *Controller) run(ctx context.Context, seq uint64, req interfaces.ImageRequest) error {
	result, err := c.generator.Generate(ctx, req)
	if err != nil {
		genErr := ClassifyGenerationError(err)
		c.finish(seq, func(s *state.State) {
			s.Status = StatusFailed
			s.Error = genErr.Message
		})
		c.logger.Warn("generation failed", "seq", seq, "error", genErr.Message)
		return genErr
	}

	preview := EncodeDataURI(result.Data)
	c.finish(seq, func(s *state.State) {
		s.Preview = preview
		s.PreviewSize = len(result.Data)
		s.Status = fmt.Sprintf("Image generated at %dx%d using model '%s'.", req.Width, req.Height, req.Model)
		s.Error = ""
	})
	c.logger.Info("generation finished", "seq", seq, "size", humanize.Bytes(uint64(len(result.Data))))
	return nil
}

// finish applies a terminal transition unless a newer generation has started since seq
func (c *Controller) finish(seq uint64, fn func(*state.State)) {
	applied := c.store.UpdateIf(func(s *state.State) bool {
		if c.seq.Load() != seq {
			return false
		}
		fn(s)
		s.InFlight = false
		return true
	})
	if !applied {
		c.logger.Debug("stale generation result dropped", "seq", seq, "current", c.seq.Load())
	}
}

// ConvertClicked shows the informational conversion notice through n
func (c *Controller) ConvertClicked(n interfaces.Notifier) error {
	return n.Alert(ConvertMessage)
}

// EncodeDataURI wraps image bytes in a JPEG data URI
func EncodeDataURI(data []byte) string {
	return dataURIPrefix + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI returns the image bytes held by a data URI produced by EncodeDataURI
func DecodeDataURI(uri string) ([]byte, error) {
	payload, ok := strings.CutPrefix(uri, dataURIPrefix)
	if !ok {
		return nil, fmt.Errorf("not a jpeg data uri")
	}
	return base64.StdEncoding.DecodeString(payload)
}

func parseDimension(text string) (int, bool) {
	v, err := strconv.ParseUint(text, 10, 32)
	if err != nil {
		return 0, false
	}
	return int(v), true
}
