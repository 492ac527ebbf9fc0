package controller

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"imagelab-cli/internal/interfaces"
	"imagelab-cli/internal/prompts"
	"imagelab-cli/internal/state"
	"imagelab-cli/pkg/models"
)

// fakeGenerator records requests and the state observed while each one is outstanding
type fakeGenerator struct {
	mu       sync.Mutex
	result   *interfaces.ImageResult
	err      error
	requests []interfaces.ImageRequest
	observed []state.State
	snapshot func() state.State
	entered  chan struct{}
	release  chan struct{}
}

func (f *fakeGenerator) Generate(ctx context.Context, req interfaces.ImageRequest) (*interfaces.ImageResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	if f.snapshot != nil {
		f.observed = append(f.observed, f.snapshot())
	}
	result, err := f.result, f.err
	entered, release := f.entered, f.release
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if release != nil {
		<-release
	}
	return result, err
}

func newTestController(gen *fakeGenerator, opts ...Option) *Controller {
	c := New(gen, InitialState(nil), opts...)
	gen.snapshot = c.Snapshot
	return c
}

func TestInitialState_Defaults(t *testing.T) {
	want := state.State{
		Prompt: "A serene mountain landscape at sunrise",
		Width:  1280,
		Height: 720,
		Model:  state.ModelFlux,
		Theme:  state.ThemeTeal,
		Status: "Ready.",
	}
	if diff := cmp.Diff(want, InitialState(nil)); diff != "" {
		t.Errorf("InitialState(nil) mismatch (-want +got):\n%s", diff)
	}
}

func TestInitialState_FromConfig(t *testing.T) {
	got := InitialState(&interfaces.Config{
		DefaultPrompt: "a lighthouse",
		DefaultWidth:  512,
		DefaultModel:  "turbo",
		DefaultTheme:  "Dark",
	})

	if got.Prompt != "a lighthouse" || got.Width != 512 || got.Height != 720 {
		t.Errorf("unexpected prompt/size: %+v", got)
	}
	if got.Model != state.ModelTurbo || got.Theme != state.ThemeDark {
		t.Errorf("unexpected model/theme: %+v", got)
	}
}

func TestController_SetTheme(t *testing.T) {
	tests := []struct {
		input string
		want  state.Theme
	}{
		{"Teal", state.ThemeTeal},
		{"Lilac", state.ThemeLilac},
		{"Dark", state.ThemeDark},
		{"Neon", state.ThemeTeal},
		{"", state.ThemeTeal},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c := New(&fakeGenerator{}, InitialState(&interfaces.Config{DefaultTheme: "Lilac"}))
			c.SetTheme(tt.input)
			if got := c.Snapshot().Theme; got != tt.want {
				t.Errorf("SetTheme(%q) theme = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestController_SetWidthHeight(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		ok     bool
		expect int
	}{
		{name: "valid", input: "512", ok: true, expect: 512},
		{name: "zero accepted", input: "0", ok: true, expect: 0},
		{name: "no clamping", input: "10000", ok: true, expect: 10000},
		{name: "letters", input: "abc", ok: false, expect: 1280},
		{name: "negative", input: "-5", ok: false, expect: 1280},
		{name: "surrounding whitespace", input: " 512", ok: false, expect: 1280},
		{name: "empty", input: "", ok: false, expect: 1280},
		{name: "overflow", input: "4294967296", ok: false, expect: 1280},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&fakeGenerator{}, InitialState(nil))
			if got := c.SetWidth(tt.input); got != tt.ok {
				t.Errorf("SetWidth(%q) = %v, want %v", tt.input, got, tt.ok)
			}
			if got := c.Snapshot().Width; got != tt.expect {
				t.Errorf("width = %d, want %d", got, tt.expect)
			}

			c.SetHeight(tt.input)
			wantHeight := 720
			if tt.ok {
				wantHeight = tt.expect
			}
			if got := c.Snapshot().Height; got != wantHeight {
				t.Errorf("height = %d, want %d", got, wantHeight)
			}
		})
	}
}

func TestController_InvalidWidthDoesNotNotify(t *testing.T) {
	c := New(&fakeGenerator{}, InitialState(nil))
	calls := 0
	c.Subscribe(func(state.State) { calls++ })

	c.SetWidth("wide")
	if calls != 0 {
		t.Errorf("expected no notification for a rejected width, got %d", calls)
	}
}

func TestController_SetPromptAndModel(t *testing.T) {
	c := New(&fakeGenerator{}, InitialState(nil))
	c.SetPrompt("   ")
	c.SetModel("not-a-model")

	s := c.Snapshot()
	if s.Prompt != "   " {
		t.Errorf("prompt should be stored verbatim, got %q", s.Prompt)
	}
	if s.Model != "not-a-model" {
		t.Errorf("model should be stored verbatim, got %q", s.Model)
	}
}

func TestController_PickRandomPrompt(t *testing.T) {
	c := New(&fakeGenerator{}, InitialState(nil), WithRandom(func(n int) int { return n - 1 }))
	c.store.Update(func(s *state.State) { s.Error = "Missing prompt" })

	got := c.PickRandomPrompt()

	all := prompts.All()
	if got != all[len(all)-1] {
		t.Errorf("PickRandomPrompt() = %q, want last example", got)
	}
	s := c.Snapshot()
	if s.Prompt != got {
		t.Errorf("prompt = %q, want %q", s.Prompt, got)
	}
	if s.Status != StatusRandom {
		t.Errorf("status = %q, want %q", s.Status, StatusRandom)
	}
	if s.HasError() {
		t.Errorf("expected error to be cleared, got %q", s.Error)
	}
}

func TestController_Generate_EmptyPrompt(t *testing.T) {
	for _, prompt := range []string{"", "   ", "\t\n"} {
		gen := &fakeGenerator{}
		c := newTestController(gen)
		c.SetPrompt(prompt)

		err := c.Generate(context.Background())
		if !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("expected validation error, got %v", err)
		}

		s := c.Snapshot()
		if s.Status != "Please enter a description for your image." || s.Error != "Missing prompt" {
			t.Errorf("unexpected status/error: %q / %q", s.Status, s.Error)
		}
		if s.InFlight {
			t.Error("in-flight must stay false for an empty prompt")
		}
		if len(gen.requests) != 0 {
			t.Errorf("expected no request, got %d", len(gen.requests))
		}
	}
}

func TestController_Generate_Success(t *testing.T) {
	payload := []byte{0xff, 0xd8, 0xff, 0xd9}
	gen := &fakeGenerator{result: &interfaces.ImageResult{Data: payload}}
	c := newTestController(gen)
	c.SetPrompt("  a red fox  ")
	c.SetWidth("512")
	c.SetHeight("512")
	c.SetModel("turbo")

	if err := c.Generate(context.Background()); err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	want := interfaces.ImageRequest{Prompt: "a red fox", Width: 512, Height: 512, Model: "turbo"}
	if diff := cmp.Diff([]interfaces.ImageRequest{want}, gen.requests); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}

	s := c.Snapshot()
	if s.Status != "Image generated at 512x512 using model 'turbo'." {
		t.Errorf("status = %q", s.Status)
	}
	if s.Preview != "data:image/jpeg;base64,/9j/2Q==" {
		t.Errorf("preview = %q", s.Preview)
	}
	if s.PreviewSize != len(payload) || s.InFlight || s.HasError() {
		t.Errorf("unexpected final state: %+v", s)
	}
}

func TestController_Generate_Failures(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantType  error
		wantError string
	}{
		{
			name:      "http status",
			err:       &interfaces.StatusError{StatusCode: 503},
			wantType:  ErrHTTPStatus,
			wantError: "Error from server: HTTP 503",
		},
		{
			name:      "body read",
			err:       &interfaces.BodyReadError{Err: io.ErrUnexpectedEOF},
			wantType:  ErrDecode,
			wantError: "Failed to read image bytes: unexpected EOF",
		},
		{
			name:      "transport",
			err:       errors.New("dial tcp: connection refused"),
			wantType:  ErrTransport,
			wantError: "Network error: dial tcp: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{err: tt.err}
			c := newTestController(gen)
			c.store.Update(func(s *state.State) { s.Preview = "data:image/jpeg;base64,AAAA" })

			err := c.Generate(context.Background())
			if !errors.Is(err, tt.wantType) {
				t.Fatalf("expected %v, got %v", tt.wantType, err)
			}

			s := c.Snapshot()
			if s.Status != "Error while generating image." {
				t.Errorf("status = %q", s.Status)
			}
			if s.Error != tt.wantError {
				t.Errorf("error = %q, want %q", s.Error, tt.wantError)
			}
			if s.InFlight {
				t.Error("in-flight must be false after a failure")
			}
			if s.HasPreview() {
				t.Error("preview from an earlier run must be cleared when a new generation starts")
			}
		})
	}
}

func TestController_HTTPErrorCarriesStatusCode(t *testing.T) {
	gen := &fakeGenerator{err: &interfaces.StatusError{StatusCode: 429}}
	c := newTestController(gen)

	err := c.Generate(context.Background())
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *GenerationError, got %T", err)
	}
	if genErr.StatusCode != 429 {
		t.Errorf("StatusCode = %d, want 429", genErr.StatusCode)
	}
}

func TestController_Start_InFlightBeforeFetch(t *testing.T) {
	gen := &fakeGenerator{result: &interfaces.ImageResult{Data: []byte("x")}, release: make(chan struct{})}
	c := newTestController(gen)
	c.store.Update(func(s *state.State) { s.Preview = "data:image/jpeg;base64,AAAA" })

	done := c.Start(context.Background())

	s := c.Snapshot()
	if !s.InFlight || s.Status != "Generating image... please wait." || s.HasPreview() || s.HasError() {
		t.Errorf("unexpected state right after Start: %+v", s)
	}

	close(gen.release)
	if err := <-done; err != nil {
		t.Fatalf("generation failed: %v", err)
	}

	if len(gen.observed) != 1 || !gen.observed[0].InFlight {
		t.Errorf("generator should observe in-flight state, got %+v", gen.observed)
	}
	if c.Snapshot().InFlight {
		t.Error("in-flight must be false after completion")
	}
}

func TestController_StaleResultDropped(t *testing.T) {
	first := make(chan struct{})
	gen := &fakeGenerator{
		err:     &interfaces.StatusError{StatusCode: 500},
		entered: make(chan struct{}, 1),
		release: first,
	}
	c := newTestController(gen)

	staleDone := c.Start(context.Background())
	<-gen.entered

	gen.mu.Lock()
	gen.entered = nil
	gen.release = nil
	gen.result = &interfaces.ImageResult{Data: []byte("new")}
	gen.err = nil
	gen.mu.Unlock()

	if err := c.Generate(context.Background()); err != nil {
		t.Fatalf("second generation failed: %v", err)
	}
	after := c.Snapshot()

	close(first)
	<-staleDone

	if diff := cmp.Diff(after, c.Snapshot()); diff != "" {
		t.Errorf("stale result changed the state (-want +got):\n%s", diff)
	}
	if c.Snapshot().HasError() {
		t.Error("stale failure must not overwrite the newer success")
	}
}

func TestController_NotificationsPerGeneration(t *testing.T) {
	gen := &fakeGenerator{result: &interfaces.ImageResult{Data: []byte("img")}}
	c := newTestController(gen)

	var seen []bool
	c.Subscribe(func(s state.State) { seen = append(seen, s.InFlight) })

	if err := c.Generate(context.Background()); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]bool{true, false}, seen); diff != "" {
		t.Errorf("in-flight notifications mismatch (-want +got):\n%s", diff)
	}
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Alert(message string) error {
	n.messages = append(n.messages, message)
	return nil
}

func TestController_ConvertClicked(t *testing.T) {
	c := New(&fakeGenerator{}, InitialState(nil))
	before := c.Snapshot()

	n := &recordingNotifier{}
	if err := c.ConvertClicked(n); err != nil {
		t.Fatal(err)
	}

	if len(n.messages) != 1 {
		t.Fatalf("expected one alert, got %d", len(n.messages))
	}
	if !strings.HasPrefix(n.messages[0], "JPG → PNG/ICO conversion") || !strings.Contains(n.messages[0], "\n\nIn this web version") {
		t.Errorf("unexpected alert text %q", n.messages[0])
	}
	if diff := cmp.Diff(before, c.Snapshot()); diff != "" {
		t.Errorf("convert must not change state (-want +got):\n%s", diff)
	}
}

func TestDecodeDataURI_RejectsOtherSchemes(t *testing.T) {
	if _, err := DecodeDataURI("data:image/png;base64,AAAA"); err == nil {
		t.Error("expected an error for a non-jpeg data uri")
	}
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		request *models.GenerationRequest
		wantErr bool
	}{
		{name: "nil request", request: nil, wantErr: true},
		{name: "interactive without prompt", request: &models.GenerationRequest{Interactive: true}},
		{name: "noninteractive without prompt", request: &models.GenerationRequest{}},
		{name: "random without prompt", request: &models.GenerationRequest{Random: true}},
		{name: "invalid target", request: &models.GenerationRequest{Prompt: "x", Target: "printer"}, wantErr: true},
		{name: "file target", request: &models.GenerationRequest{Prompt: "x", Target: "file:/tmp/out.txt"}},
		{name: "empty file target", request: &models.GenerationRequest{Prompt: "x", Target: "file:"}, wantErr: true},
		{name: "unknown model", request: &models.GenerationRequest{Prompt: "x", Model: "dalle"}, wantErr: true},
		{name: "bad width", request: &models.GenerationRequest{Prompt: "x", Width: "big"}, wantErr: true},
		{name: "good size", request: &models.GenerationRequest{Prompt: "x", Width: "512", Height: "768"}},
		{name: "missing config", request: &models.GenerationRequest{Prompt: "x", ConfigPath: "/nonexistent/imagelab.toml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.request)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				var genErr *GenerationError
				if !errors.As(err, &genErr) {
					t.Fatalf("Expected GenerationError, got %T", err)
				}
				if !errors.Is(genErr, ErrValidationFailed) {
					t.Errorf("Expected error type %v, got %v", ErrValidationFailed, genErr.Type)
				}
				if genErr.Guidance == "" {
					t.Error("Expected error to have guidance, got empty string")
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}
