package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"imagelab-cli/pkg/models"
)

func TestBuildRequestFromFlags(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		flags     map[string]string
		boolFlags map[string]bool
		expected  *models.GenerationRequest
		wantErr   bool
	}{
		{
			name: "prompt with size and model",
			args: []string{"  a red fox  "},
			flags: map[string]string{
				"width":  "512",
				"height": "768",
				"model":  "anime",
				"theme":  "Dark",
			},
			expected: &models.GenerationRequest{
				Prompt:      "a red fox",
				Width:       "512",
				Height:      "768",
				Model:       "anime",
				Theme:       "Dark",
				Interactive: true,
			},
		},
		{
			name: "noninteractive mode",
			args: []string{"a lighthouse"},
			flags: map[string]string{
				"target": "file:/tmp/out.txt",
			},
			boolFlags: map[string]bool{
				"yes": true,
			},
			expected: &models.GenerationRequest{
				Prompt:              "a lighthouse",
				Target:              "file:/tmp/out.txt",
				Interactive:         true,
				ForceNonInteractive: true,
			},
		},
		{
			name: "random with save path",
			flags: map[string]string{
				"save": "out.jpg",
			},
			boolFlags: map[string]bool{
				"random":  true,
				"verbose": true,
			},
			expected: &models.GenerationRequest{
				Random:      true,
				SavePath:    "out.jpg",
				Verbose:     true,
				Interactive: true,
			},
		},
		{
			name: "conflicting interactive flags",
			boolFlags: map[string]bool{
				"yes":         true,
				"interactive": true,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}

			// Add flags to command
			cmd.Flags().String("config", "", "")
			cmd.Flags().Bool("yes", false, "")
			cmd.Flags().Bool("interactive", false, "")
			cmd.Flags().Bool("verbose", false, "")
			cmd.Flags().String("width", "", "")
			cmd.Flags().String("height", "", "")
			cmd.Flags().String("model", "", "")
			cmd.Flags().String("theme", "", "")
			cmd.Flags().Bool("random", false, "")
			cmd.Flags().String("target", "", "")
			cmd.Flags().String("save", "", "")

			// Set flag values
			for flag, value := range tt.flags {
				cmd.Flags().Set(flag, value)
			}
			for flag, value := range tt.boolFlags {
				if value {
					cmd.Flags().Set(flag, "true")
				}
			}

			result, err := buildRequestFromFlags(cmd, tt.args)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if diff := cmp.Diff(tt.expected, result); diff != "" {
				t.Errorf("request mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildRequestFromFlags_MissingFlagsAreSkipped(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().String("model", "", "")
	cmd.Flags().Set("model", "turbo")

	result, err := buildRequestFromFlags(cmd, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Model != "turbo" || result.Target != "" || result.Random {
		t.Errorf("unexpected request %+v", result)
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(nil)

	versionCmd.Run(versionCmd, nil)

	out := buf.String()
	for _, want := range []string{"imagelab version dev", "commit: unknown", "platform:"} {
		if !strings.Contains(out, want) {
			t.Errorf("version output missing %q:\n%s", want, out)
		}
	}
}

func TestCommandTree(t *testing.T) {
	want := map[string]bool{"version": false, "prompts": false, "models": false, "tui": false, "serve": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}

	if serveCmd.Flags().Lookup("listen") == nil {
		t.Error("serve should accept --listen")
	}
	if tuiCmd.Flags().Lookup("random") == nil {
		t.Error("tui should accept --random")
	}
}
