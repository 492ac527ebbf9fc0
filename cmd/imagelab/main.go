package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"imagelab-cli/internal/app"
	"imagelab-cli/pkg/models"
)

// Build-time variables injected via ldflags
var (
	version   = "dev"
	commit    = "unknown"
	date      = "unknown"
	goVersion = runtime.Version()
)

var rootCmd = &cobra.Command{
	Use:   "imagelab [prompt]",
	Short: "Generate images from text prompts with Pollinations",
	Long: `imagelab turns a text prompt into an image using the public Pollinations
text-to-image service.

The prompt can be given as an argument, entered in the interactive form, or picked
from the built-in examples with --random. In noninteractive mode the image is
delivered as a data:image/jpeg;base64 URI to the chosen target, or written as a
JPEG file with --save.

Interactive mode can be controlled via config (interactive_default), overridden with
-i (force interactive) or -y (force non-interactive). Use "imagelab tui" for the
full-screen terminal UI and "imagelab serve" for the browser version.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Check if version flag is set
		if versionFlag, _ := cmd.Flags().GetBool("version"); versionFlag {
			versionCmd.Run(cmd, args)
			return nil
		}

		request, err := buildRequestFromFlags(cmd, args)
		if err != nil {
			return fmt.Errorf("invalid arguments: %w", err)
		}

		return app.Run(cmd.Context(), request, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print detailed version information including build version, commit, date, and platform details.",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "imagelab version %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built: %s\n", date)
		fmt.Fprintf(out, "  go version: %s\n", goVersion)
		fmt.Fprintf(out, "  platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "List the example prompts",
	Long:  "List the example prompts that --random and the Random prompt action choose from.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.ListPrompts(cmd.OutOrStdout())
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the available models",
	Long:  "List the models the image service accepts. The configured default is marked with *.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		request := models.NewGenerationRequest()

		// Get config path from flag
		if configPath, err := cmd.Flags().GetString("config"); err == nil {
			request.ConfigPath = configPath
		}

		return app.ListModels(request, cmd.OutOrStdout())
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui [prompt]",
	Short: "Start the full-screen terminal UI",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		request, err := buildRequestFromFlags(cmd, args)
		if err != nil {
			return fmt.Errorf("invalid arguments: %w", err)
		}
		return app.RunTUI(cmd.Context(), request, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the image lab in the browser",
	Long:  "Start a local web server. Each browser gets its own session, kept in memory until it has been idle for 30 minutes.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		request := models.NewGenerationRequest()

		var err error
		if request.ConfigPath, err = cmd.Flags().GetString("config"); err != nil {
			return fmt.Errorf("invalid config flag: %w", err)
		}
		if request.Verbose, err = cmd.Flags().GetBool("verbose"); err != nil {
			return fmt.Errorf("invalid verbose flag: %w", err)
		}
		listen, err := cmd.Flags().GetString("listen")
		if err != nil {
			return fmt.Errorf("invalid listen flag: %w", err)
		}

		return app.Serve(cmd.Context(), request, listen, cmd.ErrOrStderr())
	},
}

func init() {
	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(promptsCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path (default ~/.config/imagelab/config.toml)")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "noninteractive mode - generate once without prompts")
	rootCmd.PersistentFlags().BoolP("interactive", "i", false, "force interactive mode (overrides config default)")
	rootCmd.PersistentFlags().Bool("verbose", false, "log debug details to stderr")
	rootCmd.PersistentFlags().BoolP("version", "v", false, "print version information")

	// Generation flags, shared by the root command and the terminal UI
	for _, cmd := range []*cobra.Command{rootCmd, tuiCmd} {
		cmd.Flags().String("width", "", "image width in pixels")
		cmd.Flags().String("height", "", "image height in pixels")
		cmd.Flags().StringP("model", "m", "", "model (flux, turbo, anime, realistic)")
		cmd.Flags().String("theme", "", "theme (Teal, Lilac, Dark)")
		cmd.Flags().BoolP("random", "r", false, "start from a random example prompt")
	}

	// Main command flags
	rootCmd.Flags().StringP("target", "t", "", "output target (clipboard, stdout, file:/path)")
	rootCmd.Flags().StringP("save", "o", "", "write the generated JPEG to this path instead of the target")

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (overrides listen_addr)")
}

// buildRequestFromFlags constructs a GenerationRequest from command flags and arguments.
// Flags a command does not define are left at their zero value.
func buildRequestFromFlags(cmd *cobra.Command, args []string) (*models.GenerationRequest, error) {
	request := models.NewGenerationRequest()

	// Get prompt from positional argument
	if len(args) > 0 {
		request.Prompt = strings.TrimSpace(args[0])
	}

	flags := cmd.Flags()
	stringFlags := map[string]*string{
		"config": &request.ConfigPath,
		"width":  &request.Width,
		"height": &request.Height,
		"model":  &request.Model,
		"theme":  &request.Theme,
		"target": &request.Target,
		"save":   &request.SavePath,
	}
	for name, dst := range stringFlags {
		if flags.Lookup(name) == nil {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return nil, fmt.Errorf("invalid %s flag: %w", name, err)
		}
		*dst = value
	}

	boolFlags := map[string]*bool{
		"yes":         &request.ForceNonInteractive,
		"interactive": &request.ForceInteractive,
		"random":      &request.Random,
		"verbose":     &request.Verbose,
	}
	for name, dst := range boolFlags {
		if flags.Lookup(name) == nil {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return nil, fmt.Errorf("invalid %s flag: %w", name, err)
		}
		*dst = value
	}

	// Validate that both flags are not set
	if request.ForceInteractive && request.ForceNonInteractive {
		return nil, fmt.Errorf("cannot use both --interactive and --yes flags")
	}

	return request, nil
}

func main() {
	// Disable usage on error to show only our custom error messages
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
