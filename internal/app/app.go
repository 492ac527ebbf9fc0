package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"

	"imagelab-cli/internal/config"
	"imagelab-cli/internal/controller"
	"imagelab-cli/internal/interactive"
	"imagelab-cli/internal/interfaces"
	"imagelab-cli/internal/logutil"
	"imagelab-cli/internal/pollinations"
	"imagelab-cli/internal/prompts"
	"imagelab-cli/internal/state"
	"imagelab-cli/internal/tui"
	"imagelab-cli/internal/view"
	"imagelab-cli/internal/web"
	"imagelab-cli/pkg/models"
)

// environment is everything a front end needs, built from the resolved configuration
type environment struct {
	cfg       *interfaces.Config
	logger    *slog.Logger
	generator interfaces.ImageGenerator
	renderer  *view.Renderer
}

// Run executes the root command: an interactive session or a single generation
func Run(ctx context.Context, request *models.GenerationRequest, out, errOut io.Writer) error {
	env, err := setup(request, map[string]interface{}{"target": request.Target}, errOut)
	if err != nil {
		return err
	}

	// Resolve interactive mode based on flags and config
	resolveInteractiveMode(request, env.cfg)

	if err := controller.ValidateRequest(request); err != nil {
		return err
	}

	ctrl := env.newController(request)
	if request.Random {
		ctrl.PickRandomPrompt()
	}
	output := controller.NewOutputHandlerTo(out)

	if request.Interactive {
		prompter := interactive.NewPrompter(ctrl, env.renderer, output, interactive.DefaultAsker(), out)
		return prompter.Run(ctx)
	}

	return generateOnce(ctx, ctrl, output, env.cfg.Target, request.SavePath, errOut)
}

// RunTUI starts the full-screen terminal front end
func RunTUI(ctx context.Context, request *models.GenerationRequest, out, errOut io.Writer) error {
	env, err := setup(request, nil, errOut)
	if err != nil {
		return err
	}
	if err := controller.ValidateRequest(&models.GenerationRequest{
		Interactive: true,
		Model:       request.Model,
		Width:       request.Width,
		Height:      request.Height,
	}); err != nil {
		return err
	}

	ctrl := env.newController(request)
	if request.Random {
		ctrl.PickRandomPrompt()
	}
	return tui.Run(ctx, ctrl, controller.NewOutputHandlerTo(out))
}

// Serve runs the web front end until ctx is cancelled. A non-empty listen overrides listen_addr.
func Serve(ctx context.Context, request *models.GenerationRequest, listen string, errOut io.Writer) error {
	env, err := setup(request, map[string]interface{}{"listen_addr": listen}, errOut)
	if err != nil {
		return err
	}

	fmt.Fprintf(errOut, "Serving on http://%s\n", env.cfg.ListenAddr)

	// Every browser session starts from the configured defaults
	server := web.NewServer(func() *controller.Controller {
		return env.newController(nil)
	}, env.renderer, env.logger)
	return server.Serve(ctx, env.cfg.ListenAddr)
}

// generateOnce runs a single generation and delivers the result to target
func generateOnce(ctx context.Context, ctrl *controller.Controller, output interfaces.OutputHandler, target, savePath string, errOut io.Writer) error {
	if err := ctrl.Generate(ctx); err != nil {
		return err
	}

	snapshot := ctrl.Snapshot()
	fmt.Fprintln(errOut, snapshot.Status)

	if savePath != "" {
		data, err := controller.DecodeDataURI(snapshot.Preview)
		if err != nil {
			return controller.NewDecodeError(err)
		}
		if err := os.WriteFile(savePath, data, 0644); err != nil {
			return controller.RecoverFromError(controller.NewOutputError("file:"+savePath, err))
		}
		fmt.Fprintf(errOut, "Image written to %s\n", savePath)
		return nil
	}

	return controller.WritePreview(output, snapshot.Preview, target, errOut)
}

// setup loads .env and the configuration, applies flag overrides and builds the shared services
func setup(request *models.GenerationRequest, flags map[string]interface{}, errOut io.Writer) (*environment, error) {
	if err := config.LoadDotEnv(""); err != nil {
		return nil, controller.RecoverFromError(controller.NewConfigurationError(err.Error(), err))
	}

	manager := config.NewManager()
	manager.SetConfigPath(request.ConfigPath)
	if _, err := manager.Load(""); err != nil {
		return nil, controller.RecoverFromError(controller.NewConfigurationError(err.Error(), err))
	}
	for key, value := range flags {
		manager.SetFlag(key, value)
	}

	cfg, err := resolveConfig(manager)
	if err != nil {
		return nil, err
	}

	// Validate has already rejected unknown levels
	level, _ := logutil.ParseLevel(cfg.LogLevel)
	if request.Verbose {
		level = slog.LevelDebug
	}
	logger := logutil.NewLogger(errOut, level)
	logger.Debug("configuration resolved", "endpoint", cfg.Endpoint, "model", cfg.DefaultModel, "timeout", cfg.RequestTimeout)

	return &environment{
		cfg:       cfg,
		logger:    logger,
		generator: pollinations.NewClient(cfg.Endpoint, cfg.RequestTimeout),
		renderer:  view.NewRenderer(cfg.StatusTemplate),
	}, nil
}

// resolveConfig applies precedence and validates the result
func resolveConfig(manager interfaces.ConfigManager) (*interfaces.Config, error) {
	cfg, err := manager.Resolve()
	if err != nil {
		return nil, controller.RecoverFromError(controller.NewConfigurationError(err.Error(), err))
	}
	if err := manager.Validate(cfg); err != nil {
		return nil, controller.RecoverFromError(controller.NewConfigurationError(err.Error(), err))
	}
	return cfg, nil
}

// newController creates a session controller. Fields given in request override the configured defaults.
func (env *environment) newController(request *models.GenerationRequest) *controller.Controller {
	ctrl := controller.New(env.generator, controller.InitialState(env.cfg), controller.WithLogger(env.logger))
	if request == nil {
		return ctrl
	}

	if request.HasPrompt() {
		ctrl.SetPrompt(request.Prompt)
	}
	if request.Width != "" {
		ctrl.SetWidth(request.Width)
	}
	if request.Height != "" {
		ctrl.SetHeight(request.Height)
	}
	if request.Model != "" {
		ctrl.SetModel(request.Model)
	}
	if request.Theme != "" {
		ctrl.SetTheme(request.Theme)
	}
	return ctrl
}

// resolveInteractiveMode determines the final interactive mode based on flags and config
func resolveInteractiveMode(request *models.GenerationRequest, cfg *interfaces.Config) {
	// Priority: explicit flags > config default
	if request.ForceInteractive {
		request.Interactive = true
	} else if request.ForceNonInteractive {
		request.Interactive = false
	} else {
		request.Interactive = cfg.InteractiveDefault
	}
}

// ListPrompts prints the example prompts offered by the random prompt action
func ListPrompts(w io.Writer) error {
	table := newTable(w)
	table.SetHeader([]string{"#", "Prompt"})
	for i, p := range prompts.All() {
		table.Append([]string{fmt.Sprint(i + 1), p})
	}
	table.Render()
	return nil
}

// ListModels prints the selectable models, marking the configured default
func ListModels(request *models.GenerationRequest, w io.Writer) error {
	manager := config.NewManager()
	manager.SetConfigPath(request.ConfigPath)
	cfg, err := manager.Load("")
	if err != nil {
		return controller.RecoverFromError(controller.NewConfigurationError(err.Error(), err))
	}

	fmt.Fprintf(w, "Config: %s\n\n", contractPath(configPathOrDefault(request.ConfigPath)))

	table := newTable(w)
	table.SetHeader([]string{"Model", "Default"})
	for _, m := range state.Models() {
		mark := ""
		if string(m) == cfg.DefaultModel {
			mark = "*"
		}
		table.Append([]string{string(m), mark})
	}
	table.Render()
	return nil
}

func newTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("  ")
	return table
}

func configPathOrDefault(path string) string {
	if path != "" {
		return path
	}
	if p, err := config.DefaultPath(); err == nil {
		return p
	}
	return "(none)"
}

// contractPath converts a full path back to use ~ for the home directory
func contractPath(path string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	// Add trailing slash to home directory for proper matching
	homeDirWithSlash := homeDir + string(filepath.Separator)
	pathWithSlash := path + string(filepath.Separator)

	if strings.HasPrefix(pathWithSlash, homeDirWithSlash) {
		relativePath := path[len(homeDir):]
		if relativePath == "" {
			return "~"
		}
		return "~" + relativePath
	}

	return path
}
