package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2/terminal"

	"imagelab-cli/internal/controller"
	"imagelab-cli/internal/interfaces"
	"imagelab-cli/internal/state"
	"imagelab-cli/internal/view"
)

// Menu entries
const (
	actionGenerate = "Generate image"
	actionWait     = "Wait for the current image"
	actionPrompt   = "Edit prompt"
	actionRandom   = "Random prompt"
	actionWidth    = "Set width"
	actionHeight   = "Set height"
	actionModel    = "Choose model"
	actionTheme    = "Choose theme"
	actionCopy     = "Copy image to clipboard"
	actionSave     = "Save image data URI to file"
	actionConvert  = "Convert to PNG/ICO"
	actionQuit     = "Quit"
)

// Prompter runs the interactive menu loop for one session
type Prompter struct {
	ctrl     *controller.Controller
	renderer interfaces.ViewRenderer
	output   interfaces.OutputHandler
	asker    Asker
	out      io.Writer

	pending <-chan error
}

// NewPrompter creates a new interactive prompter
func NewPrompter(ctrl *controller.Controller, renderer interfaces.ViewRenderer, output interfaces.OutputHandler, asker Asker, out io.Writer) *Prompter {
	return &Prompter{
		ctrl:     ctrl,
		renderer: renderer,
		output:   output,
		asker:    asker,
		out:      out,
	}
}

// Run shows the state and menu until the user quits or input ends
func (p *Prompter) Run(ctx context.Context) error {
	for {
		snapshot := p.ctrl.Snapshot()
		if err := p.render(snapshot); err != nil {
			return err
		}

		options := menuOptions(snapshot)
		choice, err := p.asker.Select("What would you like to do?", options, options[0])
		if err != nil {
			if errors.Is(err, errInvalidSelection) {
				fmt.Fprintf(p.out, "%v\n", err)
				continue
			}
			if errors.Is(err, io.EOF) || errors.Is(err, terminal.InterruptErr) {
				return nil
			}
			return err
		}

		if choice == actionQuit {
			return nil
		}
		if err := p.handle(ctx, choice, snapshot); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, terminal.InterruptErr) {
				return nil
			}
			return err
		}
	}
}

func (p *Prompter) handle(ctx context.Context, choice string, snapshot state.State) error {
	switch choice {
	case actionGenerate:
		p.pending = p.ctrl.Start(ctx)

	case actionWait:
		if p.pending != nil {
			// Failures are already reflected in the rendered status
			<-p.pending
			p.pending = nil
		}

	case actionPrompt:
		// The current prompt is shown in the status above; a blank answer clears it
		text, err := p.asker.Input("Describe your image", "")
		if err != nil {
			return err
		}
		p.ctrl.SetPrompt(text)

	case actionRandom:
		p.ctrl.PickRandomPrompt()

	case actionWidth, actionHeight:
		return p.askDimension(choice, snapshot)

	case actionModel:
		models := make([]string, 0, len(state.Models()))
		for _, m := range state.Models() {
			models = append(models, string(m))
		}
		selected, err := p.asker.Select("Model", models, string(snapshot.Model))
		if err != nil {
			return err
		}
		p.ctrl.SetModel(selected)

	case actionTheme:
		themes := make([]string, 0, len(state.Themes()))
		for _, t := range state.Themes() {
			themes = append(themes, t.String())
		}
		selected, err := p.asker.Select("Theme", themes, snapshot.Theme.String())
		if err != nil {
			return err
		}
		p.ctrl.SetTheme(selected)

	case actionCopy:
		if err := controller.WritePreview(p.output, snapshot.Preview, "clipboard", p.out); err != nil {
			fmt.Fprintf(p.out, "%v\n", err)
		}

	case actionSave:
		path, err := p.asker.Input("File path", "preview.txt")
		if err != nil {
			return err
		}
		if err := controller.WritePreview(p.output, snapshot.Preview, "file:"+path, p.out); err != nil {
			fmt.Fprintf(p.out, "%v\n", err)
		}

	case actionConvert:
		return p.ctrl.ConvertClicked(p.asker)
	}

	return nil
}

func (p *Prompter) askDimension(choice string, snapshot state.State) error {
	current, set := snapshot.Width, p.ctrl.SetWidth
	label := "Width"
	if choice == actionHeight {
		current, set = snapshot.Height, p.ctrl.SetHeight
		label = "Height"
	}

	text, err := p.asker.Input(fmt.Sprintf("%s (%d-%d, step %d)", label,
		controller.MinDimension, controller.MaxDimension, controller.DimensionStep), fmt.Sprint(current))
	if err != nil {
		return err
	}
	if !set(text) {
		fmt.Fprintf(p.out, "%s must be a whole number; keeping %d\n", label, current)
	}
	return nil
}

func (p *Prompter) render(snapshot state.State) error {
	text, err := p.renderer.RenderText(view.NewViewData(snapshot, ""))
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "\n%s\n", strings.TrimRight(text, "\n"))
	return nil
}

// menuOptions lists the actions available in the given state
func menuOptions(s state.State) []string {
	options := make([]string, 0, 12)
	if s.InFlight {
		options = append(options, actionWait)
	} else {
		options = append(options, actionGenerate)
	}
	options = append(options, actionPrompt, actionRandom, actionWidth, actionHeight, actionModel, actionTheme)
	if s.HasPreview() {
		options = append(options, actionCopy, actionSave)
	}
	return append(options, actionConvert, actionQuit)
}
