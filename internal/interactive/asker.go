package interactive

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"golang.org/x/term"

	"imagelab-cli/internal/interfaces"
)

// errInvalidSelection is returned when typed input does not name an option
var errInvalidSelection = errors.New("invalid selection")

// Asker abstracts the questions the interactive session asks
type Asker interface {
	interfaces.Notifier

	// Select asks the user to choose one of options
	Select(message string, options []string, defaultOption string) (string, error)

	// Input asks for free text, returning defaultValue when the answer is empty
	Input(message, defaultValue string) (string, error)
}

// DefaultAsker uses survey on a terminal and numbered line input otherwise
func DefaultAsker() Asker {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return NewSurveyAsker()
	}
	return NewLineAsker(os.Stdin, os.Stdout)
}

type surveyAsker struct{}

// NewSurveyAsker creates an asker backed by survey prompts
func NewSurveyAsker() Asker {
	return surveyAsker{}
}

func (surveyAsker) Select(message string, options []string, defaultOption string) (string, error) {
	prompt := &survey.Select{
		Message: message,
		Options: options,
	}
	if defaultOption != "" {
		prompt.Default = defaultOption
	}

	var selected string
	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}
	return selected, nil
}

func (surveyAsker) Input(message, defaultValue string) (string, error) {
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}

	var answer string
	if err := survey.AskOne(prompt, &answer); err != nil {
		return "", err
	}
	return answer, nil
}

// Alert prints message and waits for the user to acknowledge it
func (surveyAsker) Alert(message string) error {
	fmt.Printf("\n%s\n\n", message)

	var ack bool
	prompt := &survey.Confirm{
		Message: "OK",
		Default: true,
	}
	return survey.AskOne(prompt, &ack)
}

// lineAsker provides numbered selection when raw terminal mode is not available
type lineAsker struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLineAsker creates an asker reading whole lines from in
func NewLineAsker(in io.Reader, out io.Writer) Asker {
	return &lineAsker{in: bufio.NewReader(in), out: out}
}

func (a *lineAsker) Select(message string, options []string, defaultOption string) (string, error) {
	fmt.Fprintf(a.out, "\n%s\n", message)
	for i, option := range options {
		fmt.Fprintf(a.out, "  %d. %s\n", i+1, option)
	}
	fmt.Fprintf(a.out, "Enter number (1-%d) or press Enter for %q: ", len(options), defaultOption)

	line, err := a.readLine()
	if err != nil {
		return "", err
	}
	input := strings.TrimSpace(line)
	if input == "" {
		return defaultOption, nil
	}

	// Try to parse as number
	selectedIndex, err := strconv.Atoi(input)
	if err != nil || selectedIndex < 1 || selectedIndex > len(options) {
		return "", fmt.Errorf("%w: please enter a number between 1 and %d", errInvalidSelection, len(options))
	}
	return options[selectedIndex-1], nil
}

func (a *lineAsker) Input(message, defaultValue string) (string, error) {
	fmt.Fprintf(a.out, "%s [%s]: ", message, defaultValue)

	// Anything other than a blank line is returned verbatim
	input, err := a.readLine()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) == "" {
		return defaultValue, nil
	}
	return input, nil
}

func (a *lineAsker) Alert(message string) error {
	fmt.Fprintf(a.out, "\n%s\n\nPress Enter to continue...", message)
	_, err := a.readLine()
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// readLine returns the next line without its terminator. A final unterminated line is returned without error.
func (a *lineAsker) readLine() (string, error) {
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}
