package view

import (
	"embed"
	"fmt"
	htmltemplate "html/template"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"

	"imagelab-cli/internal/controller"
	"imagelab-cli/internal/interfaces"
	"imagelab-cli/internal/state"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

const statusTemplateName = "status.txt.tmpl"

// PageTemplate is the name under which the web page template is registered
const PageTemplate = "page.html.tmpl"

// Renderer implements the ViewRenderer interface
type Renderer struct {
	statusPath string
}

// NewRenderer creates a renderer. A non-empty statusPath replaces the built-in status template.
func NewRenderer(statusPath string) *Renderer {
	return &Renderer{statusPath: statusPath}
}

// NewViewData builds the template context for a state snapshot
func NewViewData(s state.State, notice string) interfaces.ViewData {
	themes := make([]string, 0, len(state.Themes()))
	for _, t := range state.Themes() {
		themes = append(themes, t.String())
	}
	models := make([]string, 0, len(state.Models()))
	for _, m := range state.Models() {
		models = append(models, string(m))
	}

	return interfaces.ViewData{
		State:      s,
		Model:      string(s.Model),
		Theme:      s.Theme.String(),
		ThemeClass: s.Theme.Class(),
		Themes:     themes,
		Models:     models,
		MinSize:    controller.MinDimension,
		MaxSize:    controller.MaxDimension,
		SizeStep:   controller.DimensionStep,
		Notice:     notice,
		Now:        time.Now(),
	}
}

// RenderText renders the plain-text status block used by the terminal front ends
func (r *Renderer) RenderText(data interfaces.ViewData) (string, error) {
	tmpl, err := r.loadStatusTemplate()
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// HTMLTemplate parses the web page template
func (r *Renderer) HTMLTemplate() (*htmltemplate.Template, error) {
	funcMap := sprig.FuncMap()
	funcMap["previewURL"] = previewURLFunc
	funcMap["humanBytes"] = humanBytesFunc

	tmpl, err := htmltemplate.New(PageTemplate).Funcs(funcMap).ParseFS(templatesFS, "templates/"+PageTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", PageTemplate, err)
	}
	return tmpl, nil
}

func (r *Renderer) loadStatusTemplate() (*template.Template, error) {
	name := statusTemplateName
	var content []byte
	var err error

	if r.statusPath != "" {
		name = filepath.Base(r.statusPath)
		content, err = os.ReadFile(r.statusPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read template file %s: %w", r.statusPath, err)
		}
	} else {
		content, err = templatesFS.ReadFile("templates/" + statusTemplateName)
		if err != nil {
			return nil, err
		}
	}

	tmpl, err := template.New(name).Funcs(textFuncMap()).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return tmpl, nil
}

// textFuncMap merges sprig with the helpers available to text templates
func textFuncMap() template.FuncMap {
	funcMap := sprig.TxtFuncMap()

	customFuncs := template.FuncMap{
		"truncate":   truncateFunc,
		"indent":     indentFunc,
		"humanBytes": humanBytesFunc,
	}
	for name, fn := range customFuncs {
		funcMap[name] = fn
	}
	return funcMap
}
