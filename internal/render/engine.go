// Package render is a small text/template engine used for both Dockerfile
// generation and manifest rendering. Templates are read-only inputs; output
// always goes to a new artifact, never back into the source file.
package render

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

type Engine struct {
	funcs template.FuncMap
}

func NewEngine() *Engine {
	return &Engine{funcs: sprig.TxtFuncMap()}
}

// RenderString parses and executes tpl against data. Missing keys are
// errors: a template referencing a field the caller never resolved should
// fail loudly, not emit "<no value>" into a manifest.
func (e *Engine) RenderString(name, tpl string, data any) (string, error) {
	t, err := template.New(name).Funcs(e.funcs).Option("missingkey=error").Parse(tpl)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}

// RenderFile renders the template file at path.
func (e *Engine) RenderFile(path string, data any) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := e.RenderString(path, string(b), data)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}
