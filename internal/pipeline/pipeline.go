// Package pipeline sequences the deployment stages. Control flow is
// strictly linear: each stage either advances the shared run state or
// halts the whole run, and the driver names the stage that failed.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/kubeship/kubeship/internal/appconfig"
	"github.com/kubeship/kubeship/internal/dockerfile"
	"github.com/kubeship/kubeship/internal/envctx"
	"github.com/kubeship/kubeship/internal/language"
)

// State is the run context threaded through every stage. Earlier stages
// fill the fields later stages read; nothing here is global.
type State struct {
	Opts     envctx.Options
	Settings envctx.Settings

	Env       envctx.Environment
	Language  language.Language
	GitSHA    string
	Fields    *appconfig.Fields
	BuildSpec dockerfile.BuildSpec
	Image     string
	Template  string
	Rendered  string
}

// ModuleDir resolves the module path option. "/" designates a
// single-module repository rooted at the working directory; anything else
// is taken as a path to the module directory.
func (s *State) ModuleDir() string {
	p := s.Opts.ModulePath
	if p == "" || p == "/" {
		return "."
	}
	return filepath.Clean(p)
}

type Stage struct {
	Name string
	Run  func(ctx context.Context, st *State) error
}

// Run executes stages in order, stopping at the first failure. The error
// carries the failing stage's name so the operator knows where the run
// died.
func Run(ctx context.Context, log *slog.Logger, stages []Stage, st *State) error {
	for _, s := range stages {
		log.Debug("running stage", "stage", s.Name)
		if err := s.Run(ctx, st); err != nil {
			return fmt.Errorf("stage %s: %w", s.Name, err)
		}
	}
	return nil
}
