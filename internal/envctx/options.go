// Package envctx holds the per-run deployment options, the namespace to
// cluster-context mapping, and the externally supplied tool settings. The
// resulting values are threaded explicitly through every stage; nothing in
// this package is ambient state.
package envctx

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// BuildIDVar names the environment variable carrying the monotonically
// increasing build identifier used to tag images.
const BuildIDVar = "BUILD_NUMBER"

var ErrMissingBuildID = fmt.Errorf("%s must be set in the environment", BuildIDVar)

// Options are the three required invocation parameters plus the build
// identifier taken from the environment. Immutable once validated.
type Options struct {
	ServiceName string
	Namespace   string
	ModulePath  string
	BuildID     string
}

// Validate checks the required fields and fills BuildID from the
// environment. It is the first pipeline stage; nothing external may run
// before it passes.
func (o *Options) Validate() error {
	if o.ServiceName == "" {
		return errors.New("--k8s-service-name is required")
	}
	if o.Namespace == "" {
		return errors.New("--namespace is required")
	}
	if o.ModulePath == "" {
		return errors.New("--module-name is required (use / for single-module repositories)")
	}
	if o.BuildID == "" {
		o.BuildID = os.Getenv(BuildIDVar)
	}
	if o.BuildID == "" {
		return ErrMissingBuildID
	}
	return nil
}

// Log echoes the parsed values for audit purposes.
func (o *Options) Log(log *slog.Logger) {
	log.Info("deploy options",
		"service", o.ServiceName,
		"namespace", o.Namespace,
		"module", o.ModulePath,
		"buildId", o.BuildID)
}
