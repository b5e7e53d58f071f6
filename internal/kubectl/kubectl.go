// Package kubectl shells out to the cluster CLI. The control plane is an
// external collaborator here; this tool only hands it manifests and
// propagates its exit status.
package kubectl

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Runner executes the kubectl binary. Swappable for tests.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "kubectl", args...)
	return cmd.CombinedOutput()
}

type CLI struct {
	runner  Runner
	context string
	log     *slog.Logger
}

// New returns a CLI bound to the given cluster context.
func New(clusterContext string, log *slog.Logger) *CLI {
	return &CLI{runner: execRunner{}, context: clusterContext, log: log}
}

// Apply applies the rendered manifest file to the cluster.
func (c *CLI) Apply(ctx context.Context, manifestPath, namespace string) error {
	out, err := c.runner.Run(ctx, "--context", c.context, "apply", "-f", manifestPath, "-n", namespace)
	if err != nil {
		return fmt.Errorf("kubectl apply failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	c.log.Info("applied manifest", "manifest", manifestPath, "context", c.context, "namespace", namespace, "output", strings.TrimSpace(string(out)))
	return nil
}

// RolloutStatus reports the rollout state of the service's deployment.
func (c *CLI) RolloutStatus(ctx context.Context, service, namespace string) (string, error) {
	out, err := c.runner.Run(ctx, "--context", c.context, "rollout", "status", "deployment/"+service, "-n", namespace)
	if err != nil {
		return "", fmt.Errorf("kubectl rollout status failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}
