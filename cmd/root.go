package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kubeship/kubeship/internal/envctx"
)

var (
	configPath  string
	logLevel    string
	serviceName string
	namespace   string
	moduleName  string

	rootCmd = &cobra.Command{
		Use:   "kubeship",
		Short: "build, publish, and deploy services to kubernetes",
		Long: `kubeship takes a service module, detects its language, builds and
publishes its container image, renders the environment-specific deployment
manifest, and applies it to the mapped cluster.`,
		SilenceUsage: true,
	}
)

// Execute runs the root command under a signal-aware context so an
// interrupted run stops between stages instead of mid-push.
// Called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to tool settings file (default .kubeship.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug|info|warn|error (overrides settings)")
}

// setup loads the tool settings and builds the logger they describe. Every
// subcommand starts here.
func setup() (envctx.Settings, *slog.Logger, error) {
	s, err := envctx.LoadSettings(configPath)
	if err != nil {
		return envctx.Settings{}, nil, err
	}
	level := s.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if strings.EqualFold(s.Log.Format, "json") {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	return s, slog.New(h), nil
}

// addServiceFlags registers the per-invocation flags shared by the
// pipeline commands.
func addServiceFlags(c *cobra.Command, withModule bool) {
	c.Flags().StringVar(&serviceName, "k8s-service-name", "", "Service name in kubernetes")
	c.Flags().StringVar(&namespace, "namespace", "", "Target namespace")
	_ = c.MarkFlagRequired("k8s-service-name")
	_ = c.MarkFlagRequired("namespace")
	if withModule {
		c.Flags().StringVar(&moduleName, "module-name", "", "Path to the service module (/ for single-module repositories)")
		_ = c.MarkFlagRequired("module-name")
	}
}
