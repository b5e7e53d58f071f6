package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kubeship/kubeship/internal/envctx"
	"github.com/kubeship/kubeship/internal/image"
	"github.com/kubeship/kubeship/internal/kubectl"
	"github.com/kubeship/kubeship/internal/pipeline"
	"github.com/kubeship/kubeship/internal/registry"
	"github.com/kubeship/kubeship/internal/render"
)

func init() {
	var deployCmd = &cobra.Command{
		Use:   "deploy",
		Short: "Run the full pipeline: build, publish, render, apply",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			settings, log, err := setup()
			if err != nil {
				return err
			}
			pub, err := image.NewPublisher(log)
			if err != nil {
				return err
			}
			defer pub.Close()

			eng := render.NewEngine()
			st := &pipeline.State{
				Opts:     envctx.Options{ServiceName: serviceName, Namespace: namespace, ModulePath: moduleName},
				Settings: settings,
			}
			stages := []pipeline.Stage{
				pipeline.Validate(log),
				pipeline.DetectLanguage(log),
				pipeline.ResolveConfig(log),
				pipeline.GenerateDockerfile(eng),
				pipeline.PublishImage(pub, newRegistry),
				pipeline.RenderManifest(eng, log),
				pipeline.ApplyManifest(func(clusterContext string) pipeline.Applier {
					return kubectl.New(clusterContext, log)
				}),
			}
			if err := pipeline.Run(ctx, log, stages, st); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deployed %s to %s (%s)\n", st.Image, st.Opts.Namespace, st.Env.ClusterContext)
			return nil
		},
	}
	addServiceFlags(deployCmd, true)
	rootCmd.AddCommand(deployCmd)
}

// newRegistry picks the registry client for the run's push endpoint. ECR
// hosts get token auth and repository provisioning; anything else relies
// on a prior docker login.
func newRegistry(ctx context.Context, env envctx.Environment) (image.Registry, error) {
	if registry.IsECRHost(env.RegistryHost()) {
		return registry.New(ctx, env.Region, env.RegistryHost())
	}
	return registry.NewLocal(env.RegistryHost()), nil
}
