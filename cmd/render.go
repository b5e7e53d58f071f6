package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kubeship/kubeship/internal/envctx"
	"github.com/kubeship/kubeship/internal/pipeline"
	"github.com/kubeship/kubeship/internal/render"
)

func init() {
	var renderCmd = &cobra.Command{
		Use:   "render",
		Short: "Render the deployment manifest without building or applying",
		Long: `Runs validation, language detection, config resolution, and manifest
rendering. No docker daemon, registry, or cluster is touched; the image
reference in the manifest is computed from the build number.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, log, err := setup()
			if err != nil {
				return err
			}
			eng := render.NewEngine()
			st := &pipeline.State{
				Opts:     envctx.Options{ServiceName: serviceName, Namespace: namespace, ModulePath: moduleName},
				Settings: settings,
			}
			stages := []pipeline.Stage{
				pipeline.Validate(log),
				pipeline.DetectLanguage(log),
				pipeline.ResolveConfig(log),
				pipeline.RenderManifest(eng, log),
			}
			if err := pipeline.Run(cmd.Context(), log, stages, st); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), st.Rendered)
			return nil
		},
	}
	addServiceFlags(renderCmd, true)
	rootCmd.AddCommand(renderCmd)
}
