package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kubeship/kubeship/internal/envctx"
	"github.com/kubeship/kubeship/internal/pipeline"
)

func init() {
	var validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Check arguments, environment, language, and config fields",
		Long: `Runs the pipeline up to config resolution and stops. A passing run
means a deploy of the same module would get past every local check before
touching docker or the cluster.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, log, err := setup()
			if err != nil {
				return err
			}
			st := &pipeline.State{
				Opts:     envctx.Options{ServiceName: serviceName, Namespace: namespace, ModulePath: moduleName},
				Settings: settings,
			}
			stages := []pipeline.Stage{
				pipeline.Validate(log),
				pipeline.DetectLanguage(log),
				pipeline.ResolveConfig(log),
			}
			if err := pipeline.Run(cmd.Context(), log, stages, st); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "valid: %s/%s (%s, context %s)\n",
				st.Opts.Namespace, st.Opts.ServiceName, st.Language, st.Env.ClusterContext)
			return nil
		},
	}
	addServiceFlags(validateCmd, true)
	rootCmd.AddCommand(validateCmd)
}
