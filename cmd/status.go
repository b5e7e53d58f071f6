package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kubeship/kubeship/internal/envctx"
	"github.com/kubeship/kubeship/internal/kubectl"
)

func init() {
	var statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Watch the rollout of a deployed service",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, err := setup()
			if err != nil {
				return err
			}
			cc, err := envctx.ClusterContext(namespace)
			if err != nil {
				return err
			}
			cli := kubectl.New(cc, log)
			out, err := cli.RolloutStatus(cmd.Context(), serviceName, namespace)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	addServiceFlags(statusCmd, false)
	rootCmd.AddCommand(statusCmd)
}
