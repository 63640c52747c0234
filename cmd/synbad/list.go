package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/synthetic-lab/synbad/pkg/evals"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lists the available evals",
		RunE: func(cmd *cobra.Command, args []string) error {
			only, _ := cmd.Flags().GetString("only")
			skipReasoning, _ := cmd.Flags().GetBool("skip-reasoning")

			selected, err := evals.Select(only, skipReasoning)
			if err != nil {
				return err
			}
			for _, e := range selected {
				fmt.Fprintln(cmd.OutOrStdout(), e.Name)
			}
			return nil
		},
	}

	cmd.Flags().String("only", "", "Only list evals under this group or path")
	cmd.Flags().Bool("skip-reasoning", false, "Skip reasoning evals")
	return cmd
}
