package main

import (
	"fmt"

	"github.com/aretw0/botflow"
	"github.com/aretw0/botflow/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [flow]",
	Short: "Check the flow for consistency",
	Long:  `Parses the flow, reports dead links and rules that can never match, and crawls from every start and command node to find unreachable nodes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := botflow.OpenLoader(flowPath(args), nil)
		if err != nil {
			return err
		}

		report, err := validator.ValidateLoader(loader)
		if err != nil {
			return err
		}
		for _, w := range report.Warnings {
			fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", w)
		}
		if err := report.Err(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Flow %q is valid! ✅\n", loader.Name())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
