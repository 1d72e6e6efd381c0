package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	var requireDirectory bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server and club directory health",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HealthResult

			if err := client.Get("/api/v1/health", &result); err != nil {
				return fmt.Errorf("%s: %w", cfg.ServerURL, err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)

			if requireDirectory && !result.DirectoryLoaded {
				return fmt.Errorf("club directory not loaded on %s", cfg.ServerURL)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&requireDirectory, "require-directory", false, "Fail when the club directory is not loaded")
	return cmd
}
