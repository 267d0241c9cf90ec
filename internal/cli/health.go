package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the ranktracker server is up",
		Long:  "Calls the unauthenticated health endpoint. Exits non-zero unless the server reports ok.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HealthResult
			if err := client.Get(cmd.Context(), "/api/v1/health", &result); err != nil {
				return err
			}
			result.Server = cfg.ServerURL

			output(cmd).Print(result)
			if result.Status != "ok" {
				return fmt.Errorf("server %s reported status %q", cfg.ServerURL, result.Status)
			}
			return nil
		},
	}
}
