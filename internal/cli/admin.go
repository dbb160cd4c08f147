package cli

import (
	"github.com/spf13/cobra"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Server maintenance commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every user, token and game on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(cmd.Context(), "/api/v1/db"); err != nil {
				return err
			}

			newOutput(cmd).PrintMessage("Database cleared")
			return nil
		},
	})

	return cmd
}
