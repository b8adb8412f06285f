package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// pingCmd checks that the configured credentials are accepted.
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the connection to the SpiraTeam server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		if err := a.client.HealthCheck(cmd.Context()); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Connected to %s\n", a.client.BaseURL())
		return nil
	},
}
