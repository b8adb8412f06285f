package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/spira/internal/panel"
	"github.com/danielolaszy/spira/internal/view"
)

// browseCmd starts an interactive panel session on the terminal.
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse your assigned artifacts interactively",
	Long: `Browse your assigned artifacts interactively.

The panel starts with every section collapsed. Type "t tasks" to expand or
collapse a section, "s 2" to show the second visible row, "o" to open the
selected artifact in the browser, "r" to reload and "q" to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		if _, err := a.activate(cmd); err != nil {
			return err
		}

		session := &view.Session{
			Controller: a.controller,
			Out:        cmd.OutOrStdout(),
			Browser:    browser,
			Refresh: func(ctx context.Context) panel.Result {
				return a.controller.Activate(ctx, a.client)
			},
		}
		return session.Run(cmd.Context(), cmd.InOrStdin())
	},
}
