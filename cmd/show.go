package cmd

import (
	"github.com/spf13/cobra"
)

// showCmd renders the detail of one assigned artifact.
var showCmd = &cobra.Command{
	Use:   "show PREFIX:ID",
	Short: "Show the detail of an assigned artifact",
	Long: `Show the detail of an artifact assigned to you.

The artifact is given by its display code: RQ for requirements, TK for tasks,
IN for incidents.

Example:
  spira show RQ:503
  spira show TK:41 --open`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		open, err := cmd.Flags().GetBool("open")
		if err != nil {
			return err
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		if _, err := a.activate(cmd); err != nil {
			return err
		}

		detail, err := a.controller.SelectToken(args[0])
		if err != nil {
			return err
		}

		if err := a.renderer.Detail(detail); err != nil {
			return err
		}

		if open {
			return browser.OpenURL(detail.Title.URL)
		}
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("open", false, "Also open the artifact in the browser")
}
