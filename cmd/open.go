package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/spira/internal/view"
)

// browser is replaced in tests.
var browser view.Browser = view.SystemBrowser{}

// openCmd opens an assigned artifact in the browser.
var openCmd = &cobra.Command{
	Use:   "open PREFIX:ID",
	Short: "Open an assigned artifact in the browser",
	Long: `Open the web page of an artifact assigned to you in the default browser.

Example:
  spira open IN:9`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		fmt.Fprintf(cmd.OutOrStdout(), "Opening %s\n", detail.Title.URL)
		return browser.OpenURL(detail.Title.URL)
	},
}
