package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/spira/internal/panel"
	"github.com/danielolaszy/spira/pkg/models"
)

// assignedCmd lists the artifacts assigned to the current user, grouped by kind.
var assignedCmd = &cobra.Command{
	Use:     "assigned",
	Aliases: []string{"ls", "list"},
	Short:   "List the requirements, tasks and incidents assigned to you",
	Long: `List the requirements, tasks and incidents assigned to you.

Artifacts are grouped into one section per kind, in the order Requirements,
Tasks, Incidents. Kinds with nothing assigned are left out. A kind that fails
to load is shown as an error line while the others are still listed.

Sections are collapsed unless --expand or --kind is given.

Example:
  spira assigned --expand
  spira assigned --kind tasks -o yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		expand, err := cmd.Flags().GetBool("expand")
		if err != nil {
			return err
		}

		kinds, err := cmd.Flags().GetStringSlice("kind")
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

		if expand {
			a.controller.ExpandAll()
		}
		for _, k := range kinds {
			kind, err := models.ParseKind(k)
			if err != nil {
				return err
			}
			if s, ok := a.controller.List().Section(kind); !ok || s.State == panel.Expanded {
				continue
			}
			if _, err := a.controller.Toggle(kind); err != nil {
				return fmt.Errorf("failed to expand %s: %w", kind, err)
			}
		}

		return a.renderer.List(a.controller.List())
	},
}

func init() {
	assignedCmd.Flags().BoolP("expand", "e", false, "Expand every section")
	assignedCmd.Flags().StringSliceP("kind", "k", nil, "Expand only the given kinds (requirements, tasks, incidents)")
}
