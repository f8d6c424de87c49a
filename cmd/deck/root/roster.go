package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"agentrpg/internal/ui"
)

func newRosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "List every agent with level and XP progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			agents, err := svc.Roster(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconAgent, "Roster"))
			for _, a := range agents {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-12s %-11s L%-3d %s\n",
					ui.ClassIcon(string(a.Class)),
					a.Name,
					ui.Muted.Render(string(a.Class)),
					a.Level,
					ui.XPBar(a.XP, a.XPToNext, 20))
			}
			return nil
		},
	}

	return cmd
}
