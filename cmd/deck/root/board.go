package root

import (
	"context"

	"github.com/spf13/cobra"

	"agentrpg/internal/tui"
)

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the live TUI dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cfg, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			svc.Manager().StartSweep()

			return tui.RunBoard(ctx, svc, cfg, cmd.OutOrStdout())
		},
	}

	return cmd
}
