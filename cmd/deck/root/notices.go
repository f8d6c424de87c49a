package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"agentrpg/internal/ui"
)

func newNoticesCmd() *cobra.Command {
	var dismiss string
	var clear bool

	cmd := &cobra.Command{
		Use:   "notices",
		Short: "Review, dismiss, or clear notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if dismiss != "" {
				ok, err := svc.DismissNotice(ctx, dismiss)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No such notice."))
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconDone+" Dismissed."))
				return nil
			}

			if clear {
				n, err := svc.ClearDismissedNotices(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d cleared\n", ui.Good.Render(ui.IconDone), n)
				return nil
			}

			notes, err := svc.Notices().ListActive(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconBell, "Notices"))
			if len(notes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(inbox zero)"))
				return nil
			}
			for _, n := range notes {
				fmt.Fprintf(cmd.OutOrStdout(), "%s [%s] %s — %s\n",
					n.Icon, ui.PriorityText(string(n.Priority)), ui.Key.Render(n.Title), n.Message)
				fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", ui.Muted.Render("id: "+n.ID))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dismiss, "dismiss", "", "dismiss the notice with this id")
	cmd.Flags().BoolVar(&clear, "clear", false, "delete dismissed notices")

	return cmd
}
