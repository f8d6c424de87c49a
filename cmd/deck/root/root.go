package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"agentrpg/internal/ui"
)

const Version = "0.1.0"

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "deck",
	Short:         "Deck — RPG-style progression tracker for an AI agent roster",
	Long:          "Deck tracks a roster of AI agents with RPG progression mechanics: XP, levels, stats, skills, and quests.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/.agentrpg.yaml)")

	rootCmd.AddCommand(
		newRosterCmd(),
		newStatusCmd(),
		newAwardCmd(),
		newQuestsCmd(),
		newCompleteCmd(),
		newNoticesCmd(),
		newBoardCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
