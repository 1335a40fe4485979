package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List the evaluation levels",
	RunE: func(cmd *cobra.Command, args []string) error {
		showPrompts, _ := cmd.Flags().GetBool("prompts")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cat, err := cfg.Catalog()
		if err != nil {
			return fmt.Errorf("build level catalog: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-4s  %-10s  %s\n", "ID", "Title", "Summary")
		fmt.Fprintln(out, strings.Repeat("─", 72))
		for _, l := range cat.All() {
			fmt.Fprintf(out, "%-4d  %-10s  %s\n", l.ID, l.Title, l.Summary)
			if showPrompts {
				fmt.Fprintf(out, "      %s\n\n", strings.ReplaceAll(strings.TrimSpace(l.PromptTemplate), "\n", "\n      "))
			}
		}
		fmt.Fprintf(out, "\n%d levels. Only level %d is unlocked at start; each needs the one before it.\n",
			cat.Len(), cat.First().ID)
		return nil
	},
}

func init() {
	levelsCmd.Flags().Bool("prompts", false, "Also print each level's evaluation prompt")
}
