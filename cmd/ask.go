package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SaiNivedh26/Ignite-Chatbot/internal/coordinator"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/export"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/timeline"
)

var askCmd = &cobra.Command{
	Use:   "ask [flags] <argument...>",
	Short: "Send one argument to the evaluator and print the answer",
	Example: `  ignite ask "We should cut costs by pausing hiring"
  ignite ask --level 3 --export "Expand into Europe next quarter"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetInt("level")
		doExport, _ := cmd.Flags().GetBool("export")

		out := cmd.OutOrStdout()
		errOut := cmd.ErrOrStderr()

		rt, err := setup(cmd, func(o *coordinator.Options) {
			o.OnStatus = func(t timeline.Turn) {
				fmt.Fprintln(errOut, "…", t.Text)
			}
		})
		if err != nil {
			return err
		}
		defer rt.Close()

		if level > 0 {
			if err := unlockThrough(rt, level); err != nil {
				return err
			}
		}

		query := strings.Join(args, " ")
		turn, err := rt.coord.Ask(cmd.Context(), query)
		if err != nil {
			if errors.Is(err, coordinator.ErrEmptyQuery) {
				return fmt.Errorf("argument is empty")
			}
			return err
		}
		fmt.Fprintf(out, "[%s] %s\n", rt.progress.ActiveLevel().Title, turn.Text)

		if !doExport {
			return nil
		}
		if rt.exporter == nil {
			return fmt.Errorf("export is disabled (IGNITE_EXPORT=false)")
		}
		job, err := rt.exporter.Run(cmd.Context(), rt.timeline.Snapshot())
		if err != nil {
			var perr *export.PhaseError
			if errors.As(err, &perr) {
				return errors.New(perr.UserMessage())
			}
			return err
		}
		fmt.Fprintln(out, "PDF saved to", job.Path)
		return nil
	},
}

// unlockThrough unlocks levels in order up to and including level, the
// same path a user clicking down the sidebar takes.
func unlockThrough(rt *runtime, level int) error {
	cat := rt.progress.Catalog()
	if _, err := cat.Get(level); err != nil {
		return fmt.Errorf("unlock: %w", err)
	}
	for _, id := range cat.IDs() {
		if id > level {
			break
		}
		if _, err := rt.progress.AttemptUnlock(id); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	askCmd.Flags().Int("level", 0, "Evaluate at this level, unlocking every level below it first")
	askCmd.Flags().Bool("export", false, "Export the exchange as a PDF summary afterwards")
}
