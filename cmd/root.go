package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/SaiNivedh26/Ignite-Chatbot/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "ignite",
	Short: "Leadership evaluation chat client",
	Long: "Ignite is a terminal chat client for a leadership-evaluation service. " +
		"Argue a decision, get evaluated in character, and unlock harder levels in order.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		return app.Run(cmd.Context(), app.Deps{
			Progress:    rt.progress,
			Timeline:    rt.timeline,
			Coordinator: rt.coord,
			Remote:      rt.service,
			Exporter:    rt.exporter,
			Logger:      rt.logger,
		})
	},
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to a YAML config file (overrides IGNITE_CONFIG)")
	pf.String("service-url", "", "Evaluation service base URL (overrides IGNITE_SERVICE_URL)")
	pf.String("mode", "", "Request mode: query or json (overrides IGNITE_REQUEST_MODE)")
	pf.String("log-file", "", "Write JSON logs to this file (overrides IGNITE_LOG_FILE)")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(devserverCmd)
	rootCmd.AddCommand(versionCmd)
}
