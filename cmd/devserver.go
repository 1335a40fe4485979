package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SaiNivedh26/Ignite-Chatbot/internal/devserver"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/logging"
)

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run a local stand-in for the evaluation service",
	Long: "Serves /evaluate, /search, /chat-history, /summarize-chat and /get-pdf " +
		"with canned, deterministic answers so the client can be tried without the real backend.",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cat, err := cfg.Catalog()
		if err != nil {
			return fmt.Errorf("build level catalog: %w", err)
		}
		logger, err := logging.Stderr(cfg.Log.Level)
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		return devserver.New(cat, logger).ListenAndServe(cmd.Context(), addr)
	},
}

func init() {
	devserverCmd.Flags().String("addr", ":8000", "Listen address")
}
