package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set via -ldflags "-X .../cmd.version=v1.2.3" for releases.
var version string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version and the service endpoint in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "ignite", buildVersion())

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "service %s (%s mode)\n", cfg.Service.URL, cfg.Service.Mode)
		return nil
	},
}

func buildVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}
