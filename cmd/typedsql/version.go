package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/typedsql/internal/update"
	"github.com/pthm/typedsql/internal/version"
)

var versionCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, version.Info())
		if !versionCheck {
			return nil
		}

		info, err := update.CheckWithCache(cmd.Context())
		if err != nil {
			logger.Warn().Err(err).Msg("update check failed")
			return nil
		}
		if info.UpdateAvailable {
			_, _ = fmt.Fprintf(out, "A newer release is available: %s (%s)\n", info.LatestVersion, info.ReleaseURL)
		} else {
			_, _ = fmt.Fprintln(out, "typedsql is up to date.")
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check GitHub for a newer release")
}
