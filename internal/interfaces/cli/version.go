package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// BuildInfo holds version information injected at build time.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// CurrentBuildInfo reports the ldflags-injected build variables.
func CurrentBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := CurrentBuildInfo()
			return PrintResult(cmd, info, func(cmd *cobra.Command) error {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "citenet %s (commit: %s, built: %s, %s)\n",
					info.Version, info.Commit, info.BuildDate, info.GoVersion)
				return err
			})
		},
	}
}

//Personal.AI order the ending
