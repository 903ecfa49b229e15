package cmd

import (
	"fmt"
	"runtime"

	"github.com/blang/semver"
	"github.com/krau/sankaku-dl/config"
	"github.com/spf13/cobra"
)

var VersionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Print the version number of sankaku-dl",
	Run: func(cmd *cobra.Command, args []string) {
		v := config.Version
		if sv, err := semver.ParseTolerant(v); err == nil {
			v = sv.String()
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sankaku-dl version: %s %s/%s\nBuildTime: %s, Commit: %s\nRepo: https://github.com/%s\n",
			v, runtime.GOOS, runtime.GOARCH, config.BuildTime, config.GitCommit, config.GitRepo)
	},
}

func init() {
	rootCmd.AddCommand(VersionCmd)
}
