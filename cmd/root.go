package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/krau/sankaku-dl/cmd/resolve"
	"github.com/krau/sankaku-dl/common/cache"
	"github.com/krau/sankaku-dl/config"
	"github.com/krau/sankaku-dl/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "sankaku-dl",
	Short:         "Resolve sankaku.app and idolcomplex.com posts into direct downloads",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(config.GetConfigFile(cmd)); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cmd.SetContext(logger.InitLogger(cmd.Context()))
		return cache.Init()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		cache.Close()
	},
}

func init() {
	config.RegisterFlags(rootCmd)
	resolve.Register(rootCmd)
}

func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
