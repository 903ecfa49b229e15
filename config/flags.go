package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func RegisterFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("config", "c", "", "config file path")
	flags.IntP("workers", "w", 0, "number of URLs resolved concurrently")
	flags.Int("retry", 0, "retry times for retryable failures")

	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "also write logs to this file, rotated")

	flags.String("proxy", "", "parser proxy URL (http, https, socks5, socks5h)")

	bindFlags(cmd)
}

func bindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	viper.BindPFlag("workers", flags.Lookup("workers"))
	viper.BindPFlag("retry", flags.Lookup("retry"))
	viper.BindPFlag("log.level", flags.Lookup("log-level"))
	viper.BindPFlag("log.file", flags.Lookup("log-file"))
	viper.BindPFlag("parser.proxy", flags.Lookup("proxy"))
}

func GetConfigFile(cmd *cobra.Command) string {
	configFile, _ := cmd.Flags().GetString("config")
	return configFile
}
