package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "agendavote",
		Short:         "Timed agenda voting service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "config/config.yaml", "配置文件路径")

	serve := newServeCmd(opts)
	rootCmd.AddCommand(
		serve,
		newMigrateCmd(opts),
		newBlocklistCmd(opts),
	)

	// 不带子命令时启动服务
	rootCmd.RunE = serve.RunE
	rootCmd.Flags().AddFlagSet(serve.Flags())

	return rootCmd
}

type rootOptions struct {
	configPath string
}
