// Package cmd 定义 docchat 命令行：serve 启动服务，其余子命令用于查看配置与已注册的后端.
package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yeisme/docchat/pkg/app"
	"github.com/yeisme/docchat/pkg/configs"
)

var (
	// configPath 配置文件或所在目录.
	configPath string
	// debug 打印 viper 调试信息.
	debug bool

	rootCmd = &cobra.Command{
		Use:          "docchat",
		Short:        "Document upload, deduplication and query log service",
		Version:      configs.AppVersion,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configs.InitConfig(configPath)
		},
		RunE: runServe,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "start the HTTP server",
		RunE:  runServe,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file or directory (default: ./ and ./configs)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "print viper debug output")

	rootCmd.AddCommand(serveCmd)

	registerConfigsCommands()

	groups := registerBackendCommands()
	registerDBCommands(groups["db"])
	registerKVCommands(groups["kv"])
}

// runServe 启动服务，收到 SIGINT/SIGTERM 后优雅退出.
func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.NewApp(ctx)
	if err != nil {
		return err
	}

	return a.Run(ctx)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
