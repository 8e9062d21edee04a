package cmd

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/yeisme/docchat/pkg/configs"
)

// showSecrets 打印配置时不隐藏密码与密钥.
var showSecrets bool

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "config subcommands",
	}

	// 打印当前使用的配置文件路径.
	pathCmd = &cobra.Command{
		Use:   "path",
		Short: "print the path of the current config file",
		Run: func(cmd *cobra.Command, args []string) {
			file := ""
			if v := configs.GetViper(); v != nil {
				file = v.ConfigFileUsed()
			}

			if file == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no config file used (defaults and "+configs.EnvPrefix+"_* env)")
				return
			}

			fmt.Fprintln(cmd.OutOrStdout(), file)
		},
	}

	// 以 JSON 打印生效的配置，--debug 时附带 viper 的调试输出.
	showCmd = &cobra.Command{
		Use:     "show",
		Short:   "print the effective config values",
		Aliases: []string{"debug"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				if v := configs.GetViper(); v != nil {
					v.Debug()
				}
			}

			cfg := *configs.GetConfig()
			if !showSecrets {
				cfg = cfg.Redacted()
			}

			b, err := sonic.ConfigStd.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(b))

			return nil
		},
	}
)

// registerConfigsCommands 注册 config 子命令.
func registerConfigsCommands() {
	showCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print passwords and keys in clear text")

	configCmd.AddCommand(pathCmd, showCmd)

	rootCmd.AddCommand(configCmd)
}
