package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/docchat/pkg/configs"
	dbc "github.com/yeisme/docchat/pkg/internal/storage/db"
	kvc "github.com/yeisme/docchat/pkg/internal/storage/kv"
	mqc "github.com/yeisme/docchat/pkg/internal/storage/mq"
	"github.com/yeisme/docchat/pkg/internal/storage/store"
)

// backendGroup 描述一类可替换的后端实现.
type backendGroup struct {
	use     string
	short   string
	aliases []string
	// names 返回已注册的实现
	names func() []string
	// current 返回配置中选择的实现
	current func(cfg *configs.AppConfig) string
}

var backendGroups = []backendGroup{
	{
		use:   "store",
		short: "Document store related commands",
		names: func() []string { return toStrings(store.Types()) },
		current: func(cfg *configs.AppConfig) string {
			return string(cfg.Store.Type)
		},
	},
	{
		use:   "blob",
		short: "Uploaded file storage related commands",
		names: func() []string {
			return []string{string(configs.BlobBackendLocal), string(configs.BlobBackendS3)}
		},
		current: func(cfg *configs.AppConfig) string { return string(cfg.Upload.Backend) },
	},
	{
		use:     "kv",
		short:   "Key-Value store related commands",
		aliases: []string{"keyvalue"},
		names:   func() []string { return toStrings(kvc.GetRegisteredKVTypes()) },
		current: func(cfg *configs.AppConfig) string { return cfg.KV.Type },
	},
	{
		use:     "mq",
		short:   "Message queue related commands",
		aliases: []string{"messagequeue"},
		names:   func() []string { return toStrings(mqc.GetRegisteredMQTypes()) },
		current: func(cfg *configs.AppConfig) string {
			if !cfg.MQ.Enabled {
				return ""
			}

			return string(cfg.MQ.Type)
		},
	},
	{
		use:     "db",
		short:   "Database related commands",
		names:   func() []string { return toStrings(dbc.GetRegisteredDBTypes()) },
		current: func(cfg *configs.AppConfig) string { return string(cfg.DB.Type) },
	},
}

func toStrings[T ~string](in []T) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		out = append(out, string(v))
	}

	return out
}

// newListCmd 列出已注册的实现，当前配置使用的实现以 * 标记.
func newListCmd(g backendGroup) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   fmt.Sprintf("list all registered %s types", g.use),
		Aliases: []string{"ls", "l"},
		Run: func(cmd *cobra.Command, args []string) {
			current := g.current(configs.GetConfig())

			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s types:\n", g.use)

			for _, name := range g.names() {
				marker := " "
				if name == current {
					marker = "*"
				}

				fmt.Fprintf(cmd.OutOrStdout(), " %s - %s\n", marker, name)
			}
		},
	}
}

// registerBackendCommands 为每类后端注册 <group> list 子命令，返回按名称索引的父命令.
func registerBackendCommands() map[string]*cobra.Command {
	groups := make(map[string]*cobra.Command, len(backendGroups))

	for _, g := range backendGroups {
		parent := &cobra.Command{
			Use:     g.use,
			Short:   g.short,
			Aliases: g.aliases,
		}
		parent.AddCommand(newListCmd(g))

		rootCmd.AddCommand(parent)
		groups[g.use] = parent
	}

	return groups
}
