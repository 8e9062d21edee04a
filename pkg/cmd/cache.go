package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/docchat/pkg/cache"
	"github.com/yeisme/docchat/pkg/configs"
	kvc "github.com/yeisme/docchat/pkg/internal/storage/kv"
)

// kvClearCacheCmd 清空列表缓存，用于直接改库后让 redis/nats 中的旧列表失效.
var kvClearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "delete cached document and query lists from the kv store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configs.GetConfig()

		client, err := kvc.NewKVClient(cmd.Context(), &cfg.KV)
		if err != nil {
			return err
		}
		defer client.Close()

		if err := cache.NewCache(client, cfg.Cache.Prefix).Clear(cmd.Context()); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s cache under prefix %q\n", client.Type(), cfg.Cache.Prefix)

		return nil
	},
}

func registerKVCommands(kvCmd *cobra.Command) {
	kvCmd.AddCommand(kvClearCacheCmd)
}
