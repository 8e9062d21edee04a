package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/docchat/pkg/configs"
	"github.com/yeisme/docchat/pkg/internal/storage/db"
)

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "create or update the documents and document_queries tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, err := db.New(ctx, &configs.GetConfig().DB)
		if err != nil {
			return err
		}
		defer client.Close()

		if err := client.Migrate(ctx); err != nil {
			return err
		}

		tables, err := client.Tables()
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Migrated tables:")

		for _, t := range tables {
			fmt.Fprintln(cmd.OutOrStdout(), "   - "+t)
		}

		return nil
	},
}

// registerDBCommands 在 db 命令下注册迁移子命令.
func registerDBCommands(dbCmd *cobra.Command) {
	dbCmd.AddCommand(dbMigrateCmd)
}
