package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema under the migration lock",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(opts.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.openStore(); err != nil {
				return err
			}
			ran, err := a.migrate(cmd.Context())
			if err != nil {
				return err
			}
			if !ran {
				return fmt.Errorf("迁移锁 %s 被其他实例持有", MigrateLockName)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "schema migrated (%s)\n", a.cfg.Store.Driver)
			return nil
		},
	}
}
