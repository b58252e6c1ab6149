package cmd

import (
	"fmt"

	"github.com/example/burger-helsinki/internal/migrate"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			d, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := migrate.Up(ctx, d); err != nil {
				return err
			}
			files, _ := migrate.Files()
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%d migrations)\n", len(files))
			return nil
		},
	}
}
