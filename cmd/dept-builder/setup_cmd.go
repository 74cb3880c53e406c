package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JPauldo/dept-builder/internal/db"
	"github.com/JPauldo/dept-builder/internal/models"
)

func newSetupCmd(opts *globalOptions) *cobra.Command {
	var (
		seedFile string
		noSeed   bool
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create the schema and load the seed dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			if err := db.Migrate(ctx, a.db); err != nil {
				a.logger.Error("migration failed", zap.Error(err))
				return err
			}
			a.logger.Info("schema ready")
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Schema ready.")

			if noSeed {
				return nil
			}

			var existing int64
			if err := a.db.WithContext(ctx).Model(&models.Department{}).Count(&existing).Error; err != nil {
				return fmt.Errorf("count departments: %w", err)
			}
			if existing > 0 {
				a.logger.Info("seed skipped", zap.Int64("departments", existing))
				fmt.Fprintln(out, "Database already has data; seed skipped.")
				return nil
			}

			seed, err := loadSeed(seedFile)
			if err != nil {
				return err
			}
			if err := db.ApplySeed(ctx, a.db, seed); err != nil {
				a.logger.Error("seed failed", zap.Error(err))
				return err
			}

			a.logger.Info("seed applied",
				zap.Int("departments", len(seed.Departments)),
				zap.Int("roles", len(seed.Roles)),
				zap.Int("employees", len(seed.Employees)),
			)
			fmt.Fprintf(out, "Seeded %d departments, %d roles, %d employees.\n",
				len(seed.Departments), len(seed.Roles), len(seed.Employees))
			return nil
		},
	}

	cmd.Flags().StringVar(&seedFile, "seed-file", "", "YAML seed file (defaults to the bundled dataset)")
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "Create the schema without loading any data")
	return cmd
}

func loadSeed(path string) (db.Seed, error) {
	if path == "" {
		return db.DefaultSeed()
	}

	f, err := os.Open(path)
	if err != nil {
		return db.Seed{}, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	return db.LoadSeed(f)
}
