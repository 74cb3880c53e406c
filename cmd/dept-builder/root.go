package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JPauldo/dept-builder/internal/config"
	"github.com/JPauldo/dept-builder/internal/db"
	"github.com/JPauldo/dept-builder/internal/logging"
	"github.com/JPauldo/dept-builder/internal/menu"
	"github.com/JPauldo/dept-builder/internal/prompt"
	"github.com/JPauldo/dept-builder/internal/render"
	"github.com/JPauldo/dept-builder/internal/service"
)

type globalOptions struct {
	driver  string
	dsn     string
	verbose bool
}

// app holds what every command needs once configuration is resolved.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	db     *gorm.DB
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:          "dept-builder",
		Short:        "Manage departments, roles and employees from the terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			logger := a.logger.With(zap.String("session", uuid.NewString()))
			logger.Info("session started", zap.String("driver", a.cfg.Driver))

			views := service.NewViewService(a.db, logger)
			mutations := service.NewMutationService(a.db, views, logger)
			router := menu.NewRouter(
				views,
				mutations,
				prompt.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout()),
				render.NewPrinter(cmd.OutOrStdout()),
				logger,
			)

			if err := router.Run(cmd.Context()); err != nil {
				logger.Error("session ended with error", zap.Error(err))
				return err
			}
			logger.Info("session ended")
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.driver, "driver", "", "Database driver: sqlite or postgres (overrides DB_DRIVER)")
	cmd.PersistentFlags().StringVar(&opts.dsn, "dsn", "", "Database connection string (overrides DATABASE_URL)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log at debug level")

	cmd.AddCommand(newSetupCmd(opts))
	cmd.AddCommand(newViewCmd(opts))
	return cmd
}

// openApp resolves configuration, applying flag overrides on top of the
// environment, then builds the logger and opens the database.
func openApp(cmd *cobra.Command, opts *globalOptions) (*app, error) {
	if err := applyOverrides(cmd, opts); err != nil {
		return nil, err
	}

	cfg, err := config.Load(config.DefaultEnvFiles...)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Path:    cfg.LogPath,
		Verbose: opts.verbose,
	})
	if err != nil {
		return nil, err
	}

	database, err := db.Connect(cfg, logger)
	if err != nil {
		logger.Error("database connection error", zap.Error(err))
		_ = logger.Sync()
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	return &app{cfg: cfg, logger: logger, db: database}, nil
}

// applyOverrides exports explicitly set flags as environment variables so
// they win over both the process environment and the .env files.
func applyOverrides(cmd *cobra.Command, opts *globalOptions) error {
	flags := cmd.Flags()
	if flags.Changed("driver") {
		if err := os.Setenv("DB_DRIVER", opts.driver); err != nil {
			return err
		}
	}
	if flags.Changed("dsn") {
		if err := os.Setenv("DATABASE_URL", opts.dsn); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) close() {
	if err := db.Close(a.db); err != nil {
		a.logger.Warn("close database", zap.Error(err))
	}
	_ = a.logger.Sync()
}
