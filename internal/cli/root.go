// Package cli holds the registryctl commands: schema migration, admin
// bootstrap and offline CSV export.
package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"shareregistry/internal/app"
	"shareregistry/internal/platform/config"
	"shareregistry/internal/platform/logger"
)

// RootCommand assembles every registryctl subcommand.
func RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "registryctl",
		Short:         "Operate the share registry outside the HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		MigrateCommand(),
		CreateAdminCommand(),
		ExportCommand(),
	)
	return root
}

// withApp builds the application for one command and closes it afterwards.
func withApp(ctx context.Context, fn func(ctx context.Context, a *app.App) error) error {
	cfg := config.FromEnv()
	log := logger.New(cfg.Log)
	slog.SetDefault(log)

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	runErr := fn(ctx, a)
	closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.Close(closeCtx); err != nil && runErr == nil {
		return err
	}
	return runErr
}
