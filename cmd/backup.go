package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/wardenbot/warden/internal/clock"
	"github.com/wardenbot/warden/internal/store"
	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/logger"
	"github.com/wardenbot/warden/warden/services"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage store backups in Spaces",
}

var backupRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Upload a backup now",
	RunE: withBackups(func(ctx context.Context, svc *services.BackupService, _ []string) error {
		key, err := svc.Run(ctx)
		if err != nil {
			return err
		}
		logger.LogSystem("Backup uploaded", slog.String("key", key))
		return nil
	}),
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored backups, oldest first",
	RunE: withBackups(func(ctx context.Context, svc *services.BackupService, _ []string) error {
		keys, err := svc.Backups(ctx)
		if err != nil {
			return err
		}
		for _, key := range keys {
			fmt.Println(key)
		}
		return nil
	}),
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore [key]",
	Short: "Replace the store's content with a backup, the newest by default",
	Args:  cobra.MaximumNArgs(1),
	RunE: withBackups(func(ctx context.Context, svc *services.BackupService, args []string) error {
		var key string
		if len(args) == 1 {
			key = args[0]
		}
		restored, err := svc.Restore(ctx, key)
		if err != nil {
			return err
		}
		logger.LogSystem("Backup restored", slog.String("key", restored))
		return nil
	}),
}

func init() {
	backupCmd.AddCommand(backupRunCmd, backupListCmd, backupRestoreCmd)
	rootCmd.AddCommand(backupCmd)
}

// withBackups opens the configured store and Spaces client around fn. The
// bot must not be running against the same store during a restore.
func withBackups(fn func(ctx context.Context, svc *services.BackupService, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if !cfg.Spaces.Enabled() {
			return errors.New("spaces key, secret and bucket must be configured")
		}
		if err := cfg.ValidateStore(); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
		defer cancel()

		backend, err := warden.OpenBackend(ctx, *cfg)
		if err != nil {
			return fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
		}
		defer closeBackend(backend)

		opts := cfg.Spaces.Options()
		client, err := services.NewSpacesClient(ctx, opts)
		if err != nil {
			return err
		}
		return fn(ctx, services.NewBackupService(client, backend, clock.Real{}, opts), args)
	}
}

func closeBackend(b store.Backend) {
	if err := b.Close(); err != nil {
		logger.LogError("Failed to close store", err)
	}
}
