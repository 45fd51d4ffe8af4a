package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wardenbot/warden/internal/store"
	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/logger"
)

var (
	legacyPath string
	fromPath   string
	force      bool
)

var errNotEmpty = errors.New("target store already holds data, use --force to replace it")

var migrateCMD = &cobra.Command{
	Use:   "migrate",
	Short: "Import data into the configured store",
	Long: `Import data into the configured store.

--legacy reads the single JSON document written by the old bot.
--from copies everything out of a file store, e.g. when moving to postgres.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (legacyPath == "") == (fromPath == "") {
			return errors.New("exactly one of --legacy or --from is required")
		}
		if err := cfg.ValidateStore(); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
		defer cancel()

		snap, err := readSource(ctx)
		if err != nil {
			return err
		}

		target, err := warden.OpenBackend(ctx, *cfg)
		if err != nil {
			return fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
		}
		defer target.Close()

		return importSnapshot(ctx, target, snap, force)
	},
}

func init() {
	migrateCMD.Flags().StringVar(&legacyPath, "legacy", "", "path to the old bot's data.json")
	migrateCMD.Flags().StringVar(&fromPath, "from", "", "path to a file store to copy")
	migrateCMD.Flags().BoolVar(&force, "force", false, "replace data already in the target store")
	rootCmd.AddCommand(migrateCMD)
}

func readSource(ctx context.Context) (store.Snapshot, error) {
	if legacyPath != "" {
		f, err := os.Open(legacyPath)
		if err != nil {
			return store.Snapshot{}, fmt.Errorf("failed to open legacy data: %w", err)
		}
		defer f.Close()
		return store.ImportLegacy(f, time.Now())
	}

	src, err := store.OpenFile(fromPath)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("failed to open file store: %w", err)
	}
	defer src.Close()
	return src.Snapshot(ctx)
}

// importSnapshot restores snap into target unless target already holds data
// and force is unset.
func importSnapshot(ctx context.Context, target store.Backend, snap store.Snapshot, force bool) error {
	if !force {
		existing, err := target.Snapshot(ctx)
		if err != nil {
			return fmt.Errorf("failed to inspect target store: %w", err)
		}
		if len(existing.Guilds)+len(existing.Users)+len(existing.Tickets)+len(existing.Reminders)+len(existing.Giveaways) > 0 {
			return errNotEmpty
		}
	}

	start := time.Now()
	snap.Normalize()
	if err := target.Restore(ctx, snap); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	logger.LogSystem("Migration completed successfully!",
		slog.Int("guilds", len(snap.Guilds)),
		slog.Int("users", len(snap.Users)),
		slog.Int("tickets", len(snap.Tickets)),
		slog.Int("reminders", len(snap.Reminders)),
		slog.Int("giveaways", len(snap.Giveaways)),
		slog.Duration("took", time.Since(start)))
	return nil
}
