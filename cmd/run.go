package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/commands"
	"github.com/wardenbot/warden/warden/logger"
)

var syncCommands bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to Discord and start moderating",
	RunE:  runBot,
}

func init() {
	runCmd.Flags().BoolVar(&syncCommands, "sync-commands", false, "Whether to sync commands to discord")
	rootCmd.AddCommand(runCmd)
}

func runBot(cmd *cobra.Command, _ []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.LogSystem("Starting Warden",
		slog.String("version", version),
		slog.String("commit", commit),
		slog.String("store", cfg.Store.Backend))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := warden.New(*cfg, version, commit)

	start := time.Now()
	setupCtx, cancel := context.WithTimeout(ctx, time.Minute)
	err := b.SetupEngine(setupCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to set up engine: %w", err)
	}
	logger.LogSystem("Engine ready",
		slog.Int("reminders", b.Engine.Reminders.Len()),
		slog.Duration("took", time.Since(start)))

	h := handler.New()
	commands.Register(h, b)

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady)); err != nil {
		shutdown(b)
		return fmt.Errorf("failed to set up bot: %w", err)
	}
	defer shutdown(b)

	if syncCommands {
		logger.LogSystem("Syncing commands", slog.Any("guild_ids", cfg.Bot.DevGuilds))
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			logger.LogError("Failed to sync commands", err)
		}
	}

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = b.Client.OpenGateway(openCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to open gateway: %w", err)
	}

	if err = b.StartJobs(); err != nil {
		return fmt.Errorf("failed to schedule jobs: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Metrics.Enabled {
		g.Go(func() error {
			return b.Metrics.Serve(gctx, cfg.Metrics.Addr)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	slog.Info("Bot is running. Press CTRL-C to exit.")
	return g.Wait()
}

func shutdown(b *warden.Bot) {
	logger.LogSystem("Shutting down bot...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := b.Shutdown(ctx); err != nil {
		logger.LogError("Unclean shutdown", err)
	}
}
