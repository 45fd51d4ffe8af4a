package warden

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"
	"github.com/disgoorg/snowflake/v2"

	"github.com/wardenbot/warden/internal/clock"
	"github.com/wardenbot/warden/internal/domain/actions"
	"github.com/wardenbot/warden/internal/domain/engine"
	"github.com/wardenbot/warden/internal/gateways/database"
	"github.com/wardenbot/warden/internal/store"
	"github.com/wardenbot/warden/warden/handlers"
	"github.com/wardenbot/warden/warden/jobs"
	"github.com/wardenbot/warden/warden/metrics"
	"github.com/wardenbot/warden/warden/services"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Clock:     clock.Real{},
		Version:   version,
		Commit:    commit,
	}
}

type Bot struct {
	Cfg        Config
	Client     bot.Client
	Paginator  *paginator.Manager
	Clock      clock.Clock
	Version    string
	Commit     string
	Store      *store.Store
	Engine     *engine.Engine
	Render     handlers.Renderer
	Dispatcher *handlers.Dispatcher
	Gateway    *handlers.Gateway
	Metrics    *metrics.Metrics
	Backup     *services.BackupService
	Jobs       *jobs.Scheduler
}

// OpenBackend opens the storage backend selected in the config.
func OpenBackend(ctx context.Context, cfg Config) (store.Backend, error) {
	switch cfg.Store.Backend {
	case StoreFile:
		return store.OpenFile(cfg.Store.Path)
	case StorePostgres:
		return database.Open(ctx, cfg.DB)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// SetupEngine opens storage, builds the engine and loads pending reminders.
func (b *Bot) SetupEngine(ctx context.Context) error {
	backend, err := OpenBackend(ctx, b.Cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", b.Cfg.Store.Backend, err)
	}
	b.Store = store.New(backend)
	b.Metrics = metrics.New(nil)

	opts, err := b.Cfg.EngineOptions(b.Metrics)
	if err != nil {
		return err
	}
	b.Engine, err = engine.New(b.Store, b.Clock, opts)
	if err != nil {
		return err
	}
	if err = b.Engine.Start(ctx); err != nil {
		return fmt.Errorf("failed to load reminders: %w", err)
	}

	if b.Cfg.Spaces.Enabled() {
		spaces := b.Cfg.Spaces.Options()
		client, err := services.NewSpacesClient(ctx, spaces)
		if err != nil {
			return err
		}
		b.Backup = services.NewBackupService(client, backend, b.Clock, spaces)
	}
	return nil
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(
			gateway.IntentGuilds,
			gateway.IntentGuildMembers,
			gateway.IntentGuildMessages,
			gateway.IntentGuildMessageReactions,
			gateway.IntentMessageContent,
		)),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}
	b.Client = client

	b.Render = handlers.Renderer{GuildName: b.guildName}
	b.Dispatcher = handlers.NewDispatcher(handlers.DispatcherConfig{
		Executor:  handlers.NewRestExecutor(client.Rest(), b.Render, client.ID),
		Tickets:   b.Engine.Tickets,
		Starboard: b.Engine.Starboard,
		OnFailure: b.onActionFailure,
		Workers:   b.Cfg.Engine.DispatchWorkers,
	})
	b.Gateway = handlers.NewGateway(b.Engine, b.Dispatcher, client.Rest())
	client.AddEventListeners(b.Gateway.Listeners()...)
	return nil
}

func (b *Bot) guildName(id snowflake.ID) string {
	if guild, ok := b.Client.Caches().Guild(id); ok {
		return guild.Name
	}
	return ""
}

func (b *Bot) onActionFailure(f *actions.Failure) {
	b.Metrics.ActionFailed(f)
	handlers.LogFailure(f)
}

// Dispatch hands actions decided by a command to the dispatcher.
func (b *Bot) Dispatch(ctx context.Context, acts []actions.Action) {
	if err := b.Dispatcher.Dispatch(ctx, acts); err != nil {
		slog.Error("Failed to queue actions",
			slog.String("type", "error"),
			slog.Int("actions", len(acts)),
			slog.Any("error", err),
		)
	}
}

// StartJobs schedules reminder delivery, retries of failed writes, presence
// refresh and backups.
func (b *Bot) StartJobs() error {
	opts, err := b.Cfg.EngineOptions(nil)
	if err != nil {
		return err
	}
	b.Jobs = jobs.NewScheduler(opts.Location, b.Metrics)

	list := []jobs.Job{
		jobs.ReminderTick(b.Cfg.Jobs.ReminderTick, b.Clock, b.Gateway),
		jobs.Flush(b.Cfg.Jobs.Flush, b.Store, b.Engine.Reminders.Len, b.Metrics),
		jobs.Presence(b.Cfg.Jobs.Presence, b.UpdatePresence),
	}
	if b.Backup != nil {
		list = append(list, jobs.Backup(b.Cfg.Jobs.Backup, func(ctx context.Context) error {
			_, err := b.Backup.Run(ctx)
			return err
		}))
	}
	for _, job := range list {
		if err := b.Jobs.Add(job); err != nil {
			return err
		}
	}
	b.Jobs.Start()
	return nil
}

func (b *Bot) presenceText() string {
	return strings.ReplaceAll(b.Cfg.Bot.Presence, "{guilds}", strconv.Itoa(b.Client.Caches().GuildsLen()))
}

func (b *Bot) UpdatePresence(ctx context.Context) error {
	return b.Client.SetPresence(ctx,
		gateway.WithWatchingActivity(b.presenceText()),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline))
}

func (b *Bot) OnReady(_ *events.Ready) {
	slog.Info("Warden is now ready",
		slog.String("type", "sys"),
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.UpdatePresence(ctx); err != nil {
		slog.Error("Failed to set presence", slog.String("type", "sys"), slog.Any("error", err))
	}
}

// Shutdown stops the parts in reverse start order: no new ticks, no new
// gateway events, drain queued actions, then flush and close storage.
func (b *Bot) Shutdown(ctx context.Context) error {
	var errs []error
	if b.Jobs != nil {
		b.Jobs.Stop()
	}
	if b.Client != nil {
		b.Client.Close(ctx)
	}
	if b.Dispatcher != nil {
		timeout := 10 * time.Second
		if deadline, ok := ctx.Deadline(); ok {
			timeout = time.Until(deadline)
		}
		if err := b.Dispatcher.Close(timeout); err != nil {
			errs = append(errs, fmt.Errorf("dispatcher: %w", err))
		}
	}
	if b.Store != nil {
		if err := b.Store.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	return errors.Join(errs...)
}
