package warden

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"

	"github.com/wardenbot/warden/internal/domain/economy"
	"github.com/wardenbot/warden/internal/domain/engine"
	"github.com/wardenbot/warden/internal/domain/leveling"
	"github.com/wardenbot/warden/internal/domain/moderation"
	"github.com/wardenbot/warden/internal/gateways/database"
	"github.com/wardenbot/warden/warden/services"
)

const (
	StoreFile     = "file"
	StorePostgres = "postgres"

	envPrefix = "warden"
)

var (
	ErrMissingToken = errors.New("bot token is not configured")
	ErrMissingStore = errors.New("storage location is not configured")
)

// LoadConfig reads the TOML file at path, applies WARDEN_* environment
// overrides and fills defaults. It does not validate; callers decide which
// sections they need.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err = cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

type Config struct {
	Log     LogConfig         `toml:"log"`
	Bot     BotConfig         `toml:"bot"`
	Store   StoreConfig       `toml:"store"`
	DB      database.DBConfig `toml:"db"`
	Engine  EngineConfig      `toml:"engine"`
	Jobs    JobsConfig        `toml:"jobs"`
	Metrics MetricsConfig     `toml:"metrics"`
	Spaces  SpacesConfig      `toml:"spaces"`
}

type LogConfig struct {
	Level   slog.Level `toml:"level"`
	NoColor bool       `toml:"no_color"`
}

type BotConfig struct {
	DevGuilds []snowflake.ID `toml:"dev_guilds"`
	Token     string         `toml:"token"`
	Presence  string         `toml:"presence"`
}

type StoreConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

type EngineConfig struct {
	XPPerMessage          int64  `toml:"xp_per_message"`
	DailyReward           int64  `toml:"daily_reward"`
	Timezone              string `toml:"timezone"`
	EscalationMuteMinutes int    `toml:"escalation_mute_minutes"`
	SpamMuteMinutes       int    `toml:"spam_mute_minutes"`
	StarCacheSize         int    `toml:"star_cache_size"`
	SweepIdleMinutes      int    `toml:"sweep_idle_minutes"`
	DispatchWorkers       int    `toml:"dispatch_workers"`
}

// JobsConfig holds cron specs. An empty Backup disables backups.
type JobsConfig struct {
	ReminderTick string `toml:"reminder_tick"`
	Presence     string `toml:"presence"`
	Flush        string `toml:"flush"`
	Backup       string `toml:"backup"`
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

type SpacesConfig struct {
	Key      string `toml:"key"`
	Secret   string `toml:"secret"`
	Region   string `toml:"region"`
	Bucket   string `toml:"bucket"`
	Endpoint string `toml:"endpoint"`
	Prefix   string `toml:"prefix"`
}

func (s SpacesConfig) Enabled() bool {
	return s.Bucket != "" && s.Key != "" && s.Secret != ""
}

func (s SpacesConfig) Options() services.SpacesOptions {
	return services.SpacesOptions{
		Key:      s.Key,
		Secret:   s.Secret,
		Region:   s.Region,
		Bucket:   s.Bucket,
		Endpoint: s.Endpoint,
		Prefix:   s.Prefix,
	}
}

// envOverrides lists the settings that can be supplied through the
// environment, usually secrets kept out of config.toml.
type envOverrides struct {
	Token          string `envconfig:"TOKEN"`
	LogLevel       string `envconfig:"LOG_LEVEL"`
	StoreBackend   string `envconfig:"STORE_BACKEND"`
	StorePath      string `envconfig:"STORE_PATH"`
	DBHost         string `envconfig:"DB_HOST"`
	DBPort         int    `envconfig:"DB_PORT"`
	DBUser         string `envconfig:"DB_USER"`
	DBPassword     string `envconfig:"DB_PASSWORD"`
	DBName         string `envconfig:"DB_NAME"`
	MetricsAddr    string `envconfig:"METRICS_ADDR"`
	SpacesKey      string `envconfig:"SPACES_KEY"`
	SpacesSecret   string `envconfig:"SPACES_SECRET"`
	SpacesBucket   string `envconfig:"SPACES_BUCKET"`
	SpacesEndpoint string `envconfig:"SPACES_ENDPOINT"`
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	override(&c.Bot.Token, env.Token)
	override(&c.Store.Backend, env.StoreBackend)
	override(&c.Store.Path, env.StorePath)
	override(&c.DB.Host, env.DBHost)
	override(&c.DB.User, env.DBUser)
	override(&c.DB.Password, env.DBPassword)
	override(&c.DB.Database, env.DBName)
	override(&c.Metrics.Addr, env.MetricsAddr)
	override(&c.Spaces.Key, env.SpacesKey)
	override(&c.Spaces.Secret, env.SpacesSecret)
	override(&c.Spaces.Bucket, env.SpacesBucket)
	override(&c.Spaces.Endpoint, env.SpacesEndpoint)
	if env.DBPort != 0 {
		c.DB.Port = env.DBPort
	}
	if env.LogLevel != "" {
		if err := c.Log.Level.UnmarshalText([]byte(env.LogLevel)); err != nil {
			return fmt.Errorf("invalid %s_LOG_LEVEL: %w", strings.ToUpper(envPrefix), err)
		}
	}
	return nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (c *Config) setDefaults() {
	if c.Bot.Presence == "" {
		c.Bot.Presence = "over {guilds} servers"
	}

	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = StoreFile
	}
	if c.Store.Backend == StoreFile && c.Store.Path == "" {
		c.Store.Path = "data.json"
	}

	if c.DB.Port == 0 {
		c.DB.Port = 5432
	}
	if c.DB.PoolSize == 0 {
		c.DB.PoolSize = 10
	}

	e := &c.Engine
	if e.XPPerMessage <= 0 {
		e.XPPerMessage = leveling.MessageXP
	}
	if e.DailyReward <= 0 {
		e.DailyReward = economy.DefaultDailyReward
	}
	if e.Timezone == "" {
		e.Timezone = "UTC"
	}
	if e.EscalationMuteMinutes <= 0 {
		e.EscalationMuteMinutes = int(moderation.EscalationMute / time.Minute)
	}
	if e.SpamMuteMinutes <= 0 {
		e.SpamMuteMinutes = int(moderation.SpamMute / time.Minute)
	}
	if e.SweepIdleMinutes <= 0 {
		e.SweepIdleMinutes = int(engine.DefaultSweepIdle / time.Minute)
	}
	if e.DispatchWorkers <= 0 {
		e.DispatchWorkers = 4
	}

	j := &c.Jobs
	if j.ReminderTick == "" {
		j.ReminderTick = "@every 15s"
	}
	if j.Presence == "" {
		j.Presence = "@every 10m"
	}
	if j.Flush == "" {
		j.Flush = "@every 1m"
	}

	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9090"
	}
	if c.Spaces.Prefix == "" {
		c.Spaces.Prefix = "backups"
	}
}

// Validate reports the settings the bot cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Bot.Token) == "" {
		return ErrMissingToken
	}
	return c.ValidateStore()
}

func (c *Config) ValidateStore() error {
	switch c.Store.Backend {
	case StoreFile:
		if strings.TrimSpace(c.Store.Path) == "" {
			return ErrMissingStore
		}
	case StorePostgres:
		if c.DB.Host == "" || c.DB.Database == "" {
			return fmt.Errorf("%w: postgres host and database are required", ErrMissingStore)
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	return nil
}

// EngineOptions converts the engine section. Metrics may be nil.
func (c *Config) EngineOptions(m engine.Metrics) (engine.Options, error) {
	loc, err := time.LoadLocation(c.Engine.Timezone)
	if err != nil {
		return engine.Options{}, fmt.Errorf("invalid timezone %q: %w", c.Engine.Timezone, err)
	}
	return engine.Options{
		XPPerMessage:   c.Engine.XPPerMessage,
		DailyReward:    c.Engine.DailyReward,
		Location:       loc,
		EscalationMute: time.Duration(c.Engine.EscalationMuteMinutes) * time.Minute,
		SpamMute:       time.Duration(c.Engine.SpamMuteMinutes) * time.Minute,
		StarCacheSize:  c.Engine.StarCacheSize,
		SweepIdle:      time.Duration(c.Engine.SweepIdleMinutes) * time.Minute,
		Metrics:        m,
	}, nil
}
