package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/logger"
)

var (
	version = "dev"
	commit  = "unknown"

	configPath string
	cfg        *warden.Config
)

var rootCmd = &cobra.Command{
	Use:           "warden",
	Short:         "Guild moderation and engagement bot",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := warden.LoadConfig(configPath)
		if err != nil {
			return err
		}
		slog.SetDefault(slog.New(logger.NewHandler(os.Stdout, logger.Options{
			Level:   c.Log.Level,
			NoColor: c.Log.NoColor,
		})))
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "path to config")
}

// Execute runs the CLI and exits non-zero on failure.
func Execute(v string, c string) {
	version, commit = v, c
	rootCmd.Version = fmt.Sprintf("%s (%s)", v, c)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command failed", slog.String("type", "sys"), slog.Any("error", err))
		os.Exit(1)
	}
}
