package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/zametka/internal"
	pkgconfig "github.com/starford/zametka/pkg/config"
)

const defaultConfigPath = "config/config.yaml"

// loadConfig reads the config file named by --config, falling back to the
// defaults when it does not exist, and applies flag overrides on top.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	found, err := pkgconfig.LoadIfExists(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found {
		slog.Warn("config file not found, using defaults", slog.String("path", configPath))
	}

	if v := cmd.String("data-path"); v != "" {
		cfg.Storage.Path = v
	}
	if v := cmd.String("snapshot"); v != "" {
		cfg.Snapshot.Path = v
	}
	if v := cmd.String("log-level"); v != "" {
		if err := cfg.App.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("invalid --log-level: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// action adapts an internal entry point into a cli action.
func action(entry func(context.Context, ...internal.Option) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := entry(ctx, internal.WithConfig(cfg)); err != nil {
			return fmt.Errorf("%s: %w", cmd.Name, err)
		}
		return nil
	}
}

func saveConfig(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path := cmd.String("config")
	if err := pkgconfig.Save(path, cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Printf("settings written to %s\n", path)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "zametka",
		Usage:  "Console notebook keeping one JSON file per note",
		Action: action(internal.Run),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: defaultConfigPath,
				Value:       defaultConfigPath,
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "data-path",
				Usage:   "Directory holding the note files (overrides storage.path)",
				Sources: cli.EnvVars("ZAMETKA_DATA_PATH"),
			},
			&cli.StringFlag{
				Name:    "snapshot",
				Usage:   "SQLite snapshot file (overrides snapshot.path)",
				Sources: cli.EnvVars("ZAMETKA_SNAPSHOT_PATH"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: DEBUG, INFO, WARN or ERROR (overrides app.log_level)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "check",
				Usage:  "Report note files that cannot be read",
				Action: action(internal.Check),
			},
			{
				Name:   "export",
				Usage:  "Mirror all readable notes into the SQLite snapshot",
				Action: action(internal.Export),
			},
			{
				Name:   "watch",
				Usage:  "Keep the SQLite snapshot in sync with the notes directory",
				Action: action(internal.Watch),
			},
			{
				Name:   "mcp",
				Usage:  "Serve the notes as MCP tools on stdio",
				Action: action(internal.ServeMCP),
			},
			{
				Name:  "config",
				Usage: "Manage the settings file",
				Commands: []*cli.Command{
					{
						Name:   "save",
						Usage:  "Write the effective settings to the config file",
						Action: saveConfig,
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
