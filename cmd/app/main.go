package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/recall/internal"
	"github.com/starford/recall/internal/apperr"
	"github.com/starford/recall/internal/workspace"
	pkgconfig "github.com/starford/recall/pkg/config"
)

// openApp resolves the workspace, loads configuration and builds the App.
// mutate runs after the config files and before final validation.
func openApp(cmd *cli.Command, mutate ...func(*internal.Config)) (*internal.App, error) {
	layout, err := resolveWorkspace(cmd.String("workspace"))
	if err != nil {
		return nil, err
	}

	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(layout.ConfigFile(), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if path := cmd.String("config"); path != "" {
		if err := pkgconfig.Load(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if cmd.IsSet("log-level") {
		if err := cfg.LogLevel.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}
	for _, m := range mutate {
		m(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	logger := internal.NewLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Debug("Configuration loaded",
		slog.String("workspace", layout.Root),
		slog.Float64("threshold_days", cfg.Archive.ThresholdDays),
		slog.Int("max_active", cfg.Archive.MaxActive),
		slog.String("log_level", cfg.LogLevel.String()))

	return internal.New(
		internal.WithConfig(cfg),
		internal.WithLayout(layout),
		internal.WithLogger(logger),
		internal.WithOutput(os.Stdout),
		internal.WithJSON(cmd.Bool("json")),
	)
}

func resolveWorkspace(explicit string) (*workspace.Layout, error) {
	if explicit != "" {
		return workspace.New(explicit)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("workspace: getwd: %w", err)
	}
	return workspace.Find(wd)
}

func requireArg(cmd *cli.Command, what string) (string, error) {
	arg := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if arg == "" {
		return "", fmt.Errorf("%s: %s is required: %w", cmd.Name, what, apperr.ErrInvalidArgument)
	}
	return arg, nil
}

func createCommand() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create a new memory record and rebuild the index",
		ArgsUsage: "[mem-YYYYMMDD-HHMMSS]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			return app.Create(cmd.Args().First())
		},
	}
}

func rebuildIndexCommand() *cli.Command {
	return &cli.Command{
		Name:  "rebuild-index",
		Usage: "Regenerate INDEX.md and the skill keyword line from active records",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			return app.RebuildIndex()
		},
	}
}

func recallCommand() *cli.Command {
	return &cli.Command{
		Name:  "recall",
		Usage: "Find, list and reactivate records",
		Commands: []*cli.Command{
			{
				Name:      "reactivate",
				Usage:     "Move an archived record back to the active partition",
				ArgsUsage: "<record-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name, err := requireArg(cmd, "record id")
					if err != nil {
						return err
					}
					app, err := openApp(cmd)
					if err != nil {
						return err
					}
					return app.Reactivate(name)
				},
			},
			{
				Name:  "list-archived",
				Usage: "List archived records",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					app, err := openApp(cmd)
					if err != nil {
						return err
					}
					return app.ListArchived()
				},
			},
			{
				Name:      "search",
				Usage:     "Search both partitions by id, topic, keywords and full log",
				ArgsUsage: "<keyword>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					keyword, err := requireArg(cmd, "keyword")
					if err != nil {
						return err
					}
					app, err := openApp(cmd)
					if err != nil {
						return err
					}
					return app.Search(keyword)
				},
			},
		},
	}
}

func archiveCommand() *cli.Command {
	return &cli.Command{
		Name:  "archive",
		Usage: "Move old or surplus active records to the archive",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Aliases: []string{"n"}, Usage: "Report candidates without moving them"},
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Archive the oldest remaining record regardless of capacity"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			return app.Archive(cmd.Bool("dry-run"), cmd.Bool("force"))
		},
		Commands: []*cli.Command{
			{
				Name:  "stats",
				Usage: "Show partition sizes and archival status",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					app, err := openApp(cmd)
					if err != nil {
						return err
					}
					return app.Stats()
				},
			},
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Keep the index current while records change",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "archive-schedule", Usage: "Cron expression for automatic archive runs (e.g. @daily)"},
			&cli.DurationFlag{Name: "debounce", Usage: "Quiet period before rebuilding"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			app, err := openApp(cmd, func(cfg *internal.Config) {
				if cmd.IsSet("archive-schedule") {
					cfg.Watch.ArchiveSchedule = cmd.String("archive-schedule")
				}
				if cmd.IsSet("debounce") {
					cfg.Watch.Debounce = cmd.Duration("debounce")
				}
			})
			if err != nil {
				return err
			}
			return app.Watch(ctx)
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the record tools over MCP stdio",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			return app.ServeMCP()
		},
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "mem",
		Usage: "File-based memory records with an active index and an archive",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "workspace",
				Aliases: []string{"w"},
				Usage:   "Workspace root (default: nearest ancestor with a .claude directory)",
				Sources: cli.EnvVars("RECALL_WORKSPACE"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Extra config file applied after .claude/memory/config.yaml",
				Sources: cli.EnvVars("RECALL_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print results as JSON",
			},
		},
		Commands: []*cli.Command{
			createCommand(),
			rebuildIndexCommand(),
			recallCommand(),
			archiveCommand(),
			watchCommand(),
			mcpCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
