package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/holtvik/ansuz/internal"
	"github.com/holtvik/ansuz/internal/bundle"
	"github.com/holtvik/ansuz/internal/mcpserver"
	pkgconfig "github.com/holtvik/ansuz/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// Stdio transport: logs must stay off stdout.
	logger := internal.NewLogger(cfg.App.LogLevel)

	svc, err := internal.NewService(cfg, logger)
	if err != nil {
		return err
	}
	return mcpserver.New(svc).ServeStdio()
}

func runBundle(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := internal.NewLogger(cfg.App.LogLevel)

	svc, err := internal.NewService(cfg, logger)
	if err != nil {
		return err
	}

	limits := cfg.Curator.Limits()
	if n := int(cmd.Int("max-skills")); n > 0 {
		limits.MaxSkills = n
	}
	if n := int(cmd.Int("max-tools")); n > 0 {
		limits.MaxTools = n
	}
	if n := int(cmd.Int("max-records")); n > 0 {
		limits.MaxRecords = n
	}

	b, err := svc.BuildBundle(bundle.Params{
		Request: cmd.String("request"),
		Limits:  limits,
		RunDir:  cmd.String("run-dir"),
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runMaps(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := internal.NewLogger(cfg.App.LogLevel)

	svc, err := internal.NewService(cfg, logger)
	if err != nil {
		return err
	}

	res, err := svc.BuildMaps(nil)
	if err != nil {
		return err
	}
	for _, m := range res.Maps {
		fmt.Println(m)
	}
	return nil
}

func runCatalog(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := internal.NewLogger(cfg.App.LogLevel)

	svc, err := internal.NewService(cfg, logger)
	if err != nil {
		return err
	}

	cat, err := svc.Catalog()
	if err != nil {
		return err
	}
	for _, e := range cat.All() {
		fmt.Printf("%s\t%s\t%s\n", e.ID, e.Type, e.Ref)
	}
	return nil
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:  "ansuz",
		Usage: "Curate bounded LLM context bundles from Markdown catalogs with typed frontmatter",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP API with source watching and SSE",
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Start the MCP server on stdio",
				Action: runMCP,
			},
			{
				Name:   "bundle",
				Usage:  "Build one context bundle for a request and print it",
				Action: runBundle,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "request",
						Aliases:  []string{"r"},
						Usage:    "Free-text request to curate context for",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "run-dir",
						Usage: "Directory (relative to the project root) to persist the bundle under",
					},
					&cli.IntFlag{Name: "max-skills", Usage: "Override max skills"},
					&cli.IntFlag{Name: "max-tools", Usage: "Override max tools"},
					&cli.IntFlag{Name: "max-records", Usage: "Override max records"},
				},
			},
			{
				Name:   "maps",
				Usage:  "Regenerate the records tree and index artifacts",
				Action: runMaps,
			},
			{
				Name:   "catalog",
				Usage:  "Load the catalog and list all entities",
				Action: runCatalog,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
