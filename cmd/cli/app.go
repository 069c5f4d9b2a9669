package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"mutafriches/internal/bootstrap"
	"mutafriches/internal/platform/config"
	"mutafriches/internal/platform/logger"
)

const closeTimeout = 10 * time.Second

func newApp() *cli.App {
	return &cli.App{
		Name:    "mutafriches",
		Usage:   "Enrich cadastral parcels and score their mutability",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "providers-file",
				Usage:   "YAML file overriding provider endpoints",
				EnvVars: []string{"PROVIDERS_FILE"},
			},
		},

		Commands: []*cli.Command{
			enrichCommand(),
			evaluateCommand(),
			matrixCommand(),
		},
	}
}

// withApp wires the services from the environment, runs fn and drains
// pending writes before returning.
func withApp(c *cli.Context, fn func(ctx context.Context, app *bootstrap.App) error) error {
	cfg := config.FromEnv()
	cfg.LogLevel = c.String("log-level")
	if path := c.String("providers-file"); path != "" {
		cfg.ProvidersFile = path
	}

	ctx := c.Context
	app, err := bootstrap.New(ctx, cfg, logger.NewWithWriter(c.App.ErrWriter, cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("failed to initialise: %w", err)
	}

	runErr := fn(ctx, app)

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()
	if err := app.Close(closeCtx); err != nil && runErr == nil {
		return fmt.Errorf("failed to flush pending writes: %w", err)
	}
	return runErr
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readJSON decodes a file, or stdin when path is "-".
func readJSON(path string, v any) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
