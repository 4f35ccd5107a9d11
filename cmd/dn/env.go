package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/starford/donno/internal"
	pkgconfig "github.com/starford/donno/pkg/config"
)

const (
	defaultIndex = 1
	maxIndex     = 29999
	defaultLimit = 5
)

// env is what a command needs: configuration, logger and output streams.
type env struct {
	cfg     *internal.Config
	cfgPath string
	logger  *slog.Logger
	out     io.Writer
	errOut  io.Writer
}

// loadEnv reads the configuration, writing the defaults on first run.
func loadEnv(cmd *cli.Command) (*env, error) {
	root := cmd.Root()
	e := &env{out: root.Writer, errOut: root.ErrWriter}
	if e.out == nil {
		e.out = os.Stdout
	}
	if e.errOut == nil {
		e.errOut = os.Stderr
	}

	e.cfgPath = cmd.String("config")
	if e.cfgPath == "" {
		e.cfgPath = internal.DefaultConfigPath()
	}
	e.cfg = internal.NewDefaultConfig()
	created, err := pkgconfig.LoadOrInit(e.cfgPath, e.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if created {
		fmt.Fprintf(e.errOut, "wrote default configuration to %s\n", e.cfgPath)
	}
	e.logger = internal.NewLogger(e.cfg.App.LogLevel, e.errOut)
	return e, nil
}

// open loads the environment and the shared components. The caller closes
// the components.
func open(cmd *cli.Command) (*env, *internal.Components, error) {
	return openWith(cmd, internal.Open)
}

// openExisting is open for commands that resolve an ordinal against the
// last listing and must not replace the cache.
func openExisting(cmd *cli.Command) (*env, *internal.Components, error) {
	return openWith(cmd, internal.OpenExisting)
}

func openWith(cmd *cli.Command, openComps func(*internal.Config, *slog.Logger) (*internal.Components, error)) (*env, *internal.Components, error) {
	e, err := loadEnv(cmd)
	if err != nil {
		return nil, nil, err
	}
	comps, err := openComps(e.cfg, e.logger)
	if err != nil {
		return nil, nil, err
	}
	return e, comps, nil
}

// indexArg reads the optional ordinal argument.
func indexArg(cmd *cli.Command) (int, error) {
	raw := cmd.Args().First()
	if raw == "" {
		return defaultIndex, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxIndex {
		return 0, fmt.Errorf("index must be a number between 1 and %d, got %q", maxIndex, raw)
	}
	return n, nil
}

// limitArg reads the optional number of notes to list.
func limitArg(cmd *cli.Command) (int, error) {
	raw := cmd.Args().First()
	if raw == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("number must be a non-negative integer, got %q", raw)
	}
	return n, nil
}
