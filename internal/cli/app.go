package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"claudiatron/internal/config"
	"claudiatron/internal/locator"
	"claudiatron/internal/logx"
	"claudiatron/internal/paths"
	"claudiatron/internal/settings"
)

// locatorHook lets tests adjust locator options before construction.
var locatorHook func(*locator.Options)

// app bundles everything a binary command needs. Close releases it.
type app struct {
	paths   paths.AppPaths
	cfg     config.Config
	store   *settings.Store
	log     *zap.Logger
	loc     *locator.Locator
	closers []io.Closer
}

func openApp(cmd *cobra.Command) (*app, error) {
	pp, err := paths.Resolve(homeDir)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return nil, err
	}
	pp = paths.ApplyConfig(pp, cfg)
	if err := pp.EnsureDirs(); err != nil {
		return nil, err
	}

	a := &app{paths: pp, cfg: cfg}

	logOpts := logx.Options{Level: cfg.Logging.Level}
	if verbose {
		logOpts.Console = cmd.ErrOrStderr()
	}
	logger, closer, err := logx.New(pp.LogsDir, logOpts)
	if err != nil {
		return nil, err
	}
	a.log = logger
	a.closers = append(a.closers, closer)

	store, err := settings.Open(pp.DatabaseFile)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, store)

	opts := locator.OptionsFromConfig(cfg.Binary)
	opts.Store = store
	opts.Logger = logger
	if locatorHook != nil {
		locatorHook(&opts)
	}
	loc, err := locator.New(opts)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create locator: %w", err)
	}
	a.loc = loc

	logger.Debug("claudiatron started",
		zap.String("command", cmd.CommandPath()),
		zap.String("root", pp.Root),
		zap.String("database", pp.DatabaseFile))
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// withApp opens the app, runs fn and closes the app.
func withApp(cmd *cobra.Command, fn func(*app) error) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
