package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	wetwire "github.com/lex00/wetwire-aws-constructs-go"
	"github.com/lex00/wetwire-aws-constructs-go/internal/config"
	"github.com/lex00/wetwire-aws-constructs-go/internal/logging"
	"github.com/lex00/wetwire-aws-constructs-go/internal/lookup"
	"github.com/lex00/wetwire-aws-constructs-go/stacks"
)

// rootOptions are the persistent flags.
type rootOptions struct {
	configPath string
	logLevel   string
	lookup     bool
	region     string
	profile    string
}

// app is what a command needs to synthesize stacks.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	cache    *lookup.Cache
	registry stacks.Registry
	deps     stacks.Deps
}

// loadConfig reads the config file. Without --config a missing wetwire.yaml
// falls back to the defaults.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	path := o.configPath
	if path == "" {
		path = config.DefaultPath
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			cfg := config.Default()
			cfg.ApplyEnv(os.LookupEnv)
			return cfg, cfg.Validate()
		}
	}
	return config.Load(path)
}

// newApp loads the config and builds the logger and, when enabled, the
// lookup client.
func (o *rootOptions) newApp(ctx context.Context) (*app, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	if o.region != "" {
		cfg.Region = o.region
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	if o.logLevel != "" {
		logCfg.Level = o.logLevel
	}
	logCfg.Environment = logging.Environment(cfg.Logging.Environment)
	logger, err := logging.NewLogger(logCfg)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: stacks.Default(),
		deps: stacks.Deps{
			Context: logging.WithLogger(ctx, logger),
			Logger:  logger,
		},
	}

	if cfg.Lookup.Enabled || o.lookup {
		a.cache, err = lookup.LoadCache(cfg.Lookup.CacheFile)
		if err != nil {
			return nil, err
		}
		sess, err := lookup.NewSession(cfg.Region, o.profile)
		if err != nil {
			return nil, fmt.Errorf("creating AWS session: %w", err)
		}
		a.deps.Lookup = lookup.NewFromSession(sess,
			lookup.WithCache(a.cache),
			lookup.WithLogger(logger))
		logger.Debug("lookups enabled", zap.String("cache", cfg.Lookup.CacheFile))
	}
	return a, nil
}

// synth builds and synthesizes the named stack.
func (a *app) synth(name string) (*wetwire.Template, []wetwire.ResourceNode, error) {
	s, err := a.registry.Build(name, a.cfg, a.deps)
	if err != nil {
		return nil, nil, err
	}
	return s.Synth()
}

// close persists looked up values.
func (a *app) close() error {
	_ = a.logger.Sync()
	if a.cache == nil {
		return nil
	}
	if err := a.cache.Save(); err != nil {
		return fmt.Errorf("saving lookup cache: %w", err)
	}
	return nil
}

// withApp runs fn with a loaded app and closes it afterwards.
func withApp(ctx context.Context, opts *rootOptions, fn func(a *app) error) (err error) {
	a, err := opts.newApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(); err == nil {
			err = cerr
		}
	}()
	return fn(a)
}
