package main

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"askgreg/internal/catalog"
	"askgreg/internal/config"
	"askgreg/internal/generator"
	"askgreg/internal/intent"
	"askgreg/internal/logging"
	"askgreg/internal/preference/sink"
	"askgreg/internal/session"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// runtime is everything a question needs: catalog, providers, classifier,
// durable sink and the session controller over them.
type runtime struct {
	cfg        *config.Config
	logger     *slog.Logger
	catalog    *catalog.Catalog
	generator  *generator.Generator
	classifier intent.Classifier
	sink       sink.Sink
	controller *session.Controller
}

func (c *commandContext) openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	cat, err := catalog.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	gen := generator.FromConfig(cfg, logger)
	classifier, err := intent.New(cfg, cat, gen, logger)
	if err != nil {
		return nil, err
	}
	snk, err := sink.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	controller := session.NewController(session.Options{
		Catalog:         cat,
		Generator:       gen,
		Classifier:      classifierOrNil(classifier),
		Sink:            snk,
		DefaultProvider: cfg.Providers.Default,
		Seed:            cfg.Generation.Seed,
		Logger:          logger,
	})
	return &runtime{
		cfg:        cfg,
		logger:     logger,
		catalog:    cat,
		generator:  gen,
		classifier: classifier,
		sink:       snk,
		controller: controller,
	}, nil
}

func (r *runtime) Close() error {
	if r == nil || r.sink == nil {
		return nil
	}
	return r.sink.Close()
}

// classifierOrNil keeps the controller from classifying when classification
// is disabled, so a missing category is reported as such.
func classifierOrNil(c intent.Classifier) intent.Classifier {
	if c == nil || c.Mode() == config.ClassifyNone {
		return nil
	}
	return c
}

func (c *commandContext) openQuerier(ctx context.Context) (sink.Querier, func() error, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	snk, err := sink.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	querier, ok := snk.(sink.Querier)
	if !ok {
		_ = snk.Close()
		return nil, nil, errors.New("preference sink " + cfg.Preferences.Sink + " cannot be queried; use sqlite or postgres")
	}
	return querier, snk.Close, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
