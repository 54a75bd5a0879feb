package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"basintab/internal/config"
	"basintab/internal/engine"
	"basintab/internal/journal"
	"basintab/internal/logging"
	"basintab/internal/runner"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
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
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg)
}

// newRunner assembles a runner with the real engine client and, when
// withJournal is set, an open journal store the caller must close.
func (c *commandContext) newRunner(withJournal bool) (*runner.Runner, *journal.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.logger()
	if err != nil {
		return nil, nil, err
	}
	client, err := engine.New(cfg.Engine, cfg.Paths.TempDir)
	if err != nil {
		return nil, nil, err
	}

	var store *journal.Store
	if withJournal {
		store, err = journal.Open(cfg)
		if err != nil {
			return nil, nil, err
		}
	}
	return runner.New(cfg, logger, client, store), store, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
