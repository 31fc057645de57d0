package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"unmix/internal/config"
	"unmix/internal/logging"
)

// commandContext shares lazily loaded configuration between commands. Loading
// is side-effect free: no directories are created until a run decides to.
type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolvedPath
		c.configExists = exists
	})
	return c.config, c.configErr
}

// newLogger builds the run logger, letting the persistent flags override the
// config file. Logs go to the error stream so stdout stays reserved for
// command output.
func (c *commandContext) newLogger(cfg *config.Config, out io.Writer) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if c.logLevelFlag != nil {
		if v := strings.TrimSpace(*c.logLevelFlag); v != "" {
			level = v
		}
	}
	format := cfg.Logging.Format
	if c.logFormatFlag != nil {
		if v := strings.TrimSpace(*c.logFormatFlag); v != "" {
			format = v
		}
	}
	return logging.New(logging.Options{Level: level, Format: format, Output: out})
}
