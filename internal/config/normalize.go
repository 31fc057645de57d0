package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeOutput(); err != nil {
		return err
	}
	c.normalizeSeparation()
	if err := c.normalizeWorkspace(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeOutput() error {
	c.Output.Dir = strings.TrimSpace(c.Output.Dir)
	if c.Output.Dir == "" {
		c.Output.Dir = defaultOutputDir
	}
	var err error
	if c.Output.Dir, err = expandPath(c.Output.Dir); err != nil {
		return fmt.Errorf("output.dir: %w", err)
	}
	c.Output.Bitrate = strings.ToLower(strings.TrimSpace(c.Output.Bitrate))
	if c.Output.Bitrate == "" {
		c.Output.Bitrate = defaultBitrate
	}
	return nil
}

func (c *Config) normalizeSeparation() {
	c.Separation.Model = strings.TrimSpace(c.Separation.Model)
	if c.Separation.Model == "" {
		c.Separation.Model = defaultModel
	}
	c.Separation.Device = strings.ToLower(strings.TrimSpace(c.Separation.Device))
	if c.Separation.Device == "" {
		c.Separation.Device = defaultDevice
	}
}

func (c *Config) normalizeWorkspace() error {
	c.Workspace.Root = strings.TrimSpace(c.Workspace.Root)
	if c.Workspace.Root == "" {
		return nil
	}
	var err error
	if c.Workspace.Root, err = expandPath(c.Workspace.Root); err != nil {
		return fmt.Errorf("workspace.root: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
