package config

import (
	"errors"
	"fmt"
)

// Devices demucs accepts, plus "auto" which resolves at runtime.
var validDevices = map[string]struct{}{
	"auto": {},
	"cpu":  {},
	"cuda": {},
	"mps":  {},
}

var validLogFormats = map[string]struct{}{
	"console": {},
	"json":    {},
}

var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateSeparation(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateOutput() error {
	if c.Output.Dir == "" {
		return errors.New("output.dir must be set")
	}
	if !validBitrate(c.Output.Bitrate) {
		return fmt.Errorf("output.bitrate %q is not a valid bitrate (expected forms like 192k or 320k)", c.Output.Bitrate)
	}
	return nil
}

func (c *Config) validateSeparation() error {
	if c.Separation.Model == "" {
		return errors.New("separation.model must be set")
	}
	if _, ok := validDevices[c.Separation.Device]; !ok {
		return fmt.Errorf("separation.device %q must be one of auto, cpu, cuda, mps", c.Separation.Device)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if _, ok := validLogFormats[c.Logging.Format]; !ok {
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	if _, ok := validLogLevels[c.Logging.Level]; !ok {
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
	return nil
}

// validBitrate accepts ffmpeg-style bitrates: digits with an optional k or m
// suffix, already lowercased by normalization.
func validBitrate(value string) bool {
	if value == "" {
		return false
	}
	digits := value
	switch value[len(value)-1] {
	case 'k', 'm':
		digits = value[:len(value)-1]
	}
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
