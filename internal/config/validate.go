package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCapture(); err != nil {
		return err
	}
	if err := c.validateGeneration(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCapture() error {
	if c.Capture.ChunkSeconds < 1 || c.Capture.ChunkSeconds > 300 {
		return errors.New("capture.chunk_seconds must be between 1 and 300")
	}
	switch c.Capture.SampleRate {
	case 8000, 16000, 22050, 44100, 48000:
	default:
		return fmt.Errorf("capture.sample_rate: unsupported value %d", c.Capture.SampleRate)
	}
	return nil
}

func (c *Config) validateGeneration() error {
	if c.Generation.PassIntervalSeconds < 10 {
		return errors.New("generation.pass_interval_seconds must be at least 10")
	}
	if c.Generation.BackoffDismissals < 1 {
		return errors.New("generation.backoff_dismissals must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout < 0 {
		return errors.New("notifications.request_timeout must not be negative")
	}
	return nil
}
