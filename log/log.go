package log

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/squareup/tdcodec/errors"
)

// Config contains the configuration for the global logger.
type Config struct {
	Format string `json:"format,omitempty"`
	Level  string `json:"level,omitempty"`
	File   string `json:"file,omitempty"`
}

func (cfg *Config) Validate() error {
	switch cfg.Format {
	case "", "text", "json":
	default:
		return errors.NewInvalidConfigurationError("log format must be either text or json")
	}
	if cfg.Level != "" {
		if _, err := log.ParseLevel(cfg.Level); err != nil {
			return errors.NewInvalidConfigurationError(err.Error())
		}
	}
	return nil
}

// Configure the global logger
func (cfg *Config) Configure() error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.File != "" && cfg.File != "-" {
		f, err := os.Create(cfg.File)
		if err != nil {
			return errors.WithStack(err)
		}
		log.SetOutput(f)
	}
	if cfg.Level != "" {
		level, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return errors.WithStack(err)
		}
		log.SetLevel(level)
	}
	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}
	return nil
}
