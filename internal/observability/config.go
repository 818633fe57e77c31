package observability

import (
	appconfig "github.com/escolaris/finance/internal/config"
)

// Config carries the observability settings derived from app config.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled  bool
	OTLPEndpoint string
}

func LoadConfig(cfg appconfig.Config) Config {
	return Config{
		ServiceName:  cfg.AppName,
		Environment:  cfg.Environment,
		Version:      cfg.AppVersion,
		LogLevel:     cfg.LogLevel,
		LogFormat:    cfg.LogFormat,
		OtelEnabled:  cfg.OtelEnabled,
		OTLPEndpoint: cfg.OTLPEndpoint,
	}
}

func (c Config) Debug() bool {
	return c.Environment != "production"
}
