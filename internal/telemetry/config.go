package telemetry

import (
	"os"
	"strconv"
)

// Config holds telemetry exporter configuration.
type Config struct {
	Endpoint string `yaml:"endpoint"`
	Enabled  bool   `yaml:"enabled"`
	Insecure bool   `yaml:"insecure"`
}

// FromEnv overlays EFFWATCH_OTEL_* environment variables onto the
// config. Env values win so scheduled runs can be redirected without
// editing the config file.
func (c Config) FromEnv() Config {
	if v := os.Getenv("EFFWATCH_OTEL_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("EFFWATCH_OTEL_ENABLED"); v != "" {
		c.Enabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("EFFWATCH_OTEL_INSECURE"); v != "" {
		c.Insecure, _ = strconv.ParseBool(v)
	}
	return c
}
