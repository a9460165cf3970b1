// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Gateway  GatewayConfig
	Notebook NotebookConfig
	Logging  LogConfig
}

// GatewayConfig holds Jupyter kernel gateway configuration.
type GatewayConfig struct {
	URL            string        `envconfig:"JUPYTER_MCP_GATEWAY_URL" default:"http://127.0.0.1:8888"`
	Token          string        `envconfig:"JUPYTER_MCP_GATEWAY_TOKEN" default:""`
	KernelName     string        `envconfig:"JUPYTER_MCP_KERNEL_NAME" default:"python3"`
	ConnectTimeout time.Duration `envconfig:"JUPYTER_MCP_CONNECT_TIMEOUT" default:"30s"`
}

// NotebookConfig holds the default notebook bootstrap configuration.
type NotebookConfig struct {
	// Path is the notebook the server opens at startup.
	Path string `envconfig:"JUPYTER_MCP_NOTEBOOK_PATH" default:"work.ipynb"`
	// InitCode, when non-empty, is inserted and executed at index 0 the
	// first time a notebook is opened.
	InitCode string `envconfig:"JUPYTER_MCP_INIT_CODE" default:""`
	// Fresh removes a pre-existing notebook at Path before opening it.
	Fresh bool `envconfig:"JUPYTER_MCP_FRESH" default:"false"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `envconfig:"JUPYTER_MCP_LOG_LEVEL" default:"info"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Gateway: GatewayConfig{
			URL:            "http://127.0.0.1:8888",
			KernelName:     "python3",
			ConnectTimeout: 30 * time.Second,
		},
		Notebook: NotebookConfig{
			Path: "work.ipynb",
		},
		Logging: LogConfig{
			Level: "info",
		},
	}
}
