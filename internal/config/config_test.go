package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Gateway.URL != "http://127.0.0.1:8888" {
		t.Errorf("Gateway.URL = %q", cfg.Gateway.URL)
	}
	if cfg.Gateway.KernelName != "python3" {
		t.Errorf("Gateway.KernelName = %q", cfg.Gateway.KernelName)
	}
	if cfg.Gateway.ConnectTimeout != 30*time.Second {
		t.Errorf("Gateway.ConnectTimeout = %v", cfg.Gateway.ConnectTimeout)
	}
	if cfg.Notebook.Path != "work.ipynb" {
		t.Errorf("Notebook.Path = %q", cfg.Notebook.Path)
	}
	if cfg.Notebook.Fresh {
		t.Errorf("Notebook.Fresh should default to false")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("JUPYTER_MCP_GATEWAY_URL", "https://gateway.example:9999")
	t.Setenv("JUPYTER_MCP_GATEWAY_TOKEN", "secret")
	t.Setenv("JUPYTER_MCP_NOTEBOOK_PATH", "/data/run.ipynb")
	t.Setenv("JUPYTER_MCP_FRESH", "true")
	t.Setenv("JUPYTER_MCP_INIT_CODE", "import os")
	t.Setenv("JUPYTER_MCP_CONNECT_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Gateway.URL != "https://gateway.example:9999" {
		t.Errorf("Gateway.URL = %q", cfg.Gateway.URL)
	}
	if cfg.Gateway.Token != "secret" {
		t.Errorf("Gateway.Token = %q", cfg.Gateway.Token)
	}
	if cfg.Notebook.Path != "/data/run.ipynb" {
		t.Errorf("Notebook.Path = %q", cfg.Notebook.Path)
	}
	if !cfg.Notebook.Fresh {
		t.Errorf("Notebook.Fresh = false, want true")
	}
	if cfg.Notebook.InitCode != "import os" {
		t.Errorf("Notebook.InitCode = %q", cfg.Notebook.InitCode)
	}
	if cfg.Gateway.ConnectTimeout != 5*time.Second {
		t.Errorf("Gateway.ConnectTimeout = %v", cfg.Gateway.ConnectTimeout)
	}
}
