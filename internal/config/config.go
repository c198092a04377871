// Package config provides configuration for the application, combining
// defaults, an optional JSON config file, a .env file, and environment
// variables (highest precedence).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// DataDir is the directory holding per-store JSON state blobs.
	DataDir string `json:"data_dir"`

	// VaultDir is the directory holding encrypted photo files.
	VaultDir string `json:"vault_dir"`

	// KeyDir is the directory holding the master key material.
	KeyDir string `json:"key_dir"`

	// AIBaseURL is the base URL of the AI chat service.
	AIBaseURL string `json:"ai_base_url"`

	// AICAFile is an optional CA certificate for the AI chat service.
	AICAFile string `json:"ai_ca_file"`

	// APIAddr is the listen address for the local HTTP API.
	APIAddr string `json:"api_addr"`

	// LogLevel controls logger verbosity.
	LogLevel string `json:"log_level"`
}

// Load builds Options from defaults, then the JSON file at path (if it
// exists), then a .env file in the working directory (if present), then
// process environment variables.
func Load(path string) (*Options, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	root := filepath.Join(base, "fitvault")

	opts := &Options{
		DataDir:   filepath.Join(root, "data"),
		VaultDir:  filepath.Join(root, "vault"),
		KeyDir:    filepath.Join(root, "keys"),
		AIBaseURL: "https://localhost:8443",
		APIAddr:   "localhost:8080",
		LogLevel:  "info",
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
			if err := json.Unmarshal(data, opts); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	// .env is optional; missing file is not an error.
	_ = godotenv.Load()

	applyEnv(opts)
	return opts, nil
}

func applyEnv(opts *Options) {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&opts.DataDir, "FITVAULT_DATA_DIR")
	set(&opts.VaultDir, "FITVAULT_VAULT_DIR")
	set(&opts.KeyDir, "FITVAULT_KEY_DIR")
	set(&opts.AIBaseURL, "FITVAULT_AI_URL")
	set(&opts.AICAFile, "FITVAULT_AI_CA")
	set(&opts.APIAddr, "FITVAULT_API_ADDR")
	set(&opts.LogLevel, "FITVAULT_LOG_LEVEL")
}
