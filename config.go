package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the recorder's YAML configuration. Every field has a
// default, so an absent file yields a working recorder.
type Config struct {
	// SocketPath is the unix socket the platform shim listens on.
	SocketPath string `yaml:"socket_path"`

	// OSVersion pins the macOS release the version gate assumes, e.g.
	// "14.4.1". Empty means read kern.osproductversion at startup.
	OSVersion string `yaml:"os_version"`

	// DataDir holds the sqlite database.
	DataDir string `yaml:"data_dir"`

	// BinaryDir holds archived executables, keyed by sha256.
	BinaryDir string `yaml:"binary_dir"`

	// RulesDir holds enabled_rules/ and disabled_rules/ Sigma dirs.
	RulesDir string `yaml:"rules_dir"`

	// ListenAddr is the web API listen address.
	ListenAddr string `yaml:"listen_addr"`

	// ProcessMapSize bounds the in-memory process tracker.
	ProcessMapSize int `yaml:"process_map_size"`

	// SigmaPollInterval is how often new events are checked against rules.
	SigmaPollInterval time.Duration `yaml:"sigma_poll_interval"`

	// MutePaths are path prefixes the shim drops events for.
	MutePaths []string `yaml:"mute_paths"`
}

func defaultConfig() Config {
	return Config{
		SocketPath:        "/var/run/es-recorder.sock",
		DataDir:           "data",
		BinaryDir:         "data/bins",
		RulesDir:          "rules",
		ListenAddr:        ":8080",
		ProcessMapSize:    8192,
		SigmaPollInterval: 10 * time.Second,
	}
}

// LoadConfig reads the config file at path, falling back to defaults
// when path is empty or the file does not exist.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %v", err)
	}

	return cfg, nil
}
