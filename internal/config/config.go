// Package config loads the YAML configuration the demo binaries run
// from: listen address, wire format, session log directory. The core
// library takes no configuration beyond its constructor arguments.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the demo binaries' configuration file shape.
type Config struct {
	AppName string `yaml:"app_name"`
	Debug   bool   `yaml:"debug"`

	Server ServerConfig `yaml:"server"`
	Client ClientConfig `yaml:"client"`

	LogDir string `yaml:"log_dir"`
}

// ServerConfig configures olink-calc-server.
type ServerConfig struct {
	Listen string `yaml:"listen"`
	Codec  string `yaml:"codec"`
}

// ClientConfig holds client-side settings. olink-calc-client does not
// read the config file; it takes its address and codec from flags.
type ClientConfig struct {
	Address string `yaml:"address"`
	Codec   string `yaml:"codec"`
}

// Load reads and parses a config file, filling defaults for anything
// the file leaves out.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Default returns the built-in configuration used when no config file
// is present.
func Default() *Config {
	config := &Config{}
	config.applyDefaults()
	return config
}

func (c *Config) applyDefaults() {
	if c.AppName == "" {
		c.AppName = "olink-calc"
	}
	if c.Server.Listen == "" {
		c.Server.Listen = ":8282"
	}
	if c.Server.Codec == "" {
		c.Server.Codec = "json"
	}
	if c.Client.Address == "" {
		c.Client.Address = "localhost:8282"
	}
	if c.Client.Codec == "" {
		c.Client.Codec = "json"
	}
	if c.LogDir == "" {
		c.LogDir = "logs"
	}
}

func (c *Config) validate() error {
	for _, codec := range []string{c.Server.Codec, c.Client.Codec} {
		switch codec {
		case "json", "bson", "msgpack", "cbor":
		default:
			return fmt.Errorf("unknown codec %q (want json, bson, msgpack or cbor)", codec)
		}
	}
	return nil
}
