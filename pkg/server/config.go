// Copyright 2024-2026 Aiku AI

package server

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"go.mau.fi/zeroconfig"
	"gopkg.in/yaml.v3"
)

//go:embed example-config.yaml
var ExampleConfig string

// Config holds the relay service configuration.
type Config struct {
	// ListenAddr is the HTTP listen address. Defaults to ":29330".
	ListenAddr string `yaml:"listen_addr"`
	// MaxBodyBytes caps inbound payload size. Defaults to 1 MB.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
	// RelayTimeoutSeconds bounds each outbound delivery. Defaults to 10.
	RelayTimeoutSeconds int `yaml:"relay_timeout_seconds"`
	// DefaultUsername is the sender name applied by direct Matrix
	// delivery when a payload carries none. Webhook destinations apply
	// their own default instead.
	DefaultUsername string `yaml:"default_username"`

	Matrix  MatrixConfig      `yaml:"matrix"`
	Logging zeroconfig.Config `yaml:"logging"`
}

// MatrixConfig enables direct room delivery when both fields are set.
type MatrixConfig struct {
	HomeserverURL string `yaml:"homeserver_url"`
	AccessToken   string `yaml:"access_token"`
}

func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	type rawConfig Config
	return node.Decode((*rawConfig)(c))
}

// PostProcess applies S2M_* environment overrides and fills defaults.
func (c *Config) PostProcess() error {
	if v := os.Getenv("S2M_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("S2M_MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid S2M_MAX_BODY_BYTES: %w", err)
		}
		c.MaxBodyBytes = n
	}
	if v := os.Getenv("S2M_DEFAULT_USERNAME"); v != "" {
		c.DefaultUsername = v
	}
	if v := os.Getenv("S2M_MATRIX_HOMESERVER_URL"); v != "" {
		c.Matrix.HomeserverURL = v
	}
	if v := os.Getenv("S2M_MATRIX_ACCESS_TOKEN"); v != "" {
		c.Matrix.AccessToken = v
	}

	if c.ListenAddr == "" {
		c.ListenAddr = ":29330"
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 1 << 20
	}
	if c.RelayTimeoutSeconds <= 0 {
		c.RelayTimeoutSeconds = 10
	}
	if len(c.Logging.Writers) == 0 {
		c.Logging.Writers = []zeroconfig.WriterConfig{{
			Type:   zeroconfig.WriterTypeStderr,
			Format: zeroconfig.LogFormatPrettyColored,
		}}
	}
	return nil
}

// LoadConfig reads the YAML config at path, or starts from the embedded
// example when path is empty, then applies env overrides and defaults.
func LoadConfig(path string) (*Config, error) {
	data := []byte(ExampleConfig)
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.PostProcess(); err != nil {
		return nil, fmt.Errorf("failed to post-process config: %w", err)
	}
	return &cfg, nil
}
