package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/imdario/mergo"

	"github.com/fystack/rooch-wallet-plugin/pkg/common/constant"
	"github.com/fystack/rooch-wallet-plugin/pkg/common/enum"
	"github.com/fystack/rooch-wallet-plugin/pkg/common/logger"
)

var validate = validator.New()

// Load reads the YAML file at path, applies environment overrides and
// network presets, then validates the result. A missing file is not an
// error: the plugin can run from environment variables alone.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Debug("Config file not found, using environment only", "path", path)
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("struct validation failed: %w", err)
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(constant.SettingPrivateKey); v != "" {
		cfg.Rooch.PrivateKey = v
	}
	if v := os.Getenv(constant.SettingNetwork); v != "" {
		cfg.Rooch.Network = enum.NetworkType(strings.ToLower(strings.TrimSpace(v)))
	}
	if v := os.Getenv(constant.SettingRPCURL); v != "" {
		cfg.Rooch.RPCURL = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.Nats.URL = v
	}
}

func (c *Config) applyDefaults() error {
	if c.Environment == "" {
		c.Environment = constant.EnvDevelopment
	}
	if c.Agent.Name == "" {
		c.Agent.Name = DefaultAgentName
	}
	if c.Nats.SubjectPrefix == "" {
		c.Nats.SubjectPrefix = DefaultSubjectPrefix
	}

	// network is validated below, only merge presets for known networks
	if c.Rooch.Network.IsValid() {
		preset, err := Preset(c.Rooch.Network)
		if err != nil {
			return err
		}
		if err := mergo.Merge(&c.Rooch, preset); err != nil {
			return fmt.Errorf("merge %s preset: %w", c.Rooch.Network, err)
		}
	}

	c.Rooch.RPCURL = substituteEnvVars(c.Rooch.RPCURL)
	for i, u := range c.Rooch.FallbackURLs {
		c.Rooch.FallbackURLs[i] = substituteEnvVars(u)
	}
	for k, v := range c.Rooch.Headers {
		c.Rooch.Headers[k] = substituteEnvVars(v)
	}
	return nil
}
