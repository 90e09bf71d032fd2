package config

import (
	"fmt"
	"time"

	"github.com/fystack/rooch-wallet-plugin/pkg/common/constant"
	"github.com/fystack/rooch-wallet-plugin/pkg/common/enum"
)

const (
	DefaultAgentName     = "Agent"
	DefaultTimeout       = 30 * time.Second
	DefaultSubjectPrefix = "rooch.agent"
)

// Preset returns the network defaults merged under user supplied values.
func Preset(network enum.NetworkType) (RoochConfig, error) {
	preset := RoochConfig{
		Timeout:      DefaultTimeout,
		MaxGasAmount: constant.DefaultMaxGasAmount,
	}
	switch network {
	case enum.NetworkMainnet:
		preset.RPCURL = constant.MainnetRPCURL
	case enum.NetworkTestnet:
		preset.RPCURL = constant.TestnetRPCURL
	default:
		return preset, fmt.Errorf("unsupported rooch network %q", network)
	}
	return preset, nil
}

// Settings exposes the configuration under the runtime setting names.
func (c *Config) Settings() map[string]string {
	return map[string]string{
		constant.SettingPrivateKey: c.Rooch.PrivateKey,
		constant.SettingNetwork:    string(c.Rooch.Network),
		constant.SettingRPCURL:     c.Rooch.RPCURL,
	}
}

// NodeURLs lists the primary RPC url followed by the fallbacks.
func (r RoochConfig) NodeURLs() []string {
	return append([]string{r.RPCURL}, r.FallbackURLs...)
}
