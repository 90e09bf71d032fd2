package config

import (
	"time"

	"github.com/fystack/rooch-wallet-plugin/pkg/common/enum"
)

type Config struct {
	Environment string      `yaml:"environment" validate:"required,oneof=production development"`
	LogLevel    string      `yaml:"log_level"   validate:"omitempty,oneof=debug info warn error"`
	Agent       AgentConfig `yaml:"agent"`
	Rooch       RoochConfig `yaml:"rooch"       validate:"required"`
	Nats        NatsConfig  `yaml:"nats"`
}

type AgentConfig struct {
	Name string `yaml:"name" validate:"required"`
}

type RoochConfig struct {
	Network      enum.NetworkType  `yaml:"network"        validate:"required,oneof=mainnet testnet"`
	PrivateKey   string            `yaml:"private_key"`
	RPCURL       string            `yaml:"rpc_url"        validate:"required,url"`
	FallbackURLs []string          `yaml:"fallback_urls"  validate:"dive,url"`
	Timeout      time.Duration     `yaml:"timeout"        validate:"required"`
	MaxGasAmount uint64            `yaml:"max_gas_amount" validate:"required,gt=0"`
	Headers      map[string]string `yaml:"headers,omitempty"`
	Throttle     Throttle          `yaml:"throttle"`
}

type Throttle struct {
	RPS   int `yaml:"rps"   validate:"min=0"`
	Burst int `yaml:"burst" validate:"min=0"`
}

type NatsConfig struct {
	URL           string        `yaml:"url" validate:"omitempty,url"`
	SubjectPrefix string        `yaml:"subject_prefix"`
	Username      string        `yaml:"username"`
	Password      string        `yaml:"password"`
	TLS           NatsTLSConfig `yaml:"tls"`
}

type NatsTLSConfig struct {
	ClientCert string `yaml:"client_cert"`
	ClientKey  string `yaml:"client_key"`
	CACert     string `yaml:"ca_cert"`
}

// Enabled reports whether callbacks should be published to NATS.
func (n NatsConfig) Enabled() bool {
	return n.URL != ""
}
