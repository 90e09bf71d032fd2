package main

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fystack/rooch-wallet-plugin/internal/plugin"
	"github.com/fystack/rooch-wallet-plugin/pkg/common/config"
)

var errNoReply = errors.New("no transfer details supplied")

// cliRuntime answers settings from the loaded config and object generation
// from the command line flags.
type cliRuntime struct {
	settings map[string]string
	agent    string
	reply    []byte
}

var _ plugin.Runtime = (*cliRuntime)(nil)

func newCLIRuntime(cfg *config.Config) *cliRuntime {
	return &cliRuntime{settings: cfg.Settings(), agent: cfg.Agent.Name}
}

func (r *cliRuntime) GetSetting(name string) string { return r.settings[name] }

func (r *cliRuntime) AgentName() string { return r.agent }

func (r *cliRuntime) GenerateObject(context.Context, string, plugin.State) ([]byte, error) {
	if len(r.reply) == 0 {
		return nil, errNoReply
	}
	return r.reply, nil
}

type transferFlags struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
	Symbol    string `json:"symbol,omitempty"`
	Index     *int   `json:"index,omitempty"`
}

// transferReply encodes the flags as the object the transfer action expects.
// An index of 0 means unset.
func transferReply(to, amount, symbol string, index int) ([]byte, error) {
	flags := transferFlags{Recipient: to, Amount: amount, Symbol: symbol}
	if index != 0 {
		flags.Index = &index
	}
	return json.Marshal(flags)
}
