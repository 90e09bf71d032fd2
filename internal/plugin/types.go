package plugin

import (
	"context"

	"github.com/fystack/rooch-wallet-plugin/internal/keys"
)

// Runtime is the agent host the plugin runs inside.
type Runtime interface {
	keys.Settings
	AgentName() string
	// GenerateObject fills template from state, asks the model for a JSON
	// object and returns it undecoded.
	GenerateObject(ctx context.Context, template string, state State) ([]byte, error)
}

// State carries conversation values substituted into prompt templates.
type State map[string]any

type Memory struct {
	UserID  string  `json:"userId,omitempty"`
	AgentID string  `json:"agentId,omitempty"`
	RoomID  string  `json:"roomId,omitempty"`
	Content Content `json:"content"`
}

type Content struct {
	Text    string         `json:"text"`
	Action  string         `json:"action,omitempty"`
	Content map[string]any `json:"content,omitempty"`
}

// HandlerCallback delivers a message produced by an action back to the host.
type HandlerCallback func(ctx context.Context, content Content) error

type Provider interface {
	Name() string
	Get(ctx context.Context, runtime Runtime, message *Memory, state State) (string, error)
}

type ActionExample struct {
	User    string  `json:"user"`
	Content Content `json:"content"`
}

type Action struct {
	Name        string
	Similes     []string
	Description string
	Examples    [][]ActionExample

	Validate func(ctx context.Context, runtime Runtime, message *Memory) bool
	Handler  func(ctx context.Context, runtime Runtime, message *Memory, state State, callback HandlerCallback) (bool, error)
}

type Plugin struct {
	Name        string
	Description string
	Actions     []Action
	Providers   []Provider
}
