package events

import (
	"encoding/json"
	"time"

	"github.com/fystack/rooch-wallet-plugin/pkg/infra"
)

const (
	ActionSubjectSuffix = ".action"
	ErrorSubjectSuffix  = ".error"
)

// ActionEvent mirrors one action callback for downstream consumers.
type ActionEvent struct {
	Type      string         `json:"type"`
	Agent     string         `json:"agent"`
	Action    string         `json:"action"`
	Text      string         `json:"text"`
	Content   map[string]any `json:"content,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

type Emitter interface {
	EmitAction(agent, action, text string, content map[string]any) error
	EmitError(agent, action string, err error) error
	Emit(subject string, event ActionEvent) error
	Close()
}

type emitter struct {
	publisher     infra.Publisher
	subjectPrefix string
	now           func() time.Time
}

func NewEmitter(publisher infra.Publisher, subjectPrefix string) Emitter {
	return &emitter{
		publisher:     publisher,
		subjectPrefix: subjectPrefix,
		now:           time.Now,
	}
}

func (e *emitter) EmitAction(agent, action, text string, content map[string]any) error {
	eventType := "success"
	if _, failed := content["error"]; failed {
		eventType = "failure"
	}
	return e.Emit(e.subjectPrefix+ActionSubjectSuffix, ActionEvent{
		Type:      eventType,
		Agent:     agent,
		Action:    action,
		Text:      text,
		Content:   content,
		Timestamp: e.now().UTC().Unix(),
	})
}

func (e *emitter) EmitError(agent, action string, err error) error {
	event := ActionEvent{
		Type:      "error",
		Agent:     agent,
		Action:    action,
		Timestamp: e.now().UTC().Unix(),
	}
	if err != nil {
		event.Text = err.Error()
	}
	return e.Emit(e.subjectPrefix+ErrorSubjectSuffix, event)
}

func (e *emitter) Emit(subject string, event ActionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return e.publisher.Publish(subject, data)
}

func (e *emitter) Close() {
	if e.publisher != nil {
		e.publisher.Close()
	}
}
