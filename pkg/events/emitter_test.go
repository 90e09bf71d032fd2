package events

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	messages []published
	err      error
	closed   bool
}

func (p *fakePublisher) Publish(subject string, message []byte) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, published{subject: subject, data: message})
	return nil
}

func (p *fakePublisher) Close() { p.closed = true }

func newTestEmitter(pub *fakePublisher) *emitter {
	e := NewEmitter(pub, "rooch.agent").(*emitter)
	e.now = func() time.Time { return time.Unix(1700000000, 0) }
	return e
}

func decode(t *testing.T, data []byte) ActionEvent {
	t.Helper()
	var ev ActionEvent
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestEmitAction(t *testing.T) {
	pub := &fakePublisher{}
	e := newTestEmitter(pub)

	require.NoError(t, e.EmitAction("agent", "SEND_COIN", "Successfully transferred 1 RGAS to 0x1", map[string]any{
		"success": true,
		"txOrder": "42",
	}))
	require.NoError(t, e.EmitAction("agent", "SEND_COIN", "Error transferring coins: boom", map[string]any{
		"error": "boom",
	}))

	require.Len(t, pub.messages, 2)
	assert.Equal(t, "rooch.agent.action", pub.messages[0].subject)

	ok := decode(t, pub.messages[0].data)
	assert.Equal(t, "success", ok.Type)
	assert.Equal(t, "agent", ok.Agent)
	assert.Equal(t, "SEND_COIN", ok.Action)
	assert.Equal(t, "42", ok.Content["txOrder"])
	assert.Equal(t, int64(1700000000), ok.Timestamp)

	assert.Equal(t, "failure", decode(t, pub.messages[1].data).Type)
}

func TestEmitError(t *testing.T) {
	pub := &fakePublisher{}
	e := newTestEmitter(pub)

	require.NoError(t, e.EmitError("agent", "SEND_COIN", errors.New("callback failed")))
	require.Len(t, pub.messages, 1)
	assert.Equal(t, "rooch.agent.error", pub.messages[0].subject)

	ev := decode(t, pub.messages[0].data)
	assert.Equal(t, "error", ev.Type)
	assert.Equal(t, "callback failed", ev.Text)
}

func TestEmit_PublisherError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("disconnected")}
	e := newTestEmitter(pub)

	err := e.EmitAction("agent", "SEND_COIN", "text", nil)
	assert.EqualError(t, err, "disconnected")
}

func TestClose(t *testing.T) {
	pub := &fakePublisher{}
	NewEmitter(pub, "x").Close()
	assert.True(t, pub.closed)
}
