package infra

import (
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
)

// MaxMsgSize caps a single published payload.
var MaxMsgSize = 10 * 1024

var ErrMessageTooLarge = errors.New("message exceeds max size")

// Publisher sends fire-and-forget messages to a subject.
type Publisher interface {
	Publish(subject string, message []byte) error
	Close()
}

type natsPublisher struct {
	nc *nats.Conn
}

func NewNATSPublisher(nc *nats.Conn) Publisher {
	return &natsPublisher{nc: nc}
}

func (p *natsPublisher) Publish(subject string, message []byte) error {
	if len(message) > MaxMsgSize {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(message))
	}
	if err := p.nc.Publish(subject, message); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	return nil
}

// Close flushes pending messages before closing the connection.
func (p *natsPublisher) Close() {
	if p.nc == nil {
		return
	}
	_ = p.nc.Flush()
	p.nc.Close()
}
