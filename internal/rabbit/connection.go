package rabbit

import (
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ErrClosed is returned by Channel after the manager has been closed.
var ErrClosed = errors.New("rabbit: connection manager is closed")

const dialTimeout = 10 * time.Second

// ConnectionManager owns the single long-lived AMQP connection shared by
// the publisher and the consumer. Construction never dials: the broker
// may still be starting when the process comes up, so the connection is
// established on first use and re-established after a fault.
type ConnectionManager struct {
	url    string
	logger *zap.Logger

	mu     sync.Mutex
	conn   *amqp.Connection
	closed bool
}

// NewConnectionManager returns a manager for the given AMQP URL without
// touching the network.
func NewConnectionManager(url string, logger *zap.Logger) *ConnectionManager {
	return &ConnectionManager{url: url, logger: logger}
}

// IsConnected reports whether a live connection is currently held.
func (m *ConnectionManager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn != nil && !m.conn.IsClosed()
}

// Channel returns a fresh channel over the shared connection, dialing
// the broker first if the connection is absent or has faulted. Safe for
// concurrent use; each caller gets its own channel.
func (m *ConnectionManager) Channel() (*amqp.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	if m.conn == nil || m.conn.IsClosed() {
		conn, err := amqp.DialConfig(m.url, amqp.Config{
			Dial: amqp.DefaultDial(dialTimeout),
		})
		if err != nil {
			return nil, fmt.Errorf("dial broker: %w", err)
		}
		m.conn = conn
		m.logger.Info("connected to broker")
	}

	ch, err := m.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return ch, nil
}

// Close releases the underlying connection. It is idempotent; the
// manager refuses new channels afterwards.
func (m *ConnectionManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	if m.conn == nil || m.conn.IsClosed() {
		return nil
	}
	if err := m.conn.Close(); err != nil {
		return fmt.Errorf("close broker connection: %w", err)
	}
	return nil
}
