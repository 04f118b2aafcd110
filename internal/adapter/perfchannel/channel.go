// Package perfchannel carries CPU/GPU load hints to the platform power
// HAL daemon over a unix socket. The daemon restarts independently of
// this process, so sends go through a circuit breaker: once the socket
// looks dead the breaker trips and hints are dropped cheaply until the
// daemon is reachable again.
package perfchannel

import (
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/pscheid92/hintd/internal/domain"
	"github.com/pscheid92/hintd/internal/metrics"
	"github.com/sony/gobreaker"
)

const (
	writeTimeout        = 100 * time.Millisecond
	breakerOpenTimeout  = 10 * time.Second
	consecutiveFailures = 5
)

// Channel implements domain.LoadHintChannel.
type Channel struct {
	mu   sync.Mutex
	conn net.Conn
	cb   *gobreaker.CircuitBreaker
}

// Dial connects to the power HAL hint socket.
func Dial(socketPath string) (*Channel, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("dial perf hal socket: %w", err)
	}
	return New(conn), nil
}

// New wraps an established connection. Used by Dial and by tests.
func New(conn net.Conn) *Channel {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "perfchannel",
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= consecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Load-hint channel breaker state changed", "from", from.String(), "to", to.String())
			metrics.ChannelBreakerStateChanges.WithLabelValues(to.String()).Inc()
			metrics.ChannelBreakerState.Set(stateToFloat(to))
		},
	})
	return &Channel{conn: conn, cb: cb}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// SendHint writes one hint line. Returns gobreaker.ErrOpenState while the
// breaker is tripped.
func (c *Channel) SendHint(hint domain.LoadHint) error {
	_, err := c.cb.Execute(func() (any, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if _, err := c.conn.Write([]byte(hint.String() + "\n")); err != nil {
			return nil, fmt.Errorf("write load hint: %w", err)
		}
		return nil, nil
	})
	return err
}

// State exposes the breaker state for health checks.
func (c *Channel) State() gobreaker.State {
	return c.cb.State()
}

func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

var _ domain.LoadHintChannel = (*Channel)(nil)
