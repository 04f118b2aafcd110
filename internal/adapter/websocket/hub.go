// Package websocket streams hint transition events to operational
// observers over a single broadcast topic.
package websocket

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pscheid92/hintd/internal/metrics"
)

const clientSendBuffer = 16

// --- Command types ---

type hubCmd interface{ hubCmd() }

type cmdRegister struct {
	conn  *websocket.Conn
	errCh chan error
}

func (cmdRegister) hubCmd() {}

type cmdUnregister struct {
	conn *websocket.Conn
}

func (cmdUnregister) hubCmd() {}

type cmdBroadcast struct {
	data []byte
}

func (cmdBroadcast) hubCmd() {}

type cmdClientCount struct {
	replyCh chan int
}

func (cmdClientCount) hubCmd() {}

type cmdStop struct{}

func (cmdStop) hubCmd() {}

// --- Per-connection writer ---

type clientWriter struct {
	conn   *websocket.Conn
	sendCh chan []byte
	done   chan struct{}
}

func newClientWriter(conn *websocket.Conn) *clientWriter {
	cw := &clientWriter{
		conn:   conn,
		sendCh: make(chan []byte, clientSendBuffer),
		done:   make(chan struct{}),
	}
	go cw.run()
	return cw
}

func (cw *clientWriter) run() {
	for {
		select {
		case msg, ok := <-cw.sendCh:
			if !ok {
				return
			}
			cw.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := cw.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-cw.done:
			return
		}
	}
}

func (cw *clientWriter) stop() {
	close(cw.done)
	cw.conn.Close()
}

// --- Hub ---

// Hub fans hint events out to connected observers. All state lives in the
// run goroutine; public methods communicate over the command channel, so
// the Hub is safe for concurrent use.
type Hub struct {
	cmdCh      chan hubCmd
	stopped    chan struct{}
	clients    map[*websocket.Conn]*clientWriter
	maxClients int
}

func NewHub(maxClients int) *Hub {
	hub := &Hub{
		cmdCh:      make(chan hubCmd, 256),
		stopped:    make(chan struct{}),
		clients:    make(map[*websocket.Conn]*clientWriter),
		maxClients: maxClients,
	}
	go hub.run()
	return hub
}

func (h *Hub) run() {
	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case cmdRegister:
			h.handleRegister(c)
		case cmdUnregister:
			h.handleUnregister(c.conn)
		case cmdBroadcast:
			h.handleBroadcast(c.data)
		case cmdClientCount:
			c.replyCh <- len(h.clients)
		case cmdStop:
			h.handleStop()
			return
		}
	}
}

func (h *Hub) handleRegister(c cmdRegister) {
	if len(h.clients) >= h.maxClients {
		slog.Warn("Rejecting event client: max clients reached", "max", h.maxClients)
		c.conn.Close()
		c.errCh <- fmt.Errorf("max event clients (%d) reached", h.maxClients)
		return
	}
	h.clients[c.conn] = newClientWriter(c.conn)
	metrics.EventClients.Set(float64(len(h.clients)))
	slog.Debug("Event client registered", "total", len(h.clients))
	c.errCh <- nil
}

func (h *Hub) handleUnregister(conn *websocket.Conn) {
	cw, ok := h.clients[conn]
	if !ok {
		return
	}
	cw.stop()
	delete(h.clients, conn)
	metrics.EventClients.Set(float64(len(h.clients)))
}

func (h *Hub) handleBroadcast(data []byte) {
	for conn, cw := range h.clients {
		select {
		case cw.sendCh <- data:
		default:
			// A full buffer means the observer stopped reading; evict it
			// rather than stall the stream for everyone else.
			slog.Warn("Evicting slow event client")
			metrics.EventClientsEvicted.Inc()
			cw.stop()
			delete(h.clients, conn)
		}
	}
	metrics.EventClients.Set(float64(len(h.clients)))
}

func (h *Hub) handleStop() {
	for conn, cw := range h.clients {
		cw.stop()
		delete(h.clients, conn)
	}
	metrics.EventClients.Set(0)
	close(h.stopped)
}

// Register adds a connection to the broadcast set. The hub owns the
// connection from here on and closes it on eviction or Stop.
func (h *Hub) Register(conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	select {
	case h.cmdCh <- cmdRegister{conn: conn, errCh: errCh}:
		// The hub may stop before it drains the queued command.
		select {
		case err := <-errCh:
			return err
		case <-h.stopped:
			conn.Close()
			return fmt.Errorf("hub stopped")
		}
	case <-h.stopped:
		conn.Close()
		return fmt.Errorf("hub stopped")
	}
}

// Unregister removes and closes a connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	select {
	case h.cmdCh <- cmdUnregister{conn: conn}:
	case <-h.stopped:
	}
}

// Broadcast queues data for every connected client. It never blocks: if
// the hub queue is full the event is dropped and counted.
func (h *Hub) Broadcast(data []byte) {
	select {
	case h.cmdCh <- cmdBroadcast{data: data}:
	case <-h.stopped:
	default:
		metrics.EventsDropped.Inc()
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	replyCh := make(chan int, 1)
	select {
	case h.cmdCh <- cmdClientCount{replyCh: replyCh}:
		select {
		case n := <-replyCh:
			return n
		case <-h.stopped:
			return 0
		}
	case <-h.stopped:
		return 0
	}
}

// Stop disconnects all clients and shuts the hub down.
func (h *Hub) Stop() {
	select {
	case h.cmdCh <- cmdStop{}:
		<-h.stopped
	case <-h.stopped:
	}
}
