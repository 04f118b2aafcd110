package websocket

import (
	"encoding/json"
	"log/slog"

	"github.com/pscheid92/hintd/internal/domain"
)

// Publisher implements domain.EventPublisher by broadcasting JSON-encoded
// hint events through the hub. Publishing never blocks the coordinator.
type Publisher struct {
	hub *Hub
}

func NewPublisher(hub *Hub) *Publisher {
	return &Publisher{hub: hub}
}

func (p *Publisher) PublishHintEvent(event domain.HintEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Warn("Failed to encode hint event", "error", err)
		return
	}
	p.hub.Broadcast(data)
}

var _ domain.EventPublisher = (*Publisher)(nil)
