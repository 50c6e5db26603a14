package server

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Rohith-AI-HUB/S.P.E.A.R-Backend/internal/events"
)

// Publisher sends a wrapped envelope to an external bus. *mq.Broker
// satisfies it.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// Audit fans orchestration events out to the WebSocket hub and, when a
// broker is configured, onto the AMQP exchange. Audit failures never fail
// the request they describe.
type Audit struct {
	hub    *Hub
	broker Publisher
}

// NewAudit wires the activity feed. broker may be nil, which degrades to
// hub-only delivery.
func NewAudit(hub *Hub, broker Publisher) *Audit {
	return &Audit{hub: hub, broker: broker}
}

func (a *Audit) Emit(ctx context.Context, routingKey string, payload any) {
	b, err := events.Wrap(routingKey, payload)
	if err != nil {
		log.Warn().Err(err).Str("key", routingKey).Msg("audit encode failed")
		return
	}
	a.hub.Broadcast(b)
	if a.broker != nil {
		if err := a.broker.Publish(ctx, routingKey, b); err != nil {
			log.Warn().Err(err).Str("key", routingKey).Msg("audit publish failed")
		}
	}
}
