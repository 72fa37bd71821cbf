// Package events fans decision events out to their consumers.
package events

import (
	"fmt"

	"github.com/asaskevich/EventBus"
	log "github.com/sirupsen/logrus"

	"ReplayLab/internal/model"
)

// TopicDecision carries every accepted model.DecisionEvent.
const TopicDecision = "decision"

// Bus is a per-symbol decision bus. Handlers run synchronously in subscription order, so every
// consumer sees the events of a symbol in bar order.
type Bus struct {
	bus    EventBus.Bus
	symbol string
}

// NewBus creates the bus of one symbol.
func NewBus(symbol string) *Bus {
	return &Bus{bus: EventBus.New(), symbol: symbol}
}

// Publish delivers ev to every subscriber before returning.
func (b *Bus) Publish(ev model.DecisionEvent) {
	b.bus.Publish(TopicDecision, ev)
}

// Subscribe registers fn for decision events.
func (b *Bus) Subscribe(name string, fn func(model.DecisionEvent)) error {
	if err := b.bus.Subscribe(TopicDecision, fn); err != nil {
		return fmt.Errorf("subscribe %s: %w", name, err)
	}
	log.WithFields(log.Fields{"symbol": b.symbol, "subscriber": name}).Debugf("Subscribed to topic %s", TopicDecision)
	return nil
}
