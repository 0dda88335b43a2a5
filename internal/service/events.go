package service

import (
	"sync"
	"time"

	"burgerpos/internal/model"
)

// ChangeSink receives events after the state change they describe is visible
// to readers. Implementations must not block.
type ChangeSink interface {
	Changed(ev model.Event)
}

// EventBus fans events out to every subscribed sink. A nil *EventBus drops events.
type EventBus struct {
	mu    sync.RWMutex
	sinks []ChangeSink
	now   func() time.Time
}

func NewEventBus() *EventBus {
	return &EventBus{now: time.Now}
}

func (b *EventBus) Subscribe(s ChangeSink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, s)
}

func (b *EventBus) Publish(typ string, data any) {
	if b == nil {
		return
	}
	b.publish(model.Event{Type: typ, At: b.now(), Data: data})
}

func (b *EventBus) publish(ev model.Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	sinks := append([]ChangeSink(nil), b.sinks...)
	b.mu.RUnlock()
	for _, s := range sinks {
		s.Changed(ev)
	}
}
