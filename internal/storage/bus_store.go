package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/annel0/worldcore/internal/eventbus"
)

// BusStore публикует каждую мутацию как событие WorldUpdated и держит
// локальное зеркало в памяти, чтобы Load работал без обращения к шине.
type BusStore struct {
	bus    eventbus.EventBus
	source string
	mirror *MemoryStore
}

// NewBusStore создаёт хранилище поверх шины событий
func NewBusStore(bus eventbus.EventBus, source string) *BusStore {
	if source == "" {
		source = "worldcore"
	}
	return &BusStore{bus: bus, source: source, mirror: NewMemoryStore()}
}

func (b *BusStore) ApplyUpdate(ctx context.Context, u WorldUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal world update: %w", err)
	}

	ev := eventbus.NewEnvelope(b.source, eventbus.WorldUpdatedEvent, payload)
	ev.CorrelationID = u.WorldID
	ev.Metadata["fact"] = u.Kind()

	if err := b.bus.Publish(ctx, ev); err != nil {
		return fmt.Errorf("publish world update: %w", err)
	}
	return b.mirror.ApplyUpdate(ctx, u)
}

func (b *BusStore) Load(ctx context.Context, worldID string) (WorldRecord, error) {
	return b.mirror.Load(ctx, worldID)
}

// Close закрывает зеркало. Шиной владеет вызывающий.
func (b *BusStore) Close() error {
	return b.mirror.Close()
}

// DecodeWorldUpdate извлекает мутацию из события WorldUpdated
func DecodeWorldUpdate(ev *eventbus.Envelope) (WorldUpdate, error) {
	var u WorldUpdate
	if ev.EventType != eventbus.WorldUpdatedEvent {
		return u, fmt.Errorf("unexpected event type %q", ev.EventType)
	}
	if err := json.Unmarshal(ev.Payload, &u); err != nil {
		return u, fmt.Errorf("decode world update: %w", err)
	}
	return u, u.Validate()
}
