package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu  sync.Mutex
	got []*Envelope
}

func (r *recorder) handle(ctx context.Context, ev *Envelope) {
	r.mu.Lock()
	r.got = append(r.got, ev)
	r.mu.Unlock()
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

func TestMemoryBus_DeliversInOrder(t *testing.T) {
	bus := NewMemoryBus(16)
	defer bus.Close()

	rec := &recorder{}
	_, err := bus.Subscribe(context.Background(), Filter{}, rec.handle)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		ev := NewEnvelope("test", WorldUpdatedEvent, []byte{byte(i)})
		require.NoError(t, bus.Publish(context.Background(), ev))
	}

	require.Eventually(t, func() bool { return rec.len() == 5 }, time.Second, 5*time.Millisecond)
	for i, ev := range rec.got {
		assert.Equal(t, []byte{byte(i)}, ev.Payload)
	}
	assert.Equal(t, uint64(5), bus.Metrics().Published)
}

func TestMemoryBus_Filter(t *testing.T) {
	bus := NewMemoryBus(16)

	worldOnly := &recorder{}
	other := &recorder{}
	_, err := bus.Subscribe(context.Background(), Filter{Types: []string{WorldUpdatedEvent}}, worldOnly.handle)
	require.NoError(t, err)
	_, err = bus.Subscribe(context.Background(), Filter{Sources: []string{"elsewhere"}}, other.handle)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), NewEnvelope("core", WorldUpdatedEvent, nil)))
	require.NoError(t, bus.Publish(context.Background(), NewEnvelope("core", "ChunkLoaded", nil)))

	// Close дожидается доставки всех принятых событий
	require.NoError(t, bus.Close())
	assert.Equal(t, 1, worldOnly.len())
	assert.Equal(t, 0, other.len())
}

func TestMemoryBus_Unsubscribe(t *testing.T) {
	bus := NewMemoryBus(16)

	rec := &recorder{}
	sub, err := bus.Subscribe(context.Background(), Filter{}, rec.handle)
	require.NoError(t, err)
	sub.Unsubscribe()
	sub.Unsubscribe()

	require.NoError(t, bus.Publish(context.Background(), NewEnvelope("core", WorldUpdatedEvent, nil)))
	require.NoError(t, bus.Close())
	assert.Equal(t, 0, rec.len())
}

func TestMemoryBus_Closed(t *testing.T) {
	bus := NewMemoryBus(1)
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	err := bus.Publish(context.Background(), NewEnvelope("core", WorldUpdatedEvent, nil))
	assert.ErrorIs(t, err, ErrBusClosed)
}

func TestMemoryBus_DropsLowPriorityWhenFull(t *testing.T) {
	bus := NewMemoryBus(1)
	defer bus.Close()

	block := make(chan struct{})
	_, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		<-block
	})
	require.NoError(t, err)

	// Первое событие занимает обработчик, второе - буфер
	require.NoError(t, bus.Publish(context.Background(), NewEnvelope("core", "A", nil)))
	require.Eventually(t, func() bool { return bus.Metrics().InFlight == 0 }, time.Second, time.Millisecond)
	require.NoError(t, bus.Publish(context.Background(), NewEnvelope("core", "B", nil)))

	low := NewEnvelope("core", "C", nil)
	low.Priority = 1
	require.NoError(t, bus.Publish(context.Background(), low))
	assert.Equal(t, uint64(1), bus.Metrics().Dropped)

	high := NewEnvelope("core", "D", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bus.Publish(ctx, high), context.DeadlineExceeded)

	close(block)
}

func TestMetricsExporter_Register(t *testing.T) {
	bus := NewMemoryBus(4)
	defer bus.Close()

	reg := prometheus.NewRegistry()
	me, err := NewMetricsExporter(bus, reg)
	require.NoError(t, err)
	me.Start(5 * time.Millisecond)
	defer me.Stop()

	require.NoError(t, bus.Publish(context.Background(), NewEnvelope("core", WorldUpdatedEvent, nil)))

	require.Eventually(t, func() bool {
		families, err := reg.Gather()
		if err != nil {
			return false
		}
		for _, mf := range families {
			if mf.GetName() == "eventbus_messages_published_total" {
				return mf.GetMetric()[0].GetCounter().GetValue() == 1
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	// повторная регистрация в том же реестре отклоняется
	_, err = NewMetricsExporter(bus, reg)
	assert.Error(t, err)
}
