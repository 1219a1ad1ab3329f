package storage

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/annel0/worldcore/internal/config"
	"github.com/annel0/worldcore/internal/eventbus"
	"github.com/annel0/worldcore/internal/logging"
)

func TestWorldUpdate_Validate(t *testing.T) {
	assert.ErrorIs(t, WorldUpdate{Time: new(float64)}.Validate(), ErrMissingWorld)
	assert.ErrorIs(t, WorldUpdate{WorldID: "w"}.Validate(), ErrEmptyUpdate)
	assert.NoError(t, TimeUpdate("w", 0.5).Validate())

	assert.Equal(t, "time", TimeUpdate("w", 1).Kind())
	assert.Equal(t, "days", DaysUpdate("w", 2).Kind())
	assert.Equal(t, "world=w days=2", DaysUpdate("w", 2).String())
}

// partialMerge проверяет, что частичные мутации не затирают друг друга
func partialMerge(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.Load(ctx, "w1")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.ApplyUpdate(ctx, TimeUpdate("w1", 0.25)))
	require.NoError(t, s.ApplyUpdate(ctx, DaysUpdate("w1", 3)))
	require.NoError(t, s.ApplyUpdate(ctx, TimeUpdate("w1", 0.75)))

	rec, err := s.Load(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, "w1", rec.WorldID)
	assert.InDelta(t, 0.75, rec.Time, 1e-9)
	assert.Equal(t, 3, rec.Days)
	assert.False(t, rec.UpdatedAt.IsZero())

	assert.ErrorIs(t, s.ApplyUpdate(ctx, WorldUpdate{WorldID: "w1"}), ErrEmptyUpdate)
}

func TestMemoryStore_PartialMerge(t *testing.T) {
	s := NewMemoryStore()
	partialMerge(t, s)

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.ApplyUpdate(context.Background(), TimeUpdate("w1", 1)), ErrClosed)
}

func TestWorldStorage_PartialMerge(t *testing.T) {
	dir := t.TempDir()
	s, err := NewWorldStorage(dir)
	require.NoError(t, err)
	partialMerge(t, s)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	// данные переживают переоткрытие
	s, err = NewWorldStorage(dir)
	require.NoError(t, err)
	defer s.Close()

	rec, err := s.Load(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Days)
}

func TestBusStore_PublishesWorldUpdated(t *testing.T) {
	bus := eventbus.NewMemoryBus(8)

	got := make(chan WorldUpdate, 4)
	_, err := bus.Subscribe(context.Background(), eventbus.Filter{Types: []string{eventbus.WorldUpdatedEvent}},
		func(ctx context.Context, ev *eventbus.Envelope) {
			u, err := DecodeWorldUpdate(ev)
			if err == nil {
				got <- u
			}
		})
	require.NoError(t, err)

	s := NewBusStore(bus, "")
	partialMerge(t, s)
	require.NoError(t, bus.Close())

	require.Len(t, got, 3)
	first := <-got
	assert.Equal(t, "w1", first.WorldID)
	require.NotNil(t, first.Time)
	assert.Nil(t, first.Days)
	assert.InDelta(t, 0.25, *first.Time, 1e-9)
}

func TestDecodeWorldUpdate_WrongType(t *testing.T) {
	_, err := DecodeWorldUpdate(eventbus.NewEnvelope("x", "ChunkLoaded", []byte(`{}`)))
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.StorageConfig{Driver: "memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, config.StorageConfig{Driver: "badger", BadgerPath: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &WorldStorage{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, config.StorageConfig{Driver: "eventbus"}, nil)
	assert.Error(t, err)

	_, err = Open(ctx, config.StorageConfig{Driver: "floppy"}, nil)
	assert.Error(t, err)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) ApplyUpdate(ctx context.Context, u WorldUpdate) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockStore) Load(ctx context.Context, worldID string) (WorldRecord, error) {
	args := m.Called(ctx, worldID)
	return args.Get(0).(WorldRecord), args.Error(1)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}

func TestAsyncWriter_WritesInOrder(t *testing.T) {
	store := &mockStore{}
	var seen []WorldUpdate
	store.On("ApplyUpdate", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		seen = append(seen, args.Get(1).(WorldUpdate))
	})
	store.On("Close").Return(nil).Once()

	w := NewAsyncWriter(store, "mock", 8, time.Second)
	require.NoError(t, w.UpdateWorld(context.Background(), TimeUpdate("w", 0.1)))
	require.NoError(t, w.UpdateWorld(context.Background(), DaysUpdate("w", 1)))

	// Close дописывает очередь
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	require.Len(t, seen, 2)
	assert.Equal(t, "time", seen[0].Kind())
	assert.Equal(t, "days", seen[1].Kind())
	store.AssertExpectations(t)

	assert.ErrorIs(t, w.UpdateWorld(context.Background(), TimeUpdate("w", 0.2)), ErrClosed)
}

func TestAsyncWriter_FailureIsNotRetried(t *testing.T) {
	store := &mockStore{}
	store.On("ApplyUpdate", mock.Anything, mock.Anything).Return(errors.New("boom")).Once()
	store.On("Close").Return(nil)

	w := NewAsyncWriter(store, "mock", 8, time.Second)
	require.NoError(t, w.UpdateWorld(context.Background(), TimeUpdate("w", 0.1)))
	require.NoError(t, w.Close())

	store.AssertNumberOfCalls(t, "ApplyUpdate", 1)
}

func TestAsyncWriter_LogsToComponentLogger(t *testing.T) {
	store := &mockStore{}
	store.On("ApplyUpdate", mock.Anything, mock.Anything).Return(errors.New("disk gone")).Once()
	store.On("Close").Return(nil)

	var buf bytes.Buffer
	w := NewAsyncWriter(store, "mock", 8, time.Second, WithLogger(logging.NewWriterLogger("storage", &buf, logging.DEBUG)))
	require.NoError(t, w.UpdateWorld(context.Background(), DaysUpdate("w", 3)))
	require.NoError(t, w.Close())

	assert.Contains(t, buf.String(), "[WARN] [storage]")
	assert.Contains(t, buf.String(), "disk gone")
}

func TestAsyncWriter_QueueFull(t *testing.T) {
	release := make(chan struct{})
	store := &mockStore{}
	store.On("ApplyUpdate", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		<-release
	})
	store.On("Close").Return(nil)

	w := NewAsyncWriter(store, "mock", 1, time.Second)

	// первая мутация уходит в запись и блокируется, вторая занимает очередь
	require.NoError(t, w.UpdateWorld(context.Background(), TimeUpdate("w", 0.1)))
	require.Eventually(t, func() bool { return len(w.queue) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, w.UpdateWorld(context.Background(), TimeUpdate("w", 0.2)))

	assert.ErrorIs(t, w.UpdateWorld(context.Background(), TimeUpdate("w", 0.3)), ErrQueueFull)
	assert.ErrorIs(t, w.UpdateWorld(context.Background(), WorldUpdate{WorldID: "w"}), ErrEmptyUpdate)

	close(release)
	require.NoError(t, w.Close())
}
