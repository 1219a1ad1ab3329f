package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/annel0/worldcore/internal/logging"
	"github.com/annel0/worldcore/internal/observability"
)

// AsyncWriter принимает мутации мира без блокировки вызывающего и
// записывает их в Store из фоновой горутины. Повторов нет: неудачная
// запись логируется и учитывается в метриках.
type AsyncWriter struct {
	store   Store
	driver  string
	timeout time.Duration
	log     *logging.Logger

	queue chan WorldUpdate
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// WriterOption настраивает AsyncWriter
type WriterOption func(*AsyncWriter)

// WithLogger направляет сообщения о записи в логгер компонента
// вместо логгера по умолчанию.
func WithLogger(l *logging.Logger) WriterOption {
	return func(w *AsyncWriter) { w.log = l }
}

// NewAsyncWriter запускает фоновую запись в store
func NewAsyncWriter(store Store, driver string, queueSize int, timeout time.Duration, opts ...WriterOption) *AsyncWriter {
	if queueSize <= 0 {
		queueSize = 64
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	w := &AsyncWriter{
		store:   store,
		driver:  driver,
		timeout: timeout,
		queue:   make(chan WorldUpdate, queueSize),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.wg.Add(1)
	go w.loop()
	return w
}

// UpdateWorld ставит мутацию в очередь. Возвращает ErrQueueFull, если
// очередь заполнена, и ErrClosed после Close.
func (w *AsyncWriter) UpdateWorld(ctx context.Context, u WorldUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return ErrClosed
	}

	select {
	case w.queue <- u:
		observability.StorageQueueDepth.Set(float64(len(w.queue)))
		return nil
	default:
		observability.StorageWritesTotal.WithLabelValues(w.driver, "dropped").Inc()
		return ErrQueueFull
	}
}

func (w *AsyncWriter) loop() {
	defer w.wg.Done()

	for u := range w.queue {
		observability.StorageQueueDepth.Set(float64(len(w.queue)))
		w.write(u)
	}
}

func (w *AsyncWriter) write(u WorldUpdate) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	ctx, span := observability.Tracer("storage").Start(ctx, "storage.ApplyUpdate")
	span.SetAttributes(
		attribute.String("world.id", u.WorldID),
		attribute.String("world.fact", u.Kind()),
		attribute.String("storage.driver", w.driver),
	)
	defer span.End()

	if err := w.store.ApplyUpdate(ctx, u); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.StorageWritesTotal.WithLabelValues(w.driver, "error").Inc()
		if errors.Is(err, context.DeadlineExceeded) {
			w.warn("⏱️ Запись %s в %s не уложилась в %v", u, w.driver, w.timeout)
			return
		}
		w.warn("Ошибка записи %s в %s: %v", u, w.driver, err)
		return
	}
	observability.StorageWritesTotal.WithLabelValues(w.driver, "ok").Inc()
}

func (w *AsyncWriter) warn(format string, args ...interface{}) {
	if w.log != nil {
		w.log.Warn(format, args...)
		return
	}
	logging.Warn(format, args...)
}

// Close прекращает приём, дописывает очередь и закрывает store.
// Повторный вызов безопасен.
func (w *AsyncWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()

	w.wg.Wait()
	return w.store.Close()
}
