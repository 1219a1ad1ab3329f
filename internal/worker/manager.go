package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/annel0/worldcore/internal/observability"
	"github.com/annel0/worldcore/internal/terrain"
	"github.com/annel0/worldcore/internal/vec"
	"github.com/annel0/worldcore/internal/world/block"
)

// Command - тип задания для воркера
type Command string

const (
	CmdGenerate   Command = "GEN"         // сгенерировать воксели чанка
	CmdGetHighest Command = "GET_HIGHEST" // найти верхний твёрдый воксель столбца
)

var (
	ErrClosed     = errors.New("worker manager closed")
	ErrQueueFull  = errors.New("worker queue full")
	ErrUnknownCmd = errors.New("unknown worker command")
)

// SpecificChunkRequest - разовый запрос по столбцу (x, z)
type SpecificChunkRequest struct {
	Cmd  Command
	X, Z int
}

// Reply - результат задания. Заполняются поля, относящиеся к команде.
type Reply struct {
	Cmd    Command
	Column vec.Column
	Height int

	Chunk  vec.ChunkCoord
	Voxels []block.BlockID

	Err error
}

type job struct {
	cmd    Command
	chunk  vec.ChunkCoord
	column vec.Column
	reply  func(Reply)
}

type completed struct {
	reply  Reply
	handle func(Reply)
}

// Options настраивает пул воркеров
type Options struct {
	Workers   int
	QueueSize int
	ChunkSize int
}

// Manager выполняет вычисления чанков вне основного потока.
// Ответы применяются только в Update(), на потоке вызывающего.
type Manager struct {
	gen       *terrain.Generator
	chunkSize int

	jobs    chan job
	results chan completed

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex // защищает closed от гонки с Queue
	closed  bool
	pending atomic.Int64
}

// New создаёт менеджер и запускает воркеры
func New(gen *terrain.Generator, opts Options) *Manager {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = vec.DefaultChunkSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		gen:       gen,
		chunkSize: opts.ChunkSize,
		jobs:      make(chan job, opts.QueueSize),
		results:   make(chan completed, opts.QueueSize),
		ctx:       ctx,
		cancel:    cancel,
	}

	for i := 0; i < opts.Workers; i++ {
		m.wg.Add(1)
		go m.run()
	}
	return m
}

// QueueChunk ставит в очередь генерацию чанка
func (m *Manager) QueueChunk(c vec.ChunkCoord, reply func(Reply)) error {
	return m.enqueue(job{cmd: CmdGenerate, chunk: c, reply: reply})
}

// QueueSpecificChunk ставит в очередь разовый запрос по столбцу
func (m *Manager) QueueSpecificChunk(req SpecificChunkRequest, reply func(Reply)) error {
	switch req.Cmd {
	case CmdGetHighest:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCmd, req.Cmd)
	}
	return m.enqueue(job{cmd: req.Cmd, column: vec.Column{X: req.X, Z: req.Z}, reply: reply})
}

func (m *Manager) enqueue(j job) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}

	select {
	case m.jobs <- j:
		m.pending.Add(1)
		return nil
	default:
		return ErrQueueFull
	}
}

// Update применяет все готовые результаты на потоке вызывающего
func (m *Manager) Update() {
	for {
		select {
		case c := <-m.results:
			m.pending.Add(-1)
			if c.handle != nil {
				c.handle(c.reply)
			}
		default:
			return
		}
	}
}

// Pending возвращает число заданий в очереди или в работе, ещё не применённых
func (m *Manager) Pending() int {
	return int(m.pending.Load())
}

// Close останавливает воркеры; неприменённые результаты отбрасываются
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
}

func (m *Manager) run() {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		case j := <-m.jobs:
			r := m.execute(j)
			observability.WorkerJobsTotal.WithLabelValues(string(j.cmd)).Inc()

			select {
			case m.results <- completed{reply: r, handle: j.reply}:
			case <-m.ctx.Done():
				return
			}
		}
	}
}

func (m *Manager) execute(j job) Reply {
	switch j.cmd {
	case CmdGenerate:
		return Reply{
			Cmd:    j.cmd,
			Chunk:  j.chunk,
			Voxels: m.gen.GenerateChunk(j.chunk, m.chunkSize),
		}
	case CmdGetHighest:
		return Reply{
			Cmd:    j.cmd,
			Column: j.column,
			Height: m.gen.HighestSolid(j.column),
		}
	default:
		return Reply{Cmd: j.cmd, Err: fmt.Errorf("%w: %q", ErrUnknownCmd, j.cmd)}
	}
}
