package world

import (
	"errors"
	"fmt"
	"time"

	"github.com/annel0/worldcore/internal/logging"
	"github.com/annel0/worldcore/internal/observability"
	"github.com/annel0/worldcore/internal/vec"
	"github.com/annel0/worldcore/internal/worker"
)

var (
	ErrClosed            = errors.New("world closed")
	ErrNoPlayer          = errors.New("player not attached")
	ErrMissingDependency = errors.New("missing world dependency")
	ErrInvalidOptions    = errors.New("invalid world options")
)

// Deps - внешние коллабораторы мира
type Deps struct {
	Chunks      ChunkManager
	Workers     WorkerManager
	Persistence Persistence // nil: факты мира не сохраняются
	NewSky      SkyFactory
}

// Options задаёт размер чанка и периоды фоновых проверок
type Options struct {
	ChunkSize        int
	EnvCheckInterval time.Duration
	TimeSyncInterval time.Duration
}

// DefaultOptions возвращает 16-воксельные чанки, 100мс и 500мс
func DefaultOptions() Options {
	return Options{
		ChunkSize:        vec.DefaultChunkSize,
		EnvCheckInterval: 100 * time.Millisecond,
		TimeSyncInterval: 500 * time.Millisecond,
	}
}

// World - ядро координации мира. Все методы вызываются из одного
// потока (основного цикла); ответы воркеров приходят туда же через
// WorkerManager.Update.
type World struct {
	state State
	opts  Options

	chunks  ChunkManager
	workers WorkerManager
	persist Persistence
	newSky  SkyFactory

	sky    Sky
	player Player

	target    *TargetBlock
	potential *TargetBlock

	sched     *Scheduler
	envTimer  *Timer
	timeTimer *Timer
	unsubDay  func()

	spawnResolved bool // высота получена от воркеров
	spawnApplied  bool // и передана игроку
	initialized   bool
	closed        bool
}

// New создаёт мир. Сырое UnknownHeight в player.Y считается неизвестной
// высотой. Если высота игрока неизвестна, сразу ставит один
// запрос GET_HIGHEST по столбцу спавна (0, 0) и остаётся в PhasePending
// до ответа.
func New(meta Metadata, player PlayerMetadata, deps Deps, opts Options) (*World, error) {
	if deps.Chunks == nil || deps.Workers == nil {
		return nil, fmt.Errorf("%w: chunk and worker managers are required", ErrMissingDependency)
	}
	if opts.ChunkSize == 0 {
		opts.ChunkSize = vec.DefaultChunkSize
	}
	if !vec.IsPowerOfTwo(opts.ChunkSize) {
		return nil, fmt.Errorf("%w: chunk size %d is not a power of two", ErrInvalidOptions, opts.ChunkSize)
	}
	if opts.EnvCheckInterval <= 0 || opts.TimeSyncInterval <= 0 {
		return nil, fmt.Errorf("%w: intervals must be positive", ErrInvalidOptions)
	}

	w := &World{
		state: State{
			ID:       meta.ID,
			Name:     meta.Name,
			Seed:     meta.Seed,
			Time:     meta.Time,
			Days:     meta.Days,
			PlayerID: player.ID,
		},
		opts:    opts,
		chunks:  deps.Chunks,
		workers: deps.Workers,
		persist: deps.Persistence,
		newSky:  deps.NewSky,
		sched:   NewScheduler(),
	}

	if player.Y != nil {
		player.Y = PlayerYFromRaw(*player.Y)
	}
	if player.Y != nil {
		y := *player.Y
		w.state.PlayerY = &y
		w.state.Phase = PhaseReady
		return w, nil
	}

	if err := w.requestSpawnHeight(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *World) requestSpawnHeight() error {
	req := worker.SpecificChunkRequest{Cmd: worker.CmdGetHighest, X: 0, Z: 0}
	if err := w.workers.QueueSpecificChunk(req, w.onSpawnHeight); err != nil {
		return fmt.Errorf("request spawn height: %w", err)
	}
	observability.SpawnRequestsTotal.Inc()
	logging.Debug("Мир %s: запрошена высота спавна в столбце (0, 0)", w.state.ID)
	return nil
}

func (w *World) onSpawnHeight(r worker.Reply) {
	if w.closed {
		observability.StaleRepliesTotal.Inc()
		logging.Debug("Мир %s закрыт, ответ о высоте спавна отброшен", w.state.ID)
		return
	}
	if w.state.Phase == PhaseReady {
		return
	}
	if r.Err != nil {
		logging.Error("Мир %s: не удалось вычислить высоту спавна: %v", w.state.ID, r.Err)
		return
	}

	y := float64(r.Height)
	w.state.PlayerY = &y
	w.state.Phase = PhaseReady
	w.spawnResolved = true
	w.applySpawn()

	logging.Info("🧍 Мир %s готов, высота спавна %d", w.state.ID, r.Height)
}

func (w *World) applySpawn() {
	if !w.spawnResolved || w.spawnApplied || w.player == nil {
		return
	}
	if a, ok := w.player.(SpawnApplier); ok {
		a.ApplySpawnHeight(*w.state.PlayerY)
		w.spawnApplied = true
	}
}

// SetPlayer подключает игрока и создаёт небо из сохранённых time/days.
func (w *World) SetPlayer(p Player) {
	w.player = p
	if w.sky == nil && w.newSky != nil {
		w.sky = w.newSky(w.state.Time, w.state.Days)
	}
	w.applySpawn()
}

// InitUpdaters запускает проверку окружения, синхронизацию времени и
// подписку на смену дня. Требует подключённого игрока (и неба).
// Повторный вызов ничего не делает.
func (w *World) InitUpdaters() error {
	if w.closed {
		return ErrClosed
	}
	if w.sky == nil {
		return ErrNoPlayer
	}
	if w.initialized {
		return nil
	}

	w.envTimer = w.sched.Every(w.opts.EnvCheckInterval, w.updateEnv)
	w.timeTimer = w.sched.Every(w.opts.TimeSyncInterval, w.syncTime)
	w.unsubDay = w.sky.SubscribeNewDay(w.onNewDay)
	w.initialized = true
	return nil
}

// Update - покадровый тик: ответы воркеров, затем обслуживание чанков,
// затем ход времени. Порядок менять нельзя.
func (w *World) Update() {
	if w.closed {
		return
	}
	w.workers.Update()
	w.chunks.Update()
	if w.sky != nil {
		w.sky.Tick()
	}
	observability.FramesTotal.Inc()
}

// Tick выполняет Update и продвигает таймеры до now.
func (w *World) Tick(now time.Time) {
	w.Update()
	if !w.closed {
		w.sched.Advance(now)
	}
}

func (w *World) updateEnv() {
	if w.state.Phase != PhaseReady || w.player == nil {
		return
	}

	c := vec.WorldToChunk(w.player.Position(), w.opts.ChunkSize)
	w.chunks.SurroundingChunksCheck(c)
	observability.EnvChecksTotal.Inc()
}

// Close снимает таймеры и подписку. Повторный вызов безопасен.
// Ответ о высоте спавна, пришедший позже, будет отброшен.
func (w *World) Close() {
	if w.closed {
		return
	}
	w.closed = true

	w.envTimer.Cancel()
	w.timeTimer.Cancel()
	if w.unsubDay != nil {
		w.unsubDay()
		w.unsubDay = nil
	}
	logging.Info("🛑 Мир %s закрыт (фаза %s)", w.state.ID, w.state.Phase)
}

// State возвращает копию фактов мира
func (w *World) State() State { return w.state.clone() }

// IsSetup сообщает, известна ли высота спавна
func (w *World) IsSetup() bool { return w.state.Phase == PhaseReady }

// IsReady сообщает готовность чанк-менеджера (не путать с IsSetup)
func (w *World) IsReady() bool { return w.chunks.IsReady() }

// Player возвращает подключённого игрока
func (w *World) Player() Player { return w.player }

// Days возвращает счётчик дней
func (w *World) Days() int { return w.state.Days }

// Sky возвращает небо (nil до SetPlayer)
func (w *World) Sky() Sky { return w.sky }

// Closed сообщает, закрыт ли мир
func (w *World) Closed() bool { return w.closed }
