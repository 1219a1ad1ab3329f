package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/worldcore/internal/api"
	"github.com/annel0/worldcore/internal/chunk"
	"github.com/annel0/worldcore/internal/config"
	"github.com/annel0/worldcore/internal/eventbus"
	"github.com/annel0/worldcore/internal/logging"
	"github.com/annel0/worldcore/internal/observability"
	"github.com/annel0/worldcore/internal/resource"
	"github.com/annel0/worldcore/internal/sky"
	"github.com/annel0/worldcore/internal/storage"
	"github.com/annel0/worldcore/internal/terrain"
	"github.com/annel0/worldcore/internal/worker"
	"github.com/annel0/worldcore/internal/world"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config (default: $WORLD_CONFIG)")
		frames     = flag.Int("frames", 0, "stop after N frames (0 - run until signal)")
		walkRadius = flag.Float64("walk-radius", 48, "radius of the scripted player walk, voxels")
	)
	flag.Parse()

	if err := logging.InitDefaultLogger("worldsim"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *frames, *walkRadius); err != nil {
		logging.Error("❌ %v", err)
		log.Fatalf("❌ %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, maxFrames int, walkRadius float64) error {
	logging.Info("🌍 Запуск worldsim: chunk=%d radius=%d/%d storage=%s",
		cfg.World.ChunkSize, cfg.World.RenderRadius, cfg.World.VerticalRadius, cfg.Storage.Driver)

	// === ТЕЛЕМЕТРИЯ ===
	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName)
		if err != nil {
			logging.Warn("OpenTelemetry недоступен: %v", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	// === ШИНА СОБЫТИЙ ===
	bus, err := openBus(cfg)
	if err != nil {
		return err
	}
	defer bus.Close()

	if _, err := eventbus.StartLoggingListener(bus); err != nil {
		return err
	}
	exporter, err := eventbus.NewMetricsExporter(bus, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	exporter.Start(time.Second)
	defer exporter.Stop()

	// === ХРАНИЛИЩЕ ФАКТОВ МИРА ===
	store, err := storage.Open(ctx, cfg.Storage, bus)
	if err != nil {
		return err
	}
	defer logging.GetLoggerManager().CloseAll()
	writer := storage.NewAsyncWriter(store, cfg.Storage.Driver, cfg.Storage.QueueSize, cfg.Storage.WriteTimeout,
		storage.WithLogger(logging.GetStorageLogger()))
	defer writer.Close()

	session := cfg.Session
	if session.WorldID == "" {
		session.WorldID = uuid.NewString()
		logging.Info("🆕 Новый мир %s", session.WorldID)
	}
	rec, err := store.Load(ctx, session.WorldID)
	switch {
	case err == nil:
		session.Time, session.Days = rec.Time, rec.Days
		logging.Info("📂 Факты мира загружены: time=%.2f days=%d", rec.Time, rec.Days)
	case errors.Is(err, storage.ErrNotFound):
	default:
		logging.Warn("Не удалось прочитать факты мира: %v", err)
	}

	// === КОЛЛАБОРАТОРЫ ===
	gen := terrain.NewGenerator(session.Seed)
	workers := worker.New(gen, worker.Options{
		Workers:   cfg.Workers.GetWorkerCount(),
		QueueSize: cfg.Workers.QueueSize,
		ChunkSize: cfg.World.ChunkSize,
	})
	defer workers.Close()

	meta, playerMeta := sessionMetadata(session)
	if playerMeta.Y == nil {
		logging.Info("⏳ Высота спавна неизвестна, ждём ответ воркеров")
	}

	resources := resource.NewManager()
	chunks := chunk.NewManager(chunk.Options{
		Size:           cfg.World.ChunkSize,
		RenderRadius:   cfg.World.RenderRadius,
		VerticalRadius: cfg.World.VerticalRadius,
		EvictMargin:    cfg.World.EvictMargin,
	}, workers, resources, meta.ChangedBlocks)

	skyOpts := sky.Options{Speed: cfg.Sky.Speed, DayLength: cfg.Sky.DayLength}

	// === МИР ===
	w, err := world.New(
		meta,
		playerMeta,
		world.Deps{
			Chunks:      chunks,
			Workers:     workers,
			Persistence: writer,
			NewSky: func(t float64, days int) world.Sky {
				return sky.New(t, days, skyOpts)
			},
		},
		world.Options{
			ChunkSize:        cfg.World.ChunkSize,
			EnvCheckInterval: cfg.World.EnvCheckInterval,
			TimeSyncInterval: cfg.World.TimeSyncInterval,
		},
	)
	if err != nil {
		return err
	}
	defer w.Close()

	startY := 0.0
	if playerMeta.Y != nil {
		startY = *playerMeta.Y
	}
	player := newWalker(startY, walkRadius, 0.2)
	w.SetPlayer(player)
	if err := w.InitUpdaters(); err != nil {
		return err
	}

	// === DEBUG API ===
	board := api.NewStatusBoard()
	server, err := api.NewServer(cfg.Debug.GetDebugAddr(), board, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	if err != nil {
		return err
	}
	server.Start()
	defer func() {
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = server.Shutdown(shCtx)
	}()

	// === КАДРЫ ===
	frameDur := time.Second / time.Duration(cfg.World.FrameRate)
	ticker := time.NewTicker(frameDur)
	defer ticker.Stop()

	logging.Info("▶️ Мир %s запущен, %d кадров/с", session.WorldID, cfg.World.FrameRate)

	var frame uint64
	for {
		select {
		case <-ctx.Done():
			logging.Info("Получен сигнал завершения, останавливаем мир...")
			return nil
		case now := <-ticker.C:
			if w.IsSetup() {
				player.Step(frameDur.Seconds())
			}
			w.Tick(now)
			frame++

			board.Publish(api.Status{
				Frame:   frame,
				World:   w.Snapshot(),
				Chunks:  chunks.Stats(),
				Storage: cfg.Storage.Driver,
			})

			if maxFrames > 0 && frame >= uint64(maxFrames) {
				logging.Info("⏹️ Достигнут лимит кадров (%d)", maxFrames)
				return nil
			}
		}
	}
}

// openBus выбирает JetStream, если он нужен хранилищу или задан адрес,
// иначе шину в памяти.
func openBus(cfg *config.Config) (eventbus.EventBus, error) {
	if cfg.Storage.Driver != "eventbus" && cfg.EventBus.URL == "" {
		return eventbus.NewMemoryBus(1024), nil
	}
	bus, err := eventbus.NewJetStreamBus(cfg.EventBus.GetURL(), cfg.EventBus.Stream, cfg.EventBus.GetRetention())
	if err != nil {
		return nil, err
	}
	logging.Info("📨 JetStream подключен: %s stream=%s", cfg.EventBus.GetURL(), cfg.EventBus.Stream)
	return bus, nil
}
