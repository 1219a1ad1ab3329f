package world

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/worldcore/internal/storage"
	"github.com/annel0/worldcore/internal/vec"
	"github.com/annel0/worldcore/internal/worker"
	"github.com/annel0/worldcore/internal/world/block"
)

// ChunkManager хранит загруженные чанки и подгружает окружение игрока.
type ChunkManager interface {
	// GetTypeAt возвращает тип вокселя; false, если чанк не загружен.
	GetTypeAt(v vec.VoxelCoord) (block.BlockID, bool)
	SurroundingChunksCheck(c vec.ChunkCoord)
	Update()
	IsReady() bool
}

// WorkerManager выполняет вычисления чанков вне основного потока.
// Ответы вызываются только внутри Update().
type WorkerManager interface {
	QueueSpecificChunk(req worker.SpecificChunkRequest, reply func(worker.Reply)) error
	Update()
}

// Sky ведёт время суток и счётчик дней.
type Sky interface {
	Time() float64
	Days() int
	Tick()
	// SubscribeNewDay регистрирует единственного наблюдателя смены дня.
	SubscribeNewDay(fn func()) (unsubscribe func())
}

// SkyFactory создаёт небо из сохранённых времени и дней.
type SkyFactory func(time float64, days int) Sky

// Persistence принимает мутации фактов мира. Вызов не должен блокировать.
type Persistence interface {
	UpdateWorld(ctx context.Context, u storage.WorldUpdate) error
}

// Player - сущность игрока; мир её только читает.
type Player interface {
	Position() mgl64.Vec3
}

// SpawnApplier реализуется игроком, которому нужна вычисленная высота спавна.
type SpawnApplier interface {
	ApplySpawnHeight(y float64)
}
