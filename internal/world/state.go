package world

import (
	"math"

	"github.com/annel0/worldcore/internal/vec"
	"github.com/annel0/worldcore/internal/world/block"
)

// UnknownHeight - сырое значение высоты "неизвестно" во внешних данных
// (минимальное точно представимое целое в float64).
const UnknownHeight = -9007199254740991

const unknownHeightEpsilon = 5

// PlayerYFromRaw переводит сырую высоту в опциональную: значения
// в пределах 5 от UnknownHeight означают "неизвестно".
func PlayerYFromRaw(raw float64) *float64 {
	if math.Abs(raw-UnknownHeight) <= unknownHeightEpsilon {
		return nil
	}
	return &raw
}

// Phase - стадия готовности мира. Pending -> Ready, обратного перехода нет.
type Phase int

const (
	PhasePending Phase = iota // ждём высоту спавна
	PhaseReady
)

func (p Phase) String() string {
	if p == PhaseReady {
		return "ready"
	}
	return "pending"
}

// Metadata - данные мира, с которыми открывается сессия
type Metadata struct {
	ID            string
	Name          string
	Seed          int64
	Time          float64
	Days          int
	ChangedBlocks map[vec.VoxelCoord]block.BlockID // правки игрока поверх ландшафта
}

// PlayerMetadata - данные локального игрока. Y == nil: высота спавна
// неизвестна, мир запросит её у воркеров.
type PlayerMetadata struct {
	ID string
	Y  *float64
}

// State - факты мира. Меняется только циклом обновления и разрешением спавна.
type State struct {
	ID       string
	Name     string
	Seed     int64
	Time     float64
	Days     int
	Phase    Phase
	PlayerID string
	PlayerY  *float64
}

// IsSetup сообщает, закрыт ли латч готовности
func (s State) IsSetup() bool { return s.Phase == PhaseReady }

func (s State) clone() State {
	if s.PlayerY != nil {
		y := *s.PlayerY
		s.PlayerY = &y
	}
	return s
}

// TargetBlock - воксель под прицелом: чанк и координата внутри него.
type TargetBlock struct {
	Chunk vec.ChunkCoord `json:"chunk"`
	Block vec.LocalCoord `json:"block"`
}
