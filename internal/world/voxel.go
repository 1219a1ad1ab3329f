package world

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/worldcore/internal/vec"
	"github.com/annel0/worldcore/internal/world/block"
)

// VoxelAt возвращает тип вокселя; false - чанк не загружен (это не air).
func (w *World) VoxelAt(v vec.VoxelCoord) (block.BlockID, bool) {
	return w.chunks.GetTypeAt(v)
}

// WorldVoxelAt - VoxelAt для позиции в мировых координатах
func (w *World) WorldVoxelAt(pos mgl64.Vec3) (block.BlockID, bool) {
	return w.VoxelAt(vec.WorldToVoxel(pos))
}

// IsSolidAt возвращает def для неизвестного вокселя, иначе true для
// любого типа кроме жидкостей.
func (w *World) IsSolidAt(v vec.VoxelCoord, def bool) bool {
	id, known := w.VoxelAt(v)
	if !known {
		return def
	}
	return !block.IsLiquid(id)
}

// BlocksMovementAt - проверка проходимости: неизвестное пространство
// считается преградой.
func (w *World) BlocksMovementAt(v vec.VoxelCoord) bool {
	return w.IsSolidAt(v, true)
}

// SolidityAtWorld - IsSolidAt для мировой позиции
func (w *World) SolidityAtWorld(pos mgl64.Vec3, def bool) bool {
	return w.IsSolidAt(vec.WorldToVoxel(pos), def)
}

// SetTarget задаёт блок под прицелом; nil сбрасывает.
func (w *World) SetTarget(t *TargetBlock) { w.target = copyTarget(t) }

// SetPotential задаёт блок, куда будет поставлен новый; nil сбрасывает.
func (w *World) SetPotential(t *TargetBlock) { w.potential = copyTarget(t) }

func (w *World) Target() (TargetBlock, bool)    { return derefTarget(w.target) }
func (w *World) Potential() (TargetBlock, bool) { return derefTarget(w.potential) }

// TargetedVoxelType возвращает тип блока под прицелом. Без цели -
// AirBlockID без обращения к чанк-менеджеру.
func (w *World) TargetedVoxelType() (block.BlockID, bool) {
	if w.target == nil {
		return block.AirBlockID, true
	}
	v := vec.ChunkLocalToGlobal(w.target.Block, w.target.Chunk, w.opts.ChunkSize)
	return w.VoxelAt(v)
}

func copyTarget(t *TargetBlock) *TargetBlock {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func derefTarget(t *TargetBlock) (TargetBlock, bool) {
	if t == nil {
		return TargetBlock{}, false
	}
	return *t, true
}
