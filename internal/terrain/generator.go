package terrain

import (
	"math"

	"github.com/aquilax/go-perlin"

	"github.com/annel0/worldcore/internal/vec"
	"github.com/annel0/worldcore/internal/world/block"
)

// Константы рельефа
const (
	SeaLevel   = 32 // Ниже - вода над поверхностью
	BaseHeight = 36 // Средняя высота поверхности
	Amplitude  = 24 // Разброс высот
	BeachBand  = 2  // Высота пляжа над уровнем моря
	SoilDepth  = 3  // Толщина слоя земли под травой
	MaxHeight  = BaseHeight + Amplitude + 1
)

// Generator генерирует детерминированный ландшафт по сиду.
// Безопасен для одновременного использования из нескольких воркеров:
// perlin.Perlin после создания только читается.
type Generator struct {
	Seed       int64
	NoiseScale float64 // Масштаб шума высот
	noise      *perlin.Perlin
}

// NewGenerator создаёт генератор с параметрами шума по умолчанию
func NewGenerator(seed int64) *Generator {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав

	return &Generator{
		Seed:       seed,
		NoiseScale: 0.01,
		noise:      perlin.NewPerlin(alpha, beta, n, seed),
	}
}

// HeightAt возвращает высоту поверхности столбца
func (g *Generator) HeightAt(col vec.Column) int {
	n := g.noise.Noise2D(float64(col.X)*g.NoiseScale, float64(col.Z)*g.NoiseScale)
	n = math.Max(-1, math.Min(1, n))
	return BaseHeight + int(math.Round(n*Amplitude))
}

// BlockAt возвращает тип вокселя по глобальной координате
func (g *Generator) BlockAt(v vec.VoxelCoord) block.BlockID {
	return g.blockAt(v.Y, g.HeightAt(v.Column()))
}

func (g *Generator) blockAt(y, height int) block.BlockID {
	switch {
	case y < 0:
		return block.BedrockBlockID
	case y > height:
		if y <= SeaLevel {
			return block.WaterBlockID
		}
		return block.AirBlockID
	case y == height:
		if height <= SeaLevel+BeachBand {
			return block.SandBlockID
		}
		return block.GrassBlockID
	case y > height-SoilDepth:
		return block.DirtBlockID
	default:
		return block.StoneBlockID
	}
}

// GenerateChunk заполняет чанк по его координатам; индекс - LocalCoord.Index
func (g *Generator) GenerateChunk(c vec.ChunkCoord, size int) []block.BlockID {
	voxels := make([]block.BlockID, size*size*size)
	origin := c.Origin(size)

	for z := 0; z < size; z++ {
		for x := 0; x < size; x++ {
			height := g.HeightAt(vec.Column{X: origin.X + x, Z: origin.Z + z})
			for y := 0; y < size; y++ {
				l := vec.LocalCoord{X: x, Y: y, Z: z}
				voxels[l.Index(size)] = g.blockAt(origin.Y+y, height)
			}
		}
	}
	return voxels
}

// HighestSolid возвращает высоту верхнего твёрдого (не жидкого и не пустого) вокселя столбца
func (g *Generator) HighestSolid(col vec.Column) int {
	height := g.HeightAt(col)
	for y := MaxHeight; y >= 0; y-- {
		id := g.blockAt(y, height)
		if id != block.AirBlockID && !block.IsLiquid(id) {
			return y
		}
	}
	return -1
}
