package vec

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultChunkSize - длина ребра чанка по умолчанию (в вокселях).
const DefaultChunkSize = 16

// Пространства координат:
//
//	мир (mgl64.Vec3)  - непрерывная позиция, в которой живут сущности;
//	VoxelCoord        - целочисленный воксель глобальной сетки;
//	ChunkCoord        - индекс чанка (воксель / L с округлением вниз);
//	LocalCoord        - воксель относительно начала своего чанка, [0, L).
//
// Переход между пространствами выполняется только функциями ниже.

// VoxelCoord - координата вокселя (блока) в глобальной сетке.
type VoxelCoord Vec3

// ChunkCoord - координата чанка.
type ChunkCoord Vec3

// LocalCoord - координата вокселя внутри чанка.
type LocalCoord Vec3

func (v VoxelCoord) String() string { return fmt.Sprintf("voxel(%d,%d,%d)", v.X, v.Y, v.Z) }
func (c ChunkCoord) String() string { return fmt.Sprintf("chunk(%d,%d,%d)", c.X, c.Y, c.Z) }
func (l LocalCoord) String() string { return fmt.Sprintf("local(%d,%d,%d)", l.X, l.Y, l.Z) }

// Column возвращает вертикальный столбец вокселя.
func (v VoxelCoord) Column() Column { return Column{X: v.X, Z: v.Z} }

// Within проверяет, что локальная координата лежит в [0, size) по всем осям.
func (l LocalCoord) Within(size int) bool {
	return l.X >= 0 && l.X < size &&
		l.Y >= 0 && l.Y < size &&
		l.Z >= 0 && l.Z < size
}

// Index возвращает линейный индекс локальной координаты в массиве чанка (x, затем z, затем y).
func (l LocalCoord) Index(size int) int {
	return (l.Y*size+l.Z)*size + l.X
}

// LocalFromIndex - обратная операция к LocalCoord.Index.
func LocalFromIndex(i, size int) LocalCoord {
	return LocalCoord{X: i % size, Z: (i / size) % size, Y: i / (size * size)}
}

// Origin возвращает глобальный воксель начала чанка.
func (c ChunkCoord) Origin(size int) VoxelCoord {
	return VoxelCoord(Vec3(c).Scale(size))
}

// ChebyshevDistance возвращает расстояние между чанками по горизонтали и по вертикали.
func (c ChunkCoord) ChebyshevDistance(other ChunkCoord) (horizontal, vertical int) {
	horizontal = max(abs(c.X-other.X), abs(c.Z-other.Z))
	vertical = abs(c.Y - other.Y)
	return horizontal, vertical
}

// WorldToVoxel возвращает воксель, содержащий мировую позицию (floor по каждой оси).
func WorldToVoxel(p mgl64.Vec3) VoxelCoord {
	return VoxelCoord{
		X: int(math.Floor(p[0])),
		Y: int(math.Floor(p[1])),
		Z: int(math.Floor(p[2])),
	}
}

// VoxelToChunk раскладывает воксель на координату чанка и локальную координату внутри него.
func VoxelToChunk(v VoxelCoord, size int) (ChunkCoord, LocalCoord) {
	c := ChunkCoord{
		X: floorDiv(v.X, size),
		Y: floorDiv(v.Y, size),
		Z: floorDiv(v.Z, size),
	}
	l := LocalCoord(Vec3(v).Sub(Vec3(c).Scale(size)))
	return c, l
}

// ChunkLocalToGlobal - точная обратная функция к VoxelToChunk.
func ChunkLocalToGlobal(l LocalCoord, c ChunkCoord, size int) VoxelCoord {
	return VoxelCoord(Vec3(c).Scale(size).Add(Vec3(l)))
}

// WorldToChunk - композиция WorldToVoxel и VoxelToChunk.
func WorldToChunk(p mgl64.Vec3, size int) ChunkCoord {
	c, _ := VoxelToChunk(WorldToVoxel(p), size)
	return c
}

// IsPowerOfTwo проверяет допустимость длины ребра чанка.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// floorDiv делит с округлением к минус бесконечности.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
