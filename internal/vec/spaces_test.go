package vec

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldToVoxel_Floor(t *testing.T) {
	assert.Equal(t, VoxelCoord{X: 0, Y: 0, Z: 0}, WorldToVoxel(mgl64.Vec3{0.2, 0.999, 0}))
	assert.Equal(t, VoxelCoord{X: -1, Y: -1, Z: -2}, WorldToVoxel(mgl64.Vec3{-0.1, -1, -1.5}))
	assert.Equal(t, VoxelCoord{X: 17, Y: 64, Z: -17}, WorldToVoxel(mgl64.Vec3{17.9, 64.0, -16.01}))
}

func TestVoxelToChunk(t *testing.T) {
	tests := []struct {
		name  string
		voxel VoxelCoord
		chunk ChunkCoord
		local LocalCoord
	}{
		{"origin", VoxelCoord{0, 0, 0}, ChunkCoord{0, 0, 0}, LocalCoord{0, 0, 0}},
		{"last in chunk", VoxelCoord{15, 15, 15}, ChunkCoord{0, 0, 0}, LocalCoord{15, 15, 15}},
		{"next chunk", VoxelCoord{16, 32, 47}, ChunkCoord{1, 2, 2}, LocalCoord{0, 0, 15}},
		{"negative", VoxelCoord{-1, -16, -17}, ChunkCoord{-1, -1, -2}, LocalCoord{15, 0, 15}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, l := VoxelToChunk(tt.voxel, 16)
			assert.Equal(t, tt.chunk, c)
			assert.Equal(t, tt.local, l)
		})
	}
}

func TestChunkLocalToGlobal_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, size := range []int{1, 2, 8, 16, 32} {
		for i := 0; i < 2000; i++ {
			v := VoxelCoord{
				X: rng.Intn(1<<20) - 1<<19,
				Y: rng.Intn(1<<12) - 1<<11,
				Z: rng.Intn(1<<20) - 1<<19,
			}
			c, l := VoxelToChunk(v, size)
			require.True(t, l.Within(size), "локальная координата %v вне [0,%d)", l, size)
			require.Equal(t, v, ChunkLocalToGlobal(l, c, size), "size=%d", size)
		}
	}
}

func TestWorldPosition_CompositionLaw(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 1000; i++ {
		p := mgl64.Vec3{
			(rng.Float64() - 0.5) * 10000,
			(rng.Float64() - 0.5) * 512,
			(rng.Float64() - 0.5) * 10000,
		}
		v := WorldToVoxel(p)
		c, l := VoxelToChunk(v, DefaultChunkSize)
		assert.Equal(t, v, ChunkLocalToGlobal(l, c, DefaultChunkSize))
		assert.Equal(t, c, WorldToChunk(p, DefaultChunkSize))
	}
}

func TestLocalIndex_RoundTrip(t *testing.T) {
	const size = 16
	seen := make(map[int]bool, size*size*size)
	for y := 0; y < size; y++ {
		for z := 0; z < size; z++ {
			for x := 0; x < size; x++ {
				l := LocalCoord{X: x, Y: y, Z: z}
				i := l.Index(size)
				assert.False(t, seen[i])
				seen[i] = true
				assert.Equal(t, l, LocalFromIndex(i, size))
			}
		}
	}
	assert.Len(t, seen, size*size*size)
}

func TestChunkCoord_Helpers(t *testing.T) {
	assert.Equal(t, VoxelCoord{X: 16, Y: 0, Z: -32}, ChunkCoord{X: 1, Y: 0, Z: -2}.Origin(16))

	h, v := ChunkCoord{X: 2, Y: 1, Z: -3}.ChebyshevDistance(ChunkCoord{X: 0, Y: -1, Z: 0})
	assert.Equal(t, 3, h)
	assert.Equal(t, 2, v)

	assert.True(t, IsPowerOfTwo(16))
	assert.False(t, IsPowerOfTwo(0))
	assert.False(t, IsPowerOfTwo(12))
	assert.Equal(t, Column{X: -1, Z: 0}, Column{X: -3, Z: 15}.ToChunkColumn(16))
}
