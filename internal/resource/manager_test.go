package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/annel0/worldcore/internal/world/block"
)

func TestManager_CachesMaterials(t *testing.T) {
	m := NewManager()

	stone := m.Material(block.StoneBlockID)
	assert.Equal(t, "stone", stone.Name)
	assert.True(t, stone.Visible)

	m.Material(block.StoneBlockID)
	assert.Equal(t, 1, m.Misses(), "повторный запрос должен попасть в кэш")
	assert.Equal(t, 1, m.Len())
}

func TestManager_AirAndUnknown(t *testing.T) {
	m := NewManager()

	air := m.Material(block.AirBlockID)
	assert.False(t, air.Visible)
	assert.True(t, air.Transparent)

	unknown := m.Material(block.BlockID(9999))
	assert.False(t, unknown.Visible)
	assert.Equal(t, "unknown_9999", unknown.Name)
}
