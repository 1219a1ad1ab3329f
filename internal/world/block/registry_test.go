package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLiquidSet(t *testing.T) {
	assert.True(t, IsLiquid(WaterBlockID))
	assert.True(t, IsLiquid(LavaBlockID))
	assert.False(t, IsLiquid(StoneBlockID))
	assert.False(t, IsLiquid(AirBlockID))
	assert.False(t, IsLiquid(BlockID(9999)), "незарегистрированный тип не жидкость")

	assert.ElementsMatch(t, []BlockID{WaterBlockID, LavaBlockID}, Liquids())
}

func TestRegister(t *testing.T) {
	const custom BlockID = 500
	assert.False(t, IsValidBlockID(custom))

	Register(custom, Properties{Name: "slime", Liquid: true})
	defer func() {
		registryMu.Lock()
		delete(registry, custom)
		registryMu.Unlock()
	}()

	props, ok := Get(custom)
	assert.True(t, ok)
	assert.Equal(t, "slime", props.Name)
	assert.True(t, IsLiquid(custom))
}
