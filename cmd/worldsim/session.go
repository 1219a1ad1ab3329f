package main

import (
	"github.com/annel0/worldcore/internal/config"
	"github.com/annel0/worldcore/internal/vec"
	"github.com/annel0/worldcore/internal/world"
	"github.com/annel0/worldcore/internal/world/block"
)

// sessionMetadata переводит сырую сессию из конфига в метаданные мира и игрока
func sessionMetadata(s config.SessionConfig) (world.Metadata, world.PlayerMetadata) {
	changed := make(map[vec.VoxelCoord]block.BlockID, len(s.ChangedBlocks))
	for _, cb := range s.ChangedBlocks {
		changed[vec.VoxelCoord{X: cb.X, Y: cb.Y, Z: cb.Z}] = block.BlockID(cb.ID)
	}

	meta := world.Metadata{
		ID:            s.WorldID,
		Name:          s.WorldName,
		Seed:          s.Seed,
		Time:          s.Time,
		Days:          s.Days,
		ChangedBlocks: changed,
	}

	player := world.PlayerMetadata{ID: s.PlayerID}
	if s.PlayerY != nil {
		player.Y = world.PlayerYFromRaw(*s.PlayerY)
	}
	return meta, player
}
