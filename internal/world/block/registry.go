package block

import "sync"

// BlockID представляет идентификатор типа вокселя
type BlockID uint16

// Константы ID блоков
const (
	// Базовые типы блоков
	AirBlockID     BlockID = iota // 0 - пустота, "ничего не нацелено"
	StoneBlockID                  // 1
	GrassBlockID                  // 2
	WaterBlockID                  // 3
	SandBlockID                   // 4
	DirtBlockID                   // 5
	LavaBlockID                   // 6
	BedrockBlockID                // 7

	// Декоративные блоки (начиная с 100)
	FlowerBlockID BlockID = 100
	LogBlockID    BlockID = 101
	LeavesBlockID BlockID = 102
)

// Properties описывает статические свойства типа вокселя
type Properties struct {
	Name        string
	Liquid      bool // жидкости не твёрдые для коллизий, но "известны" для таргетинга
	Transparent bool
	Color       [4]uint8
}

var (
	registryMu sync.RWMutex
	registry   = map[BlockID]Properties{
		AirBlockID:     {Name: "air", Transparent: true},
		StoneBlockID:   {Name: "stone", Color: [4]uint8{128, 128, 128, 255}},
		GrassBlockID:   {Name: "grass", Color: [4]uint8{96, 168, 64, 255}},
		WaterBlockID:   {Name: "water", Liquid: true, Transparent: true, Color: [4]uint8{48, 96, 200, 160}},
		SandBlockID:    {Name: "sand", Color: [4]uint8{220, 204, 150, 255}},
		DirtBlockID:    {Name: "dirt", Color: [4]uint8{120, 85, 58, 255}},
		LavaBlockID:    {Name: "lava", Liquid: true, Color: [4]uint8{230, 90, 20, 255}},
		BedrockBlockID: {Name: "bedrock", Color: [4]uint8{40, 40, 40, 255}},
		FlowerBlockID:  {Name: "flower", Transparent: true, Color: [4]uint8{230, 60, 90, 255}},
		LogBlockID:     {Name: "log", Color: [4]uint8{102, 76, 40, 255}},
		LeavesBlockID:  {Name: "leaves", Transparent: true, Color: [4]uint8{50, 120, 40, 220}},
	}
)

// Register добавляет или заменяет свойства типа блока в регистре
func Register(id BlockID, props Properties) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[id] = props
}

// Get возвращает свойства для указанного ID
func Get(id BlockID) (Properties, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	props, exists := registry[id]
	return props, exists
}

// IsValidBlockID проверяет, является ли ID допустимым идентификатором блока
func IsValidBlockID(id BlockID) bool {
	_, exists := Get(id)
	return exists
}

// IsLiquid сообщает, входит ли тип в множество жидкостей.
func IsLiquid(id BlockID) bool {
	props, _ := Get(id)
	return props.Liquid
}

// Liquids возвращает все зарегистрированные жидкие типы.
func Liquids() []BlockID {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var ids []BlockID
	for id, props := range registry {
		if props.Liquid {
			ids = append(ids, id)
		}
	}
	return ids
}
