package resource

import (
	"fmt"
	"sync"

	"github.com/annel0/worldcore/internal/world/block"
)

// Material - описание того, как рисовать воксель данного типа.
type Material struct {
	ID          block.BlockID
	Name        string
	Color       [4]uint8
	Transparent bool
	Visible     bool // air и неизвестные типы не рисуются
}

// Manager кэширует материалы по ID блока. Создаётся один раз и
// передаётся чанк-менеджеру.
type Manager struct {
	mu        sync.RWMutex
	materials map[block.BlockID]Material
	misses    int
}

// NewManager создаёт пустой кэш материалов
func NewManager() *Manager {
	return &Manager{materials: make(map[block.BlockID]Material)}
}

// Material возвращает материал для id, строя его из регистра блоков
// при первом обращении.
func (m *Manager) Material(id block.BlockID) Material {
	m.mu.RLock()
	mat, ok := m.materials[id]
	m.mu.RUnlock()
	if ok {
		return mat
	}

	mat = build(id)

	m.mu.Lock()
	m.materials[id] = mat
	m.misses++
	m.mu.Unlock()
	return mat
}

func build(id block.BlockID) Material {
	props, ok := block.Get(id)
	if !ok {
		return Material{ID: id, Name: fmt.Sprintf("unknown_%d", id)}
	}
	return Material{
		ID:          id,
		Name:        props.Name,
		Color:       props.Color,
		Transparent: props.Transparent,
		Visible:     id != block.AirBlockID,
	}
}

// Len возвращает число закэшированных материалов
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.materials)
}

// Misses возвращает число построений (промахов кэша)
func (m *Manager) Misses() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.misses
}
