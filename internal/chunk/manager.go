package chunk

import (
	"sort"

	"github.com/annel0/worldcore/internal/logging"
	"github.com/annel0/worldcore/internal/observability"
	"github.com/annel0/worldcore/internal/resource"
	"github.com/annel0/worldcore/internal/vec"
	"github.com/annel0/worldcore/internal/worker"
	"github.com/annel0/worldcore/internal/world/block"
)

// Queuer ставит задания генерации чанков
type Queuer interface {
	QueueChunk(c vec.ChunkCoord, reply func(worker.Reply)) error
}

// Options задаёт размер чанка и радиусы загрузки
type Options struct {
	Size           int // длина ребра чанка
	RenderRadius   int // горизонтальный радиус (в чанках)
	VerticalRadius int // вертикальный радиус (в чанках)
	EvictMargin    int // запас сверх радиуса перед выгрузкой
}

// Chunk - загруженный чанк
type Chunk struct {
	Coord   vec.ChunkCoord
	Voxels  []block.BlockID // индекс - LocalCoord.Index(size)
	Visible int             // число видимых вокселей
}

// Stats - счётчики для отладки
type Stats struct {
	Loaded  int            `json:"loaded"`
	Pending int            `json:"pending"`
	Staged  int            `json:"staged"`
	Demand  int            `json:"demand"`
	Center  vec.ChunkCoord `json:"center"`
}

// Manager хранит загруженные чанки и управляет их подгрузкой.
// Не потокобезопасен: все методы вызываются из основного цикла,
// включая ответы воркеров (они приходят из worker.Manager.Update).
type Manager struct {
	opts      Options
	workers   Queuer
	resources *resource.Manager

	chunks  map[vec.ChunkCoord]*Chunk
	pending map[vec.ChunkCoord]struct{}
	staged  []worker.Reply
	changed map[vec.VoxelCoord]block.BlockID

	center    vec.ChunkCoord
	hasCenter bool
	demand    []vec.ChunkCoord
}

// NewManager создаёт чанк-менеджер. changed - правки игрока поверх
// сгенерированного ландшафта, применяются при загрузке чанка.
func NewManager(opts Options, workers Queuer, resources *resource.Manager, changed map[vec.VoxelCoord]block.BlockID) *Manager {
	if opts.Size <= 0 {
		opts.Size = vec.DefaultChunkSize
	}
	overrides := make(map[vec.VoxelCoord]block.BlockID, len(changed))
	for v, id := range changed {
		overrides[v] = id
	}
	return &Manager{
		opts:      opts,
		workers:   workers,
		resources: resources,
		chunks:    make(map[vec.ChunkCoord]*Chunk),
		pending:   make(map[vec.ChunkCoord]struct{}),
		changed:   overrides,
	}
}

// GetTypeAt возвращает тип вокселя; false, если чанк не загружен.
func (m *Manager) GetTypeAt(v vec.VoxelCoord) (block.BlockID, bool) {
	c, l := vec.VoxelToChunk(v, m.opts.Size)
	ch, ok := m.chunks[c]
	if !ok {
		return block.AirBlockID, false
	}
	return ch.Voxels[l.Index(m.opts.Size)], true
}

// SetBlock записывает правку. Загруженный чанк обновляется сразу,
// незагруженный получит её при подгрузке.
func (m *Manager) SetBlock(v vec.VoxelCoord, id block.BlockID) {
	m.changed[v] = id

	c, l := vec.VoxelToChunk(v, m.opts.Size)
	if ch, ok := m.chunks[c]; ok {
		ch.Voxels[l.Index(m.opts.Size)] = id
		ch.Visible = m.countVisible(ch.Voxels)
	}
}

// ChangedBlocks возвращает копию правок игрока
func (m *Manager) ChangedBlocks() map[vec.VoxelCoord]block.BlockID {
	out := make(map[vec.VoxelCoord]block.BlockID, len(m.changed))
	for v, id := range m.changed {
		out[v] = id
	}
	return out
}

// SurroundingChunksCheck ставит в очередь генерацию недостающих чанков
// вокруг center, ближние первыми.
func (m *Manager) SurroundingChunksCheck(center vec.ChunkCoord) {
	m.center = center
	m.hasCenter = true

	r, vr := m.opts.RenderRadius, m.opts.VerticalRadius
	demand := make([]vec.ChunkCoord, 0, (2*r+1)*(2*r+1)*(2*vr+1))
	for dy := -vr; dy <= vr; dy++ {
		for dz := -r; dz <= r; dz++ {
			for dx := -r; dx <= r; dx++ {
				demand = append(demand, vec.ChunkCoord{X: center.X + dx, Y: center.Y + dy, Z: center.Z + dz})
			}
		}
	}
	sort.SliceStable(demand, func(i, j int) bool {
		return distanceSq(demand[i], center) < distanceSq(demand[j], center)
	})
	m.demand = demand

	queued := 0
	for _, c := range demand {
		if _, ok := m.chunks[c]; ok {
			continue
		}
		if _, ok := m.pending[c]; ok {
			continue
		}
		if err := m.workers.QueueChunk(c, m.stage); err != nil {
			// остальное доберём на следующей проверке
			logging.Debug("Очередь воркеров не приняла %s: %v", c, err)
			break
		}
		m.pending[c] = struct{}{}
		queued++
	}

	if queued > 0 {
		logging.LogChunkRequest(center, len(m.pending))
	}
}

func (m *Manager) stage(r worker.Reply) {
	m.staged = append(m.staged, r)
}

// Update подключает готовые чанки и выгружает дальние
func (m *Manager) Update() {
	for _, r := range m.staged {
		delete(m.pending, r.Chunk)
		if r.Err != nil {
			logging.Warn("Генерация %s не удалась: %v", r.Chunk, r.Err)
			continue
		}
		m.swapIn(r.Chunk, r.Voxels)
	}
	m.staged = m.staged[:0]

	if m.hasCenter {
		m.evict()
	}
	observability.ChunksLoaded.Set(float64(len(m.chunks)))
}

func (m *Manager) swapIn(c vec.ChunkCoord, voxels []block.BlockID) {
	size := m.opts.Size
	origin := c.Origin(size)
	for v, id := range m.changed {
		l := vec.LocalCoord{X: v.X - origin.X, Y: v.Y - origin.Y, Z: v.Z - origin.Z}
		if l.Within(size) {
			voxels[l.Index(size)] = id
		}
	}
	m.chunks[c] = &Chunk{Coord: c, Voxels: voxels, Visible: m.countVisible(voxels)}
}

func (m *Manager) countVisible(voxels []block.BlockID) int {
	n := 0
	for _, id := range voxels {
		if m.resources.Material(id).Visible {
			n++
		}
	}
	return n
}

func (m *Manager) evict() {
	maxH := m.opts.RenderRadius + m.opts.EvictMargin
	maxV := m.opts.VerticalRadius + m.opts.EvictMargin
	for c := range m.chunks {
		h, v := c.ChebyshevDistance(m.center)
		if h > maxH || v > maxV {
			delete(m.chunks, c)
			observability.ChunksEvictedTotal.Inc()
		}
	}
}

// IsReady сообщает, загружены ли все чанки последнего запроса
func (m *Manager) IsReady() bool {
	if !m.hasCenter {
		return false
	}
	for _, c := range m.demand {
		if _, ok := m.chunks[c]; !ok {
			return false
		}
	}
	return true
}

// Chunk возвращает загруженный чанк
func (m *Manager) Chunk(c vec.ChunkCoord) (*Chunk, bool) {
	ch, ok := m.chunks[c]
	return ch, ok
}

// Stats возвращает текущие счётчики
func (m *Manager) Stats() Stats {
	return Stats{
		Loaded:  len(m.chunks),
		Pending: len(m.pending),
		Staged:  len(m.staged),
		Demand:  len(m.demand),
		Center:  m.center,
	}
}

func distanceSq(a, b vec.ChunkCoord) int {
	return vec.Vec3(a).DistanceSq(vec.Vec3(b))
}
