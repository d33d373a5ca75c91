package world

import (
	"sort"
	"sync"

	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/world/block"
)

// ChunkRegistry владеет всеми загруженными чанками и разрешает запросы
// по мировым координатам через границы чанков.
type ChunkRegistry struct {
	mu     sync.RWMutex
	chunks map[vec.Vec3]*Chunk

	generator *TerrainGenerator
	blocks    *block.Registry

	// OnInsert вызывается после публикации нового чанка (вне блокировки)
	OnInsert func(chunk *Chunk)
}

// NewChunkRegistry создаёт пустой реестр чанков
func NewChunkRegistry(generator *TerrainGenerator, blocks *block.Registry) *ChunkRegistry {
	return &ChunkRegistry{
		chunks:    make(map[vec.Vec3]*Chunk),
		generator: generator,
		blocks:    blocks,
	}
}

// GetOrCreate возвращает существующий чанк или генерирует новый.
// Генерация выполняется под блокировкой записи, поэтому каждая координата
// генерируется ровно один раз, а читатели видят только готовые чанки.
func (r *ChunkRegistry) GetOrCreate(coords vec.Vec3) *Chunk {
	if chunk, ok := r.Get(coords); ok {
		return chunk
	}

	r.mu.Lock()
	// Проверяем еще раз на случай гонки
	if chunk, ok := r.chunks[coords]; ok {
		r.mu.Unlock()
		return chunk
	}
	chunk := GenerateChunk(coords, r.generator, r.blocks)
	r.chunks[coords] = chunk
	hook := r.OnInsert
	r.mu.Unlock()

	if hook != nil {
		hook(chunk)
	}
	return chunk
}

// Insert публикует готовый чанк, заменяя существующий с теми же координатами
func (r *ChunkRegistry) Insert(chunk *Chunk) {
	r.mu.Lock()
	r.chunks[chunk.Coords] = chunk
	hook := r.OnInsert
	r.mu.Unlock()

	if hook != nil {
		hook(chunk)
	}
}

// Get возвращает чанк по координатам сетки
func (r *ChunkRegistry) Get(coords vec.Vec3) (*Chunk, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chunk, ok := r.chunks[coords]
	return chunk, ok
}

// BlockTypeAtWorld возвращает ID блока по мировым координатам.
// Если чанк не загружен или позиция пуста, ok == false.
func (r *ChunkRegistry) BlockTypeAtWorld(world vec.Vec3) (block.BlockID, bool) {
	chunk, ok := r.Get(world.ToChunkCoords())
	if !ok {
		return 0, false
	}
	return chunk.BlockAt(world.LocalInChunk())
}

// IsSolidAtWorld проверяет твёрдость блока по мировым координатам
func (r *ChunkRegistry) IsSolidAtWorld(world vec.Vec3) bool {
	id, ok := r.BlockTypeAtWorld(world)
	if !ok {
		return false
	}
	return r.blocks.IsSolid(id)
}

// Len возвращает количество загруженных чанков
func (r *ChunkRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.chunks)
}

// Coords возвращает координаты загруженных чанков в порядке (x, y, z)
func (r *ChunkRegistry) Coords() []vec.Vec3 {
	r.mu.RLock()
	coords := make([]vec.Vec3, 0, len(r.chunks))
	for c := range r.chunks {
		coords = append(coords, c)
	}
	r.mu.RUnlock()

	sort.Slice(coords, func(i, j int) bool {
		a, b := coords[i], coords[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
	return coords
}

// Generator возвращает генератор ландшафта реестра
func (r *ChunkRegistry) Generator() *TerrainGenerator {
	return r.generator
}

// Blocks возвращает реестр типов блоков
func (r *ChunkRegistry) Blocks() *block.Registry {
	return r.blocks
}
