package world

import (
	"errors"
	"fmt"
	"sort"

	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/world/block"
)

// ErrOutOfBounds возвращается при попытке записать блок вне границ чанка
var ErrOutOfBounds = errors.New("local coordinate out of chunk bounds")

// Chunk представляет участок мира размером 16x16x16 блоков.
// Карта блоков разреженная: отсутствие записи означает воздух.
// После создания содержимое чанка не меняется.
type Chunk struct {
	Coords vec.Vec3 // Координаты чанка в сетке чанков

	blocks   map[vec.Vec3]block.BlockID
	registry *block.Registry
}

func newChunk(coords vec.Vec3, registry *block.Registry) *Chunk {
	return &Chunk{
		Coords:   coords,
		blocks:   make(map[vec.Vec3]block.BlockID),
		registry: registry,
	}
}

// GenerateChunk создаёт чанк по карте высот генератора.
// Зависит только от координат и генератора, но не от других чанков.
func GenerateChunk(coords vec.Vec3, gen *TerrainGenerator, registry *block.Registry) *Chunk {
	chunk := newChunk(coords, registry)
	origin := chunk.Origin()

	for x := 0; x < vec.ChunkSize; x++ {
		for z := 0; z < vec.ChunkSize; z++ {
			height := gen.HeightAt(origin.X+x, origin.Z+z)
			for _, entry := range gen.ColumnBlocks(height) {
				chunk.blocks[vec.Vec3{X: x, Y: entry.LocalY, Z: z}] = entry.Block
			}
		}
	}

	return chunk
}

// NewChunkFromBlocks создаёт чанк с заданным содержимым.
// Ключи вне [0, 15] отклоняются с ErrOutOfBounds,
// незарегистрированные типы блоков с block.ErrUnknownBlockType.
func NewChunkFromBlocks(coords vec.Vec3, registry *block.Registry, blocks map[vec.Vec3]block.BlockID) (*Chunk, error) {
	chunk := newChunk(coords, registry)
	for pos, id := range blocks {
		if !pos.InChunkBounds() {
			return nil, fmt.Errorf("%w: %v in chunk %v", ErrOutOfBounds, pos, coords)
		}
		if !registry.IsValidBlockID(id) {
			return nil, fmt.Errorf("%w: %d at %v in chunk %v", block.ErrUnknownBlockType, id, pos, coords)
		}
		chunk.blocks[pos] = id
	}
	return chunk, nil
}

// Origin возвращает мировые координаты угла чанка
func (c *Chunk) Origin() vec.Vec3 {
	return c.Coords.ChunkOrigin()
}

// BlockAt возвращает ID блока по локальным координатам.
// Пустые и выходящие за границы позиции дают ok == false.
func (c *Chunk) BlockAt(local vec.Vec3) (block.BlockID, bool) {
	if !local.InChunkBounds() {
		return 0, false
	}
	id, ok := c.blocks[local]
	return id, ok
}

// IsSolid возвращает true, если в позиции есть твёрдый блок
func (c *Chunk) IsSolid(local vec.Vec3) bool {
	id, ok := c.BlockAt(local)
	if !ok {
		return false
	}
	return c.registry.IsSolid(id)
}

// Len возвращает количество занятых позиций
func (c *Chunk) Len() int {
	return len(c.blocks)
}

// Positions возвращает занятые позиции в порядке (y, z, x)
func (c *Chunk) Positions() []vec.Vec3 {
	positions := make([]vec.Vec3, 0, len(c.blocks))
	for pos := range c.blocks {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool {
		a, b := positions[i], positions[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.X < b.X
	})
	return positions
}

// Range обходит блоки чанка в порядке Positions, пока fn возвращает true
func (c *Chunk) Range(fn func(local vec.Vec3, id block.BlockID) bool) {
	for _, pos := range c.Positions() {
		if !fn(pos, c.blocks[pos]) {
			return
		}
	}
}

// Registry возвращает реестр блоков, с которым создан чанк
func (c *Chunk) Registry() *block.Registry {
	return c.registry
}
