package world

import (
	"sync"
	"testing"

	"github.com/annel0/voxelworld/internal/util"
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(noise util.Noise2D) *ChunkRegistry {
	return NewChunkRegistry(NewTerrainGenerator(noise), block.DefaultRegistry())
}

func TestChunkRegistryGetOrCreateIdempotent(t *testing.T) {
	r := newTestRegistry(util.NewDefaultPerlinNoise(1))

	inserted := 0
	r.OnInsert = func(*Chunk) { inserted++ }

	first := r.GetOrCreate(vec.Vec3{X: 1, Y: 0, Z: 2})
	second := r.GetOrCreate(vec.Vec3{X: 1, Y: 0, Z: 2})

	assert.Same(t, first, second, "повторный вызов должен вернуть тот же чанк")
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, inserted, "чанк должен генерироваться один раз")
}

func TestChunkRegistryConcurrentGetOrCreate(t *testing.T) {
	r := newTestRegistry(util.NewDefaultPerlinNoise(2))

	var wg sync.WaitGroup
	results := make([]*Chunk, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.GetOrCreate(vec.Vec3{X: i % 2, Y: 0, Z: 0})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 2, r.Len())
	for i, c := range results {
		expected, ok := r.Get(vec.Vec3{X: i % 2, Y: 0, Z: 0})
		require.True(t, ok)
		assert.Same(t, expected, c)
	}
}

func TestChunkRegistryBlockTypeAtWorld(t *testing.T) {
	r := newTestRegistry(constNoise(0)) // высота 5 везде

	r.GetOrCreate(vec.Vec3{X: 0, Y: 0, Z: 0})
	r.GetOrCreate(vec.Vec3{X: -1, Y: 0, Z: 0})

	id, ok := r.BlockTypeAtWorld(vec.Vec3{X: 3, Y: 4, Z: 3})
	assert.True(t, ok)
	assert.Equal(t, block.GrassBlockID, id)

	// Отрицательные координаты попадают в чанк -1
	id, ok = r.BlockTypeAtWorld(vec.Vec3{X: -1, Y: 0, Z: 15})
	assert.True(t, ok)
	assert.Equal(t, block.DirtBlockID, id)
	assert.True(t, r.IsSolidAtWorld(vec.Vec3{X: -16, Y: 3, Z: 0}))

	// Воздух над поверхностью
	_, ok = r.BlockTypeAtWorld(vec.Vec3{X: 3, Y: 5, Z: 3})
	assert.False(t, ok)

	// Незагруженный чанк
	_, ok = r.BlockTypeAtWorld(vec.Vec3{X: 16, Y: 0, Z: 0})
	assert.False(t, ok)
	assert.False(t, r.IsSolidAtWorld(vec.Vec3{X: 16, Y: 0, Z: 0}))
	assert.False(t, r.IsSolidAtWorld(vec.Vec3{X: 0, Y: -1, Z: 0}))
}

func TestChunkRegistryInsertAndCoords(t *testing.T) {
	r := newTestRegistry(constNoise(0))

	glass, err := NewChunkFromBlocks(vec.Vec3{X: 2, Y: 0, Z: 0}, r.Blocks(), map[vec.Vec3]block.BlockID{
		{X: 0, Y: 0, Z: 0}: block.GlassBlockID,
	})
	require.NoError(t, err)
	r.Insert(glass)
	r.GetOrCreate(vec.Vec3{X: 0, Y: 0, Z: 1})
	r.GetOrCreate(vec.Vec3{X: 0, Y: 0, Z: 0})

	assert.Equal(t, []vec.Vec3{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 1}, {X: 2, Y: 0, Z: 0}}, r.Coords())

	id, ok := r.BlockTypeAtWorld(vec.Vec3{X: 32, Y: 0, Z: 0})
	assert.True(t, ok)
	assert.Equal(t, block.GlassBlockID, id)
	assert.False(t, r.IsSolidAtWorld(vec.Vec3{X: 32, Y: 0, Z: 0}), "стекло не твёрдое")
}

func TestChunkConstructionOrderIndependent(t *testing.T) {
	noise := util.NewDefaultPerlinNoise(99)
	a := newTestRegistry(noise)
	b := newTestRegistry(noise)

	coords := []vec.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 1}}
	for _, c := range coords {
		a.GetOrCreate(c)
	}
	for i := len(coords) - 1; i >= 0; i-- {
		b.GetOrCreate(coords[i])
	}

	for _, c := range coords {
		ca, _ := a.Get(c)
		cb, _ := b.Get(c)
		assert.Equal(t, ca.Positions(), cb.Positions())
		for _, pos := range ca.Positions() {
			ida, _ := ca.BlockAt(pos)
			idb, _ := cb.BlockAt(pos)
			assert.Equal(t, ida, idb)
		}
	}
}
