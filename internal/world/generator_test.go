package world

import (
	"testing"

	"github.com/annel0/voxelworld/internal/util"
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constNoise возвращает одно и то же значение во всех точках
type constNoise float64

func (n constNoise) Noise2D(x, y float64) float64 { return float64(n) }

// recordingNoise запоминает координаты выборки
type recordingNoise struct {
	xs, ys []float64
}

func (n *recordingNoise) Noise2D(x, y float64) float64 {
	n.xs = append(n.xs, x)
	n.ys = append(n.ys, y)
	return 0
}

func TestHeightAtFormula(t *testing.T) {
	cases := []struct {
		noise  float64
		height int
	}{
		{-1, 0},
		{0, 5},
		{1, 10},
		{0.3, 6},   // (0.15+0.5)*10 = 6.5
		{-0.45, 2}, // (-0.225+0.5)*10 = 2.75
		{-5, 0},    // значение за пределами диапазона ограничивается
		{5, 10},
	}

	for _, c := range cases {
		g := NewTerrainGenerator(constNoise(c.noise))
		assert.Equal(t, c.height, g.HeightAt(3, -7), "шум %f", c.noise)
	}
}

func TestHeightAtSamplesScaledCoordinates(t *testing.T) {
	rec := &recordingNoise{}
	g := NewTerrainGenerator(rec)

	g.HeightAt(0, 0)
	g.HeightAt(16, -8)

	require.Len(t, rec.xs, 2)
	assert.Equal(t, []float64{-0.5, 0.5}, rec.xs)
	assert.Equal(t, []float64{-0.5, -1.0}, rec.ys)
}

func TestHeightAtDeterministic(t *testing.T) {
	g1 := NewTerrainGenerator(util.NewDefaultPerlinNoise(2024))
	g2 := NewTerrainGenerator(util.NewDefaultPerlinNoise(2024))

	// Второй генератор опрашивается в обратном порядке
	heights := make(map[[2]int]int)
	for x := -20; x < 20; x++ {
		for z := -20; z < 20; z++ {
			h := g1.HeightAt(x, z)
			assert.GreaterOrEqual(t, h, 0)
			assert.LessOrEqual(t, h, DefaultHeightScale)
			heights[[2]int{x, z}] = h
		}
	}
	for x := 19; x >= -20; x-- {
		for z := 19; z >= -20; z-- {
			assert.Equal(t, heights[[2]int{x, z}], g2.HeightAt(x, z))
			assert.Equal(t, heights[[2]int{x, z}], g1.HeightAt(x, z))
		}
	}
}

func TestColumnBlocks(t *testing.T) {
	g := NewTerrainGenerator(constNoise(0))

	assert.Empty(t, g.ColumnBlocks(0), "нулевая высота не даёт блоков")

	column := g.ColumnBlocks(1)
	require.Len(t, column, 1)
	assert.Equal(t, ColumnEntry{LocalY: 0, Block: block.GrassBlockID}, column[0])

	column = g.ColumnBlocks(5)
	require.Len(t, column, 5)
	surface := 0
	for i, e := range column {
		assert.Equal(t, i, e.LocalY)
		if e.Block == block.GrassBlockID {
			surface++
			assert.Equal(t, 4, e.LocalY, "поверхность должна быть сверху")
		} else {
			assert.Equal(t, block.DirtBlockID, e.Block)
		}
	}
	assert.Equal(t, 1, surface)
}

func TestPerlinGoldenColumn(t *testing.T) {
	g := NewTerrainGenerator(util.NewDefaultPerlinNoise(42))

	// Эталонные высоты для go-perlin (alpha=2, beta=2, n=3), сид 42
	assert.Equal(t, 4, g.HeightAt(0, 0))
	assert.Equal(t, 2, g.HeightAt(5, 9))

	chunk := GenerateChunk(vec.Vec3{}, g, block.DefaultRegistry())
	want := []block.BlockID{block.DirtBlockID, block.DirtBlockID, block.DirtBlockID, block.GrassBlockID}
	for y, id := range want {
		got, ok := chunk.BlockAt(vec.Vec3{X: 0, Y: y, Z: 0})
		require.True(t, ok, "y=%d", y)
		assert.Equal(t, id, got, "y=%d", y)
	}
	_, ok := chunk.BlockAt(vec.Vec3{X: 0, Y: 4, Z: 0})
	assert.False(t, ok, "над поверхностью воздух")
}
