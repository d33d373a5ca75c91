package world

import (
	"math"

	"github.com/annel0/voxelworld/internal/util"
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/world/block"
)

// Константы генерации по умолчанию
const (
	DefaultHeightScale = 10   // Максимальная высота столбца
	DefaultNoisePeriod = 16.0 // Период шума в блоках
	noiseOffset        = 0.5  // Смещение координат шума
)

// ColumnEntry описывает один блок столбца ландшафта
type ColumnEntry struct {
	LocalY int
	Block  block.BlockID
}

// TerrainGenerator строит карту высот по двумерному шуму.
// Не хранит состояния чанков и может вызываться из разных горутин:
// шум только читается.
type TerrainGenerator struct {
	noise        util.Noise2D
	HeightScale  int           // Множитель нормированного шума
	Period       float64       // Делитель мировых координат перед выборкой шума
	SurfaceBlock block.BlockID // Верхний слой столбца
	FillBlock    block.BlockID // Все слои ниже поверхности
}

// NewTerrainGenerator создаёт генератор ландшафта над переданным шумом
func NewTerrainGenerator(noise util.Noise2D) *TerrainGenerator {
	return &TerrainGenerator{
		noise:        noise,
		HeightScale:  DefaultHeightScale,
		Period:       DefaultNoisePeriod,
		SurfaceBlock: block.GrassBlockID,
		FillBlock:    block.DirtBlockID,
	}
}

// HeightAt возвращает высоту столбца в мировых координатах (x, z).
// Для фиксированного шума функция чистая.
func (g *TerrainGenerator) HeightAt(worldX, worldZ int) int {
	n := g.noise.Noise2D(float64(worldX)/g.Period-noiseOffset, float64(worldZ)/g.Period-noiseOffset)
	n = util.Clamp(n, -1, 1)

	height := int(math.Floor((n/2 + 0.5) * float64(g.HeightScale)))
	if height < 0 {
		return 0
	}
	if height > vec.ChunkSize {
		return vec.ChunkSize
	}
	return height
}

// ColumnBlocks возвращает блоки столбца высоты height снизу вверх:
// верхний блок — поверхность, остальные — заполнитель
func (g *TerrainGenerator) ColumnBlocks(height int) []ColumnEntry {
	if height <= 0 {
		return nil
	}

	column := make([]ColumnEntry, 0, height)
	for y := 0; y < height; y++ {
		id := g.FillBlock
		if y == height-1 {
			id = g.SurfaceBlock
		}
		column = append(column, ColumnEntry{LocalY: y, Block: id})
	}
	return column
}
