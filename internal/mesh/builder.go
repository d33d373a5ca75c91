package mesh

import (
	"fmt"

	"github.com/annel0/voxelworld/internal/render"
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/world"
	"github.com/annel0/voxelworld/internal/world/block"
)

// SolidityLookup отвечает на вопрос о твёрдости блока по мировым координатам.
// Реализуется world.ChunkRegistry.
type SolidityLookup interface {
	IsSolidAtWorld(pos vec.Vec3) bool
}

// Quad — текстурированный четырёхугольник одной видимой грани
type Quad struct {
	Block    block.BlockID
	Face     Face
	Texture  string
	Vertices [4]vec.Vec3Float // Мировые координаты, обход против часовой стрелки
	UV       [4]vec.Vec2Float
}

// Batch — производное представление видимой поверхности чанка.
// Становится недействительным при любом изменении блоков чанка.
type Batch struct {
	Chunk  vec.Vec3
	Quads  []Quad
	Culled int // Количество скрытых граней
}

// VertexCount возвращает общее число вершин
func (b *Batch) VertexCount() int {
	return len(b.Quads) * 4
}

// CountByFace возвращает количество квадов по каждой грани
func (b *Batch) CountByFace() map[Face]int {
	counts := make(map[Face]int, len(Faces))
	for _, q := range b.Quads {
		counts[q.Face]++
	}
	return counts
}

// Builder строит меш чанка с отсечением скрытых граней
type Builder struct {
	Blocks *block.Registry
	UVs    render.UVSource
}

// NewBuilder создаёт построитель мешей; uvs == nil означает раскладку по полосам
func NewBuilder(blocks *block.Registry, uvs render.UVSource) *Builder {
	if uvs == nil {
		uvs = render.StripLayout{}
	}
	return &Builder{Blocks: blocks, UVs: uvs}
}

// Build возвращает по одному квадрату на каждую открытую грань каждого блока чанка.
// Соседи внутри чанка проверяются через сам чанк, за его пределами — через
// neighbours. Отсутствующий чанк-сосед считается воздухом, поэтому на краю
// сгенерированного мира появляется видимая стенка.
func (b *Builder) Build(chunk *world.Chunk, neighbours SolidityLookup) (*Batch, error) {
	batch := &Batch{Chunk: chunk.Coords}
	origin := chunk.Origin()

	for _, local := range chunk.Positions() {
		id, _ := chunk.BlockAt(local)
		props, err := b.Blocks.Properties(id)
		if err != nil {
			return nil, fmt.Errorf("чанк %v, блок %v: %w", chunk.Coords, local, err)
		}

		low := origin.Add(local)
		for _, face := range Faces {
			if b.neighbourSolid(chunk, neighbours, local, face) {
				batch.Culled++
				continue
			}
			batch.Quads = append(batch.Quads, Quad{
				Block:    id,
				Face:     face,
				Texture:  props.Texture,
				Vertices: face.Vertices(low),
				UV:       b.UVs.UV(id, face.Role()),
			})
		}
	}

	return batch, nil
}

func (b *Builder) neighbourSolid(chunk *world.Chunk, neighbours SolidityLookup, local vec.Vec3, face Face) bool {
	n := local.Add(face.Normal())
	if n.InChunkBounds() {
		return chunk.IsSolid(n)
	}
	if neighbours == nil {
		return false
	}
	return neighbours.IsSolidAtWorld(chunk.Origin().Add(n))
}
