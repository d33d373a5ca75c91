package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/annel0/voxelworld/internal/eventbus"
	"github.com/annel0/voxelworld/internal/logging"
	"github.com/annel0/voxelworld/internal/mesh"
	"github.com/annel0/voxelworld/internal/metrics"
	"github.com/annel0/voxelworld/internal/render"
	"github.com/annel0/voxelworld/internal/util"
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/world"
	"github.com/annel0/voxelworld/internal/world/block"
	"github.com/google/uuid"
)

// ErrChunkNotLoaded возвращается при запросе меша незагруженного чанка
var ErrChunkNotLoaded = errors.New("chunk not loaded")

// Options — параметры создания мира
type Options struct {
	Seed        int64
	Noise       util.Noise2D    // Если nil, используется шум Перлина с сидом Seed
	Blocks      *block.Registry // Если nil, используется встроенный набор
	HeightScale int
	UVs         render.UVSource // Если nil, используется раскладка по полосам
	Metrics     *metrics.WorldMetrics
	Bus         eventbus.EventBus // Если nil, события не публикуются
}

// meshEntry — кэшированный меш чанка
type meshEntry struct {
	batch *mesh.Batch
	dirty bool
}

// World связывает генератор, реестр чанков и кэш мешей.
// Меш чанка строится лениво при первом чтении и помечается устаревшим,
// когда рядом появляется новый чанк (меняются граничные грани).
type World struct {
	ID   uuid.UUID
	Seed int64

	Blocks    *block.Registry
	Generator *world.TerrainGenerator
	Chunks    *world.ChunkRegistry
	Builder   *mesh.Builder

	metrics *metrics.WorldMetrics
	logger  *logging.Logger
	bus     eventbus.EventBus

	mu     sync.Mutex
	meshes map[vec.Vec3]*meshEntry
	// gens растёт при каждой вставке чанка в координату или рядом с ней.
	// Меш, собранный при другом поколении, сохраняется устаревшим.
	gens map[vec.Vec3]uint64
}

// NewWorld создаёт мир без чанков
func NewWorld(opts Options) *World {
	blocks := opts.Blocks
	if blocks == nil {
		blocks = block.DefaultRegistry()
	}
	noise := opts.Noise
	if noise == nil {
		noise = util.NewDefaultPerlinNoise(opts.Seed)
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.NewWorldMetrics("voxel", nil)
	}

	gen := world.NewTerrainGenerator(noise)
	if opts.HeightScale > 0 {
		gen.HeightScale = opts.HeightScale
	}

	w := &World{
		ID:        uuid.New(),
		Seed:      opts.Seed,
		Blocks:    blocks,
		Generator: gen,
		Chunks:    world.NewChunkRegistry(gen, blocks),
		Builder:   mesh.NewBuilder(blocks, opts.UVs),
		metrics:   m,
		logger:    logging.GetWorldLogger(),
		bus:       opts.Bus,
		meshes:    make(map[vec.Vec3]*meshEntry),
		gens:      make(map[vec.Vec3]uint64),
	}
	w.Chunks.OnInsert = w.onChunkInserted

	return w
}

// Bootstrap заполняет сетку width x depth чанков на высоте y
func (w *World) Bootstrap(width, depth, y int) {
	start := time.Now()
	for x := 0; x < width; x++ {
		for z := 0; z < depth; z++ {
			w.Chunks.GetOrCreate(vec.Vec3{X: x, Y: y, Z: z})
		}
	}
	w.logger.Info("Мир %s: сгенерировано %d чанков (%dx%d) за %s", w.ID, w.Chunks.Len(), width, depth, time.Since(start))
}

// onChunkInserted учитывает новый чанк и помечает меши соседей устаревшими
func (w *World) onChunkInserted(chunk *world.Chunk) {
	w.metrics.ChunksGenerated.Inc()
	w.metrics.BlocksGenerated.Add(float64(chunk.Len()))
	w.logger.Debug("Чанк %v: %d блоков", chunk.Coords, chunk.Len())
	w.publish(eventbus.ChunkLoaded, chunk.Coords, chunk.Len(), 0)

	affected := []vec.Vec3{chunk.Coords}
	for _, face := range mesh.Faces {
		affected = append(affected, chunk.Coords.Add(face.Normal()))
	}

	var invalidated []vec.Vec3
	w.mu.Lock()
	for _, c := range affected {
		w.gens[c]++
		if e, ok := w.meshes[c]; ok && !e.dirty {
			e.dirty = true
			invalidated = append(invalidated, c)
		}
	}
	w.mu.Unlock()

	for _, c := range invalidated {
		w.publish(eventbus.MeshInvalidated, c, 0, 0)
	}
}

// publish отправляет событие мира в шину, если она подключена
func (w *World) publish(eventType string, coords vec.Vec3, blocks, quads int) {
	if w.bus == nil {
		return
	}
	ev, err := eventbus.NewEnvelope(w.ID.String(), eventType, eventbus.ChunkPayload{
		X: coords.X, Y: coords.Y, Z: coords.Z, Blocks: blocks, Quads: quads,
	})
	if err != nil {
		w.logger.Warn("Не удалось сформировать событие %s: %v", eventType, err)
		return
	}
	if err := w.bus.Publish(context.Background(), ev); err != nil {
		w.logger.Warn("Не удалось опубликовать событие %s: %v", eventType, err)
	}
}

// Mesh возвращает меш чанка, перестраивая его при необходимости
func (w *World) Mesh(coords vec.Vec3) (*mesh.Batch, error) {
	chunk, ok := w.Chunks.Get(coords)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrChunkNotLoaded, coords)
	}

	w.mu.Lock()
	e, ok := w.meshes[coords]
	if ok && !e.dirty {
		w.mu.Unlock()
		return e.batch, nil
	}
	generation := w.gens[coords]
	w.mu.Unlock()

	start := time.Now()
	batch, err := w.Builder.Build(chunk, w.Chunks)
	if err != nil {
		w.logger.Error("Ошибка построения меша чанка %v: %v", coords, err)
		return nil, err
	}
	w.metrics.MeshBuildDuration.Observe(time.Since(start).Seconds())
	w.metrics.MeshBuilds.Inc()
	w.metrics.FacesCulled.Add(float64(batch.Culled))
	for face, n := range batch.CountByFace() {
		w.metrics.MeshQuads.WithLabelValues(face.String()).Add(float64(n))
	}

	w.mu.Lock()
	stale := w.gens[coords] != generation
	w.meshes[coords] = &meshEntry{batch: batch, dirty: stale}
	w.mu.Unlock()
	if stale {
		w.logger.Debug("Меш чанка %v устарел во время сборки", coords)
	}
	w.publish(eventbus.MeshBuilt, coords, 0, len(batch.Quads))

	return batch, nil
}

// Meshes строит меши всех загруженных чанков в порядке координат
func (w *World) Meshes() ([]*mesh.Batch, error) {
	coords := w.Chunks.Coords()
	batches := make([]*mesh.Batch, 0, len(coords))
	for _, c := range coords {
		b, err := w.Mesh(c)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, nil
}

// Stats — сводка состояния мира
type Stats struct {
	WorldID     string `json:"world_id"`
	Seed        int64  `json:"seed"`
	Chunks      int    `json:"chunks"`
	Blocks      int    `json:"blocks"`
	Meshes      int    `json:"meshes"`
	DirtyMeshes int    `json:"dirty_meshes"`
}

// Stats возвращает сводку состояния мира
func (w *World) Stats() Stats {
	s := Stats{WorldID: w.ID.String(), Seed: w.Seed}
	for _, c := range w.Chunks.Coords() {
		if chunk, ok := w.Chunks.Get(c); ok {
			s.Chunks++
			s.Blocks += chunk.Len()
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	s.Meshes = len(w.meshes)
	for _, e := range w.meshes {
		if e.dirty {
			s.DirtyMeshes++
		}
	}
	return s
}
