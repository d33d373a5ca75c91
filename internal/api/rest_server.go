package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/annel0/voxelworld/internal/app"
	"github.com/annel0/voxelworld/internal/logging"
	"github.com/annel0/voxelworld/internal/mesh"
	"github.com/annel0/voxelworld/internal/middleware"
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/world/block"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RestServer представляет REST API для просмотра мира
type RestServer struct {
	router  *gin.Engine
	world   *app.World
	port    string
	metrics *ServerMetrics
	logger  *logging.Logger
	server  *http.Server
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port       string                // порт для запуска сервера
	World      *app.World            // мир, который обслуживает сервер
	Registerer prometheus.Registerer // регистр HTTP-метрик
	Gatherer   prometheus.Gatherer   // источник для /metrics
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}
	if config.Gatherer == nil {
		config.Gatherer = prometheus.DefaultGatherer
	}

	// Устанавливаем режим релиза для gin
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	logger := logging.GetAPILogger()

	// === Observability middleware ===
	router.Use(otelgin.Middleware("voxel_api"))
	router.Use(middleware.NewRequestLogger(logger).Handler())

	promMw := middleware.NewPrometheusMiddleware("voxel_api", config.Registerer)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, config.Gatherer)

	server := &RestServer{
		router:  router,
		world:   config.World,
		port:    config.Port,
		metrics: NewServerMetrics(),
		logger:  logger,
	}

	// Настраиваем маршруты
	server.setupRoutes()

	return server
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	rs.router.GET("/health", rs.handleHealth)

	api := rs.router.Group("/api")
	{
		api.GET("/stats", rs.handleStats)
		api.GET("/blocks", rs.handleBlocks)
		api.GET("/height", rs.handleHeight)
		api.GET("/block", rs.handleBlockAt)

		chunks := api.Group("/chunks")
		chunks.GET("", rs.handleListChunks)
		chunks.GET("/:x/:y/:z", rs.handleGetChunk)
		chunks.POST("/:x/:y/:z", rs.handleCreateChunk)
		chunks.GET("/:x/:y/:z/mesh", rs.handleGetMesh)
	}
}

// Handler возвращает http.Handler сервера (используется в тестах)
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// Start запускает HTTP сервер в отдельной горутине
func (rs *RestServer) Start() {
	rs.server = &http.Server{
		Addr:              rs.port,
		Handler:           rs.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		rs.logger.Info("🌐 REST API слушает %s", rs.port)
		if err := rs.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rs.logger.Error("❌ Ошибка REST API: %v", err)
		}
	}()
}

// Stop останавливает HTTP сервер
func (rs *RestServer) Stop(ctx context.Context) error {
	if rs.server == nil {
		return nil
	}
	return rs.server.Shutdown(ctx)
}

func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"world_id": rs.world.ID.String(),
		"uptime":   rs.metrics.GetUptime(),
	})
}

func (rs *RestServer) handleStats(c *gin.Context) {
	resp := gin.H{
		"world":     rs.world.Stats(),
		"uptime":    rs.metrics.GetUptime(),
		"memory_mb": rs.metrics.GetMemoryUsage(),
	}
	if cpu, err := rs.metrics.GetCPUUsage(); err == nil {
		resp["cpu_percent"] = cpu
	}
	if rss, err := rs.metrics.GetRSS(); err == nil {
		resp["rss_mb"] = rss
	}
	c.JSON(http.StatusOK, resp)
}

// BlockTypeDTO описывает тип блока в ответе API
type BlockTypeDTO struct {
	ID      block.BlockID `json:"id"`
	Name    string        `json:"name"`
	Texture string        `json:"texture"`
	Solid   bool          `json:"solid"`
}

func (rs *RestServer) handleBlocks(c *gin.Context) {
	blocks := rs.world.Blocks
	out := make([]BlockTypeDTO, 0, blocks.Len())
	for _, id := range blocks.IDs() {
		p, err := blocks.Properties(id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out = append(out, BlockTypeDTO{ID: id, Name: p.Name, Texture: p.Texture, Solid: p.Solid})
	}
	c.JSON(http.StatusOK, out)
}

func (rs *RestServer) handleHeight(c *gin.Context) {
	x, errX := strconv.Atoi(c.Query("x"))
	z, errZ := strconv.Atoi(c.Query("z"))
	if errX != nil || errZ != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "параметры x и z должны быть целыми"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"x": x, "z": z, "height": rs.world.Generator.HeightAt(x, z)})
}

func (rs *RestServer) handleBlockAt(c *gin.Context) {
	pos, err := parseVec3(c.Query("x"), c.Query("y"), c.Query("z"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, ok := rs.world.Chunks.BlockTypeAtWorld(pos)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"position": pos, "present": false, "solid": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"position": pos,
		"present":  true,
		"block":    id,
		"solid":    rs.world.Blocks.IsSolid(id),
	})
}

func (rs *RestServer) handleListChunks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"chunks": rs.world.Chunks.Coords()})
}

// ChunkBlockDTO — блок чанка в локальных координатах
type ChunkBlockDTO struct {
	X     int           `json:"x"`
	Y     int           `json:"y"`
	Z     int           `json:"z"`
	Block block.BlockID `json:"block"`
}

func (rs *RestServer) handleGetChunk(c *gin.Context) {
	coords, ok := rs.chunkCoords(c)
	if !ok {
		return
	}

	chunk, exists := rs.world.Chunks.Get(coords)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("чанк %v не загружен", coords)})
		return
	}

	blocks := make([]ChunkBlockDTO, 0, chunk.Len())
	for _, pos := range chunk.Positions() {
		id, _ := chunk.BlockAt(pos)
		blocks = append(blocks, ChunkBlockDTO{X: pos.X, Y: pos.Y, Z: pos.Z, Block: id})
	}
	c.JSON(http.StatusOK, gin.H{"coords": coords, "origin": chunk.Origin(), "blocks": blocks})
}

func (rs *RestServer) handleCreateChunk(c *gin.Context) {
	coords, ok := rs.chunkCoords(c)
	if !ok {
		return
	}

	_, existed := rs.world.Chunks.Get(coords)
	chunk := rs.world.Chunks.GetOrCreate(coords)

	status := http.StatusCreated
	if existed {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"coords": chunk.Coords, "blocks": chunk.Len()})
}

// QuadDTO — квад меша в ответе API
type QuadDTO struct {
	Block    block.BlockID `json:"block"`
	Face     string        `json:"face"`
	Texture  string        `json:"texture"`
	Vertices [4][3]float64 `json:"vertices"`
	UV       [4][2]float64 `json:"uv"`
}

func (rs *RestServer) handleGetMesh(c *gin.Context) {
	coords, ok := rs.chunkCoords(c)
	if !ok {
		return
	}

	batch, err := rs.world.Mesh(coords)
	if err != nil {
		if errors.Is(err, app.ErrChunkNotLoaded) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"coords":   batch.Chunk,
		"quads":    quadsToDTO(batch.Quads),
		"vertices": batch.VertexCount(),
		"culled":   batch.Culled,
	})
}

func quadsToDTO(quads []mesh.Quad) []QuadDTO {
	out := make([]QuadDTO, len(quads))
	for i, q := range quads {
		dto := QuadDTO{Block: q.Block, Face: q.Face.String(), Texture: q.Texture}
		for k := 0; k < 4; k++ {
			v := q.Vertices[k]
			dto.Vertices[k] = [3]float64{v.X, v.Y, v.Z}
			dto.UV[k] = [2]float64{q.UV[k].X, q.UV[k].Y}
		}
		out[i] = dto
	}
	return out
}

// chunkCoords разбирает координаты чанка из пути; при ошибке отвечает 400
func (rs *RestServer) chunkCoords(c *gin.Context) (vec.Vec3, bool) {
	coords, err := parseVec3(c.Param("x"), c.Param("y"), c.Param("z"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return vec.Vec3{}, false
	}
	return coords, true
}

func parseVec3(xs, ys, zs string) (vec.Vec3, error) {
	x, errX := strconv.Atoi(xs)
	y, errY := strconv.Atoi(ys)
	z, errZ := strconv.Atoi(zs)
	if errX != nil || errY != nil || errZ != nil {
		return vec.Vec3{}, fmt.Errorf("координаты должны быть целыми: %q, %q, %q", xs, ys, zs)
	}
	return vec.Vec3{X: x, Y: y, Z: z}, nil
}
