package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/annel0/voxelworld/internal/app"
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatNoise даёт высоту 5 во всех столбцах
type flatNoise struct{}

func (flatNoise) Noise2D(x, y float64) float64 { return 0 }

func newTestServer(t *testing.T) (*RestServer, *app.World) {
	t.Helper()
	w := app.NewWorld(app.Options{Seed: 5, Noise: flatNoise{}})
	reg := prometheus.NewRegistry()
	return NewRestServer(Config{World: w, Registerer: reg, Gatherer: reg}), w
}

func doRequest(t *testing.T, rs *RestServer, method, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	rs.Handler().ServeHTTP(rec, httptest.NewRequest(method, path, nil))

	var body map[string]interface{}
	if rec.Header().Get("Content-Type") == "application/json; charset=utf-8" && rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealthAndStats(t *testing.T) {
	rs, w := newTestServer(t)
	w.Bootstrap(1, 1, 0)

	rec, body := doRequest(t, rs, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, w.ID.String(), body["world_id"])

	rec, body = doRequest(t, rs, http.MethodGet, "/api/stats")
	assert.Equal(t, http.StatusOK, rec.Code)
	stats := body["world"].(map[string]interface{})
	assert.Equal(t, 1.0, stats["chunks"])
	assert.Equal(t, float64(16*16*5), stats["blocks"])
}

func TestBlocksEndpoint(t *testing.T) {
	rs, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	rs.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/blocks", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var blocks []BlockTypeDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &blocks))
	require.Len(t, blocks, 4)
	assert.Equal(t, "glass", blocks[1].Name)
	assert.False(t, blocks[1].Solid)
}

func TestHeightAndBlockEndpoints(t *testing.T) {
	rs, w := newTestServer(t)
	w.Chunks.GetOrCreate(vec.Vec3{})

	rec, body := doRequest(t, rs, http.MethodGet, "/api/height?x=3&z=-4")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5.0, body["height"])

	rec, _ = doRequest(t, rs, http.MethodGet, "/api/height?x=a&z=1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = doRequest(t, rs, http.MethodGet, "/api/block?x=1&y=4&z=1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["present"])
	assert.Equal(t, 3.0, body["block"])
	assert.Equal(t, true, body["solid"])

	rec, body = doRequest(t, rs, http.MethodGet, "/api/block?x=1&y=5&z=1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["present"])
}

func TestChunkEndpoints(t *testing.T) {
	rs, _ := newTestServer(t)

	rec, _ := doRequest(t, rs, http.MethodGet, "/api/chunks/0/0/0")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body := doRequest(t, rs, http.MethodPost, "/api/chunks/0/0/0")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(16*16*5), body["blocks"])

	rec, _ = doRequest(t, rs, http.MethodPost, "/api/chunks/0/0/0")
	assert.Equal(t, http.StatusOK, rec.Code, "повторное создание возвращает существующий чанк")

	rec, body = doRequest(t, rs, http.MethodGet, "/api/chunks/0/0/0")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["blocks"], 16*16*5)

	rec, body = doRequest(t, rs, http.MethodGet, "/api/chunks")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["chunks"], 1)

	rec, _ = doRequest(t, rs, http.MethodGet, "/api/chunks/x/0/0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeshEndpoint(t *testing.T) {
	rs, _ := newTestServer(t)

	rec, _ := doRequest(t, rs, http.MethodGet, "/api/chunks/0/0/0/mesh")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	doRequest(t, rs, http.MethodPost, "/api/chunks/0/0/0")

	rec = httptest.NewRecorder()
	rs.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chunks/0/0/0/mesh", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Quads    []QuadDTO `json:"quads"`
		Vertices int       `json:"vertices"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	expected := 256 + 256 + 4*16*5
	assert.Len(t, resp.Quads, expected)
	assert.Equal(t, expected*4, resp.Vertices)
	assert.Equal(t, "bottom", resp.Quads[0].Face)
	assert.Equal(t, [2]float64{0.5, 0}, resp.Quads[0].UV[0])
}

func TestMetricsEndpoint(t *testing.T) {
	rs, _ := newTestServer(t)
	doRequest(t, rs, http.MethodGet, "/health")

	rec := httptest.NewRecorder()
	rs.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "voxel_api_http_request_duration_seconds")
}
