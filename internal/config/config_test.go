package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/annel0/voxelworld/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VOXEL_CONFIG", "")
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.World.Width)
	assert.Equal(t, 8, cfg.World.Depth)
	assert.Equal(t, 10, cfg.World.HeightScale)
	assert.Equal(t, int32(3), cfg.Noise.Octaves)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
world:
  seed: 1234
  width: 4
  depth: 2
noise:
  octaves: 5
server:
  rest_port: 9000
blocks:
  - id: 0
    name: stone
    texture: stone.png
    solid: true
  - id: 1
    name: water
    texture: water.png
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(1234), cfg.World.GetSeed())
	assert.Equal(t, 4, cfg.World.Width)
	assert.Equal(t, 2, cfg.World.Depth)
	assert.Equal(t, 10, cfg.World.HeightScale, "незаданные поля берутся по умолчанию")
	assert.Equal(t, int32(5), cfg.Noise.Octaves)
	assert.Equal(t, 9000, cfg.Server.GetRESTPort())

	reg, err := cfg.BlockRegistry()
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())
	water, err := reg.Properties(block.BlockID(1))
	require.NoError(t, err)
	assert.False(t, water.Solid)
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, "world:\n  width: 3\n")
	t.Setenv("VOXEL_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.World.Width)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "world: ["))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "world:\n  height_scale: 40\n"))
	assert.Error(t, err)
}

func TestBlockRegistryDuplicateID(t *testing.T) {
	cfg := Default()
	cfg.Blocks = []BlockConfig{
		{ID: 1, Name: "a", Texture: "a.png"},
		{ID: 1, Name: "b", Texture: "b.png"},
	}
	_, err := cfg.BlockRegistry()
	assert.ErrorIs(t, err, block.ErrInvalidBlock)

	cfg.Blocks = nil
	reg, err := cfg.BlockRegistry()
	require.NoError(t, err)
	assert.Equal(t, 4, reg.Len())
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("VOXEL_SEED", "77")
	t.Setenv("VOXEL_REST_PORT", "7070")

	w := WorldConfig{}
	assert.Equal(t, int64(77), w.GetSeed())
	s := ServerConfig{}
	assert.Equal(t, 7070, s.GetRESTPort())

	t.Setenv("VOXEL_SEED", "")
	t.Setenv("VOXEL_REST_PORT", "")
	assert.NotZero(t, w.GetSeed(), "без сида выбирается случайный")
	assert.Equal(t, 8088, s.GetRESTPort())
}

func TestOTLPEndpointFallback(t *testing.T) {
	t.Setenv("VOXEL_OTLP_ENDPOINT", "collector:4318")

	s := ServerConfig{}
	assert.Equal(t, "collector:4318", s.GetOTLPEndpoint())

	s.OTLPEndpoint = "localhost:4318"
	assert.Equal(t, "localhost:4318", s.GetOTLPEndpoint())
}
