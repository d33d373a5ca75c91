package config

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/annel0/voxelworld/internal/util"
	"github.com/annel0/voxelworld/internal/world/block"
	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения
type Config struct {
	World    WorldConfig    `yaml:"world"`
	Noise    NoiseConfig    `yaml:"noise"`
	Blocks   []BlockConfig  `yaml:"blocks"`
	Textures TexturesConfig `yaml:"textures"`
	Server   ServerConfig   `yaml:"server"`
}

type WorldConfig struct {
	Seed        int64 `yaml:"seed"` // 0 — случайный сид при каждом запуске
	Width       int   `yaml:"width"`
	Depth       int   `yaml:"depth"`
	ChunkY      int   `yaml:"chunk_y"`
	HeightScale int   `yaml:"height_scale"`
}

type NoiseConfig struct {
	Alpha   float64 `yaml:"alpha"`
	Beta    float64 `yaml:"beta"`
	Octaves int32   `yaml:"octaves"`
}

// BlockConfig описывает тип блока; при наличии хотя бы одной записи
// таблица полностью заменяет встроенный набор
type BlockConfig struct {
	ID      uint16 `yaml:"id"`
	Name    string `yaml:"name"`
	Texture string `yaml:"texture"`
	Solid   bool   `yaml:"solid"`
}

type TexturesConfig struct {
	Dir string `yaml:"dir"`
}

type ServerConfig struct {
	RESTPort int    `yaml:"rest_port"`
	LogDir   string `yaml:"log_dir"`
	LogLevel string `yaml:"log_level"`
	// OTLPEndpoint — адрес коллектора трасс (host:port); пусто — трассы не экспортируются
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Default возвращает конфигурацию по умолчанию: сетка 8x8 на высоте 0
func Default() *Config {
	return &Config{
		World: WorldConfig{Width: 8, Depth: 8, HeightScale: 10},
		Noise: NoiseConfig{
			Alpha:   util.DefaultNoiseAlpha,
			Beta:    util.DefaultNoiseBeta,
			Octaves: util.DefaultNoiseOctaves,
		},
		Textures: TexturesConfig{Dir: "assets/textures"},
		Server:   ServerConfig{LogLevel: "info"},
	}
}

// GetSeed возвращает сид с приоритетом: config -> env -> случайный
func (w *WorldConfig) GetSeed() int64 {
	if w.Seed != 0 {
		return w.Seed
	}
	if envVal := os.Getenv("VOXEL_SEED"); envVal != "" {
		if seed, err := strconv.ParseInt(envVal, 10, 64); err == nil && seed != 0 {
			return seed
		}
	}
	return rand.New(rand.NewSource(time.Now().UnixNano())).Int63n(100000) + 1
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "VOXEL_REST_PORT", 8088)
}

// GetOTLPEndpoint возвращает адрес OTLP коллектора: config -> VOXEL_OTLP_ENDPOINT
func (s *ServerConfig) GetOTLPEndpoint() string {
	if s.OTLPEndpoint != "" {
		return s.OTLPEndpoint
	}
	return os.Getenv("VOXEL_OTLP_ENDPOINT")
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// BlockRegistry строит реестр блоков из конфигурации
func (c *Config) BlockRegistry() (*block.Registry, error) {
	if len(c.Blocks) == 0 {
		return block.DefaultRegistry(), nil
	}

	defs := make(map[block.BlockID]block.Properties, len(c.Blocks))
	for _, b := range c.Blocks {
		id := block.BlockID(b.ID)
		if _, dup := defs[id]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", block.ErrInvalidBlock, b.ID)
		}
		defs[id] = block.Properties{Name: b.Name, Texture: b.Texture, Solid: b.Solid}
	}
	return block.NewRegistry(defs)
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV VOXEL_CONFIG или возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("VOXEL_CONFIG")
		if path == "" {
			return cfg, nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения конфигурации %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.World.Width < 0 || c.World.Depth < 0 {
		return fmt.Errorf("некорректный размер мира %dx%d", c.World.Width, c.World.Depth)
	}
	if c.World.HeightScale < 0 || c.World.HeightScale > 16 {
		return fmt.Errorf("height_scale должен быть в [0, 16], получено %d", c.World.HeightScale)
	}
	return nil
}
