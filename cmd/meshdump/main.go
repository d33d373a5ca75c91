package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/annel0/voxelworld/internal/app"
	"github.com/annel0/voxelworld/internal/config"
	"github.com/annel0/voxelworld/internal/mesh"
	"github.com/annel0/voxelworld/internal/util"
	"github.com/klauspost/compress/gzip"
)

func main() {
	var (
		configPath = flag.String("config", "", "Путь к YAML конфигурации")
		output     = flag.String("o", "world.obj", "Выходной файл OBJ (.gz — сжатие gzip)")
		seed       = flag.Int64("seed", 0, "Сид мира (0 — из конфигурации)")
		width      = flag.Int("width", 0, "Ширина сетки чанков (0 — из конфигурации)")
		depth      = flag.Int("depth", 0, "Глубина сетки чанков (0 — из конфигурации)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if *seed != 0 {
		cfg.World.Seed = *seed
	}
	if *width > 0 {
		cfg.World.Width = *width
	}
	if *depth > 0 {
		cfg.World.Depth = *depth
	}

	if err := run(cfg, *output); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func run(cfg *config.Config, output string) error {
	blocks, err := cfg.BlockRegistry()
	if err != nil {
		return err
	}

	s := cfg.World.GetSeed()
	w := app.NewWorld(app.Options{
		Seed:        s,
		Noise:       util.NewPerlinNoise(s, cfg.Noise.Alpha, cfg.Noise.Beta, cfg.Noise.Octaves),
		Blocks:      blocks,
		HeightScale: cfg.World.HeightScale,
	})
	w.Bootstrap(cfg.World.Width, cfg.World.Depth, cfg.World.ChunkY)

	batches, err := w.Meshes()
	if err != nil {
		return fmt.Errorf("ошибка построения мешей: %w", err)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("ошибка создания %s: %w", output, err)
	}

	stats, err := writeFile(f, strings.HasSuffix(output, ".gz"), s, batches)
	if err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия %s: %w", output, err)
	}

	fmt.Printf("Сид %d: %d чанков, %d граней, %d вершин -> %s\n", s, len(batches), stats.Faces, stats.Vertices, output)
	return nil
}

// writeFile пишет OBJ в f, при compress через gzip
func writeFile(f io.Writer, compress bool, seed int64, batches []*mesh.Batch) (mesh.OBJStats, error) {
	out := f
	var gz *gzip.Writer
	if compress {
		gz = gzip.NewWriter(f)
		out = gz
	}
	buf := bufio.NewWriter(out)

	stats, err := writeOBJ(buf, seed, batches)
	if err != nil {
		return stats, err
	}
	if err := buf.Flush(); err != nil {
		return stats, err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func writeOBJ(w io.Writer, seed int64, batches []*mesh.Batch) (mesh.OBJStats, error) {
	fmt.Fprintf(w, "# voxelworld seed %d\n", seed)

	var stats mesh.OBJStats
	for _, b := range batches {
		var err error
		stats, err = b.WriteOBJ(w, stats)
		if err != nil {
			return stats, fmt.Errorf("ошибка записи чанка %v: %w", b.Chunk, err)
		}
	}
	return stats, nil
}
