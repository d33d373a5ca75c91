package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/voxelworld/internal/api"
	"github.com/annel0/voxelworld/internal/app"
	"github.com/annel0/voxelworld/internal/config"
	"github.com/annel0/voxelworld/internal/eventbus"
	"github.com/annel0/voxelworld/internal/logging"
	"github.com/annel0/voxelworld/internal/metrics"
	"github.com/annel0/voxelworld/internal/observability"
	"github.com/annel0/voxelworld/internal/render"
	"github.com/annel0/voxelworld/internal/util"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	configPath := flag.String("config", "", "Путь к YAML конфигурации (или ENV VOXEL_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	logging.SetLogDir(cfg.Server.LogDir)
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	logging.GetLoggerManager().SetConsoleLevel(logging.ParseLevel(cfg.Server.LogLevel))

	logging.Info("🧱 Запуск voxelworld...")

	shutdownTelemetry, err := observability.InitTelemetry(context.Background(), "voxelworld", cfg.Server.GetOTLPEndpoint())
	if err != nil {
		logging.Warn("OpenTelemetry недоступен: %v", err)
		shutdownTelemetry = func(context.Context) error { return nil }
	}

	blocks, err := cfg.BlockRegistry()
	if err != nil {
		log.Fatalf("❌ Ошибка реестра блоков: %v", err)
	}

	// Атлас принадлежит слою рендеринга; прогреваем кэш и предупреждаем о пропусках
	atlas := render.NewAtlas(blocks, render.FileLoader{Dir: cfg.Textures.Dir})
	for _, id := range blocks.IDs() {
		if _, _, err := atlas.Resolve(id, render.RoleSide); err != nil {
			logging.Warn("Текстура блока %d недоступна: %v", id, err)
		}
	}

	bus := eventbus.NewMemoryBus(1024)
	defer bus.Close()
	if _, err := eventbus.StartLoggingListener(bus, logging.GetWorldLogger()); err != nil {
		logging.Warn("Не удалось подписать логгер на события: %v", err)
	}
	busMetrics := eventbus.NewMetricsExporter(bus, prometheus.DefaultRegisterer)
	busMetrics.Start()
	defer busMetrics.Stop()

	seed := cfg.World.GetSeed()
	worldMetrics := metrics.NewWorldMetrics("voxel", prometheus.DefaultRegisterer)
	w := app.NewWorld(app.Options{
		Seed:        seed,
		Noise:       util.NewPerlinNoise(seed, cfg.Noise.Alpha, cfg.Noise.Beta, cfg.Noise.Octaves),
		Blocks:      blocks,
		HeightScale: cfg.World.HeightScale,
		UVs:         atlas,
		Metrics:     worldMetrics,
		Bus:         bus,
	})
	logging.Info("🌍 Мир %s, сид %d", w.ID, seed)

	w.Bootstrap(cfg.World.Width, cfg.World.Depth, cfg.World.ChunkY)

	// Меши строятся один раз после генерации, дальше отдаются из кэша
	batches, err := w.Meshes()
	if err != nil {
		log.Fatalf("❌ Ошибка построения мешей: %v", err)
	}
	quads := 0
	for _, b := range batches {
		quads += len(b.Quads)
	}
	logging.Info("🔷 Построено %d мешей, %d граней", len(batches), quads)

	server := api.NewRestServer(api.Config{
		Port:       fmt.Sprintf(":%d", cfg.Server.GetRESTPort()),
		World:      w,
		Registerer: prometheus.DefaultRegisterer,
		Gatherer:   prometheus.DefaultGatherer,
	})
	server.Start()

	// Канал для получения сигналов ОС
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logging.Info("📡 Получен сигнал %v, завершение работы...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}

	if err := shutdownTelemetry(ctx); err != nil {
		logging.Warn("Ошибка остановки OpenTelemetry: %v", err)
	}

	logging.Info("👋 Сервер успешно остановлен")
}
