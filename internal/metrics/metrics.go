package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WorldMetrics собирает метрики генерации и построения мешей.
//
// Метрики:
// * chunks_generated_total — counter
// * blocks_generated_total — counter
// * mesh_builds_total — counter
// * mesh_quads_total{face} — counter
// * mesh_faces_culled_total — counter
// * mesh_build_duration_seconds — histogram
type WorldMetrics struct {
	ChunksGenerated   prometheus.Counter
	BlocksGenerated   prometheus.Counter
	MeshBuilds        prometheus.Counter
	MeshQuads         *prometheus.CounterVec
	FacesCulled       prometheus.Counter
	MeshBuildDuration prometheus.Histogram
}

// NewWorldMetrics создаёт метрики и регистрирует их в reg.
// reg == nil означает, что метрики не регистрируются (удобно в тестах).
func NewWorldMetrics(namespace string, reg prometheus.Registerer) *WorldMetrics {
	m := &WorldMetrics{
		ChunksGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_generated_total",
			Help:      "Количество сгенерированных чанков.",
		}),
		BlocksGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_generated_total",
			Help:      "Количество блоков в сгенерированных чанках.",
		}),
		MeshBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mesh_builds_total",
			Help:      "Количество построенных мешей чанков.",
		}),
		MeshQuads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mesh_quads_total",
			Help:      "Количество выведенных граней по направлению.",
		}, []string{"face"}),
		FacesCulled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mesh_faces_culled_total",
			Help:      "Количество граней, скрытых твёрдыми соседями.",
		}),
		MeshBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mesh_build_duration_seconds",
			Help:      "Длительность построения меша чанка.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
	}

	if reg != nil {
		reg.MustRegister(m.ChunksGenerated, m.BlocksGenerated, m.MeshBuilds, m.MeshQuads, m.FacesCulled, m.MeshBuildDuration)
	}
	return m
}
