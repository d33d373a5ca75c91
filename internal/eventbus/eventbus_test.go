package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBusFilterAndOrder(t *testing.T) {
	bus := NewMemoryBus(16)

	var mu sync.Mutex
	var got []ChunkPayload
	_, err := bus.Subscribe(context.Background(), Filter{Types: []string{ChunkLoaded}}, func(ctx context.Context, ev *Envelope) {
		var p ChunkPayload
		if err := ev.Decode(&p); err == nil {
			mu.Lock()
			got = append(got, p)
			mu.Unlock()
		}
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		ev, err := NewEnvelope("w", ChunkLoaded, ChunkPayload{X: i, Blocks: 10})
		require.NoError(t, err)
		require.NoError(t, bus.Publish(context.Background(), ev))
	}
	ev, err := NewEnvelope("w", MeshBuilt, ChunkPayload{Quads: 6})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), ev))

	bus.Close()

	assert.Equal(t, []ChunkPayload{{X: 0, Blocks: 10}, {X: 1, Blocks: 10}, {X: 2, Blocks: 10}}, got)
	stats := bus.Metrics()
	assert.Equal(t, uint64(4), stats.Published)
	assert.Equal(t, uint64(3), stats.Consumed)
}

func TestMemoryBusUnsubscribe(t *testing.T) {
	bus := NewMemoryBus(4)
	defer bus.Close()

	calls := 0
	var mu sync.Mutex
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	require.NoError(t, err)
	sub.Unsubscribe()

	ev, err := NewEnvelope("w", ChunkLoaded, ChunkPayload{})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), ev))

	require.Eventually(t, func() bool { return bus.Metrics().InFlight == 0 }, time.Second, time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, calls)
}

func TestMemoryBusClosed(t *testing.T) {
	bus := NewMemoryBus(1)
	bus.Close()
	bus.Close()

	ev, err := NewEnvelope("w", ChunkLoaded, ChunkPayload{})
	require.NoError(t, err)
	assert.ErrorIs(t, bus.Publish(context.Background(), ev), ErrBusClosed)

	_, err = bus.Subscribe(context.Background(), Filter{}, func(context.Context, *Envelope) {})
	assert.ErrorIs(t, err, ErrBusClosed)
}

func TestMetricsExporterSync(t *testing.T) {
	bus := NewMemoryBus(8)
	reg := prometheus.NewRegistry()
	exporter := NewMetricsExporter(bus, reg)

	for i := 0; i < 2; i++ {
		ev, err := NewEnvelope("w", MeshBuilt, ChunkPayload{})
		require.NoError(t, err)
		require.NoError(t, bus.Publish(context.Background(), ev))
	}
	bus.Close()

	exporter.Sync()
	exporter.Sync()
	assert.Equal(t, 2.0, testutil.ToFloat64(exporter.published))
	assert.Equal(t, 0.0, testutil.ToFloat64(exporter.inflight))
}
