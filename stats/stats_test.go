package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kogsector/kgfusion/graphstore"
)

type fakeEmbedder struct {
	err error
}

func (f fakeEmbedder) HealthCheck(ctx context.Context) error { return f.err }

func TestProbe_HealthyWhenAllComponentsOK(t *testing.T) {
	store := graphstore.NewMemory()
	report := Probe(context.Background(), "test", store, fakeEmbedder{})

	assert.Equal(t, "healthy", report.Status)
	assert.Equal(t, "ok", report.Components["graph"].Status)
	assert.Equal(t, "ok", report.Components["embedding"].Status)
}

func TestProbe_DegradedWhenEmbedderMissing(t *testing.T) {
	store := graphstore.NewMemory()
	report := Probe(context.Background(), "test", store, nil)

	assert.Equal(t, "degraded", report.Status)
	assert.Equal(t, "unavailable", report.Components["embedding"].Status)
}

func TestProbe_DegradedWhenEmbedderFails(t *testing.T) {
	store := graphstore.NewMemory()
	report := Probe(context.Background(), "test", store, fakeEmbedder{err: errors.New("timeout")})

	assert.Equal(t, "degraded", report.Status)
	assert.Equal(t, "timeout", report.Components["embedding"].Error)
}

func TestProbe_DegradedWhenStoreNil(t *testing.T) {
	report := Probe(context.Background(), "test", nil, fakeEmbedder{})
	assert.Equal(t, "degraded", report.Status)
	assert.Equal(t, "unavailable", report.Components["graph"].Status)
}

func TestStatistics_ReshapesGraphStats(t *testing.T) {
	store := graphstore.NewMemory()
	require.NoError(t, store.CreateVectorIndex(context.Background(), "chunk_embedding_idx", "chunk", "embedding", 1024))

	report, err := Statistics(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, "in-memory", report.Vector.Store)
	assert.Equal(t, 1024, report.Vector.Dimension)
}

func TestRecordIngest_DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordIngest(1, 2, 3, 4, 5)
	})
}
