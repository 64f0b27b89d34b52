package embedclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kogsector/kgfusion/apperr"
)

func TestEmbed_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embed", r.URL.Path)
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Text)
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	vec, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestEmbed_ErrorStatusWrapsErrEmbedding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrEmbedding)
}

func TestEmbedBatch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/batch/embed", r.URL.Path)
		json.NewEncoder(w).Encode(batchEmbedResponse{Embeddings: [][]float32{{1}, {2}}})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	vecs, err := c.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)
}

func TestHealthCheck_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	assert.NoError(t, c.HealthCheck(context.Background()))
}

func TestHealthCheck_Unreachable(t *testing.T) {
	c := New("http://127.0.0.1:1", 100*time.Millisecond)
	err := c.HealthCheck(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrBackendUnavailable)
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New("http://example.com/", time.Second)
	assert.Equal(t, "http://example.com", c.baseURL)
}
