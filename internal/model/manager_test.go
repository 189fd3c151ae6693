package model

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embedkit/embedd/internal/embed"
	"github.com/embedkit/embedd/internal/inference"
)

// fakeRuntime serves a minimal inference API for one model.
func fakeRuntime(t *testing.T, modelID string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/info":
			w.Write([]byte(`{"model_id": "` + modelID + `"}`))
		case "/embed_sparse":
			w.Write([]byte(`[[{"index": 7, "value": 0.9}]]`))
		case "/embed_all":
			w.Write([]byte(`[[[0.1, 0.2], [0.3, 0.4]]]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newManager(t *testing.T, srvURL, name string) *Manager {
	t.Helper()
	return NewManager(name, inference.New(srvURL, time.Second))
}

func TestLoadSetsReady(t *testing.T) {
	srv := fakeRuntime(t, "Qdrant/bm25")
	mgr := newManager(t, srv.URL, "Qdrant/bm25")

	assert.False(t, mgr.Ready())
	require.NoError(t, mgr.Load(context.Background()))
	assert.True(t, mgr.Ready())
	assert.Equal(t, "Qdrant/bm25", mgr.Name())
}

func TestLoadRejectsModelMismatch(t *testing.T) {
	srv := fakeRuntime(t, "some/other-model")
	mgr := newManager(t, srv.URL, "Qdrant/bm25")

	err := mgr.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "some/other-model")
	assert.False(t, mgr.Ready())
}

func TestLoadFailsWhenRuntimeUnreachable(t *testing.T) {
	srv := fakeRuntime(t, "Qdrant/bm25")
	srv.Close()
	mgr := newManager(t, srv.URL, "Qdrant/bm25")

	require.Error(t, mgr.Load(context.Background()))
	assert.False(t, mgr.Ready())
}

func TestEmbedBeforeLoadIsNotReady(t *testing.T) {
	srv := fakeRuntime(t, "Qdrant/bm25")
	mgr := newManager(t, srv.URL, "Qdrant/bm25")

	_, err := mgr.EmbedSparse(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, embed.ErrNotReady)

	_, err = mgr.EmbedLate(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, embed.ErrNotReady)
}

func TestEmbedSparseDelegates(t *testing.T) {
	srv := fakeRuntime(t, "Qdrant/bm25")
	mgr := newManager(t, srv.URL, "Qdrant/bm25")
	require.NoError(t, mgr.Load(context.Background()))

	vectors, err := mgr.EmbedSparse(context.Background(), []string{"hello"})
	require.NoError(t, err)
	require.Len(t, vectors, 1)
	assert.Equal(t, []uint32{7}, vectors[0].Indices)
	assert.Equal(t, []float32{0.9}, vectors[0].Values)
}

func TestEmbedLateDelegates(t *testing.T) {
	srv := fakeRuntime(t, "colbert-ir/colbertv2.0")
	mgr := newManager(t, srv.URL, "colbert-ir/colbertv2.0")
	require.NoError(t, mgr.Load(context.Background()))

	matrices, err := mgr.EmbedLate(context.Background(), []string{"hello"})
	require.NoError(t, err)
	require.Len(t, matrices, 1)
	assert.Len(t, matrices[0], 2)
}

func TestComputationFailureIsWrapped(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/info" {
			w.Write([]byte(`{"model_id": "Qdrant/bm25"}`))
			return
		}
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "inference worker crashed"}`))
	}))
	t.Cleanup(srv.Close)

	mgr := newManager(t, srv.URL, "Qdrant/bm25")
	require.NoError(t, mgr.Load(context.Background()))

	_, err := mgr.EmbedSparse(context.Background(), []string{"a"})
	require.Error(t, err)

	var ce embed.ComputationError
	require.True(t, errors.As(err, &ce))
	assert.Contains(t, err.Error(), "inference worker crashed")
	assert.Equal(t, 1, calls)
}
