package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/embedkit/embedd/internal/config"
	"github.com/embedkit/embedd/internal/inference"
	"github.com/embedkit/embedd/internal/model"
)

// fakeRuntime is a deterministic stand-in for the inference runtime: every
// output is a pure function of the input text, so batch and single endpoints
// can be compared element-wise.
type fakeRuntime struct {
	srv        *httptest.Server
	embedCalls atomic.Int32
}

func newFakeRuntime(t *testing.T, modelID string) *fakeRuntime {
	t.Helper()
	f := &fakeRuntime{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/info" {
			fmt.Fprintf(w, `{"model_id": %q}`, modelID)
			return
		}

		f.embedCalls.Add(1)
		var req struct {
			Inputs []string `json:"inputs"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error": "bad request"}`, http.StatusBadRequest)
			return
		}

		switch r.URL.Path {
		case "/embed_sparse":
			out := make([][]map[string]any, len(req.Inputs))
			for i, text := range req.Inputs {
				out[i] = []map[string]any{
					{"index": len(text)*10 + 1, "value": float32(len(text))},
					{"index": 50021, "value": 1.5},
				}
			}
			json.NewEncoder(w).Encode(out)
		case "/embed_all":
			out := make([][][]float32, len(req.Inputs))
			for i, text := range req.Inputs {
				rows := len(text)%4 + 2
				matrix := make([][]float32, rows)
				for j := range matrix {
					matrix[j] = []float32{float32(len(text)), float32(j), float32(j) * 0.5}
				}
				out[i] = matrix
			}
			json.NewEncoder(w).Encode(out)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

// newService builds a variant server backed by the fake runtime, loading the
// model unless the test wants the not-ready state.
func newService(t *testing.T, variant string, loaded bool) (*Server, *fakeRuntime) {
	t.Helper()

	modelName := "Qdrant/bm25"
	if variant == "late" {
		modelName = "colbert-ir/colbertv2.0"
	}

	rt := newFakeRuntime(t, modelName)
	cfg := config.Defaults(modelName)
	mgr := model.NewManager(modelName, inference.New(rt.srv.URL, time.Second))
	if loaded {
		require.NoError(t, mgr.Load(context.Background()))
	}

	if variant == "late" {
		return NewLate(&cfg, mgr), rt
	}
	return NewSparse(&cfg, mgr), rt
}

// doJSON runs one request through the router and decodes the JSON response
// into out (when non-nil), returning the status code.
func doJSON(t *testing.T, srv *Server, method, path, body string, out any) int {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}
