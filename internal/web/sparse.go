package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/embedkit/embedd/internal/config"
	"github.com/embedkit/embedd/internal/embed"
	"github.com/embedkit/embedd/internal/logging"
	"github.com/embedkit/embedd/internal/model"
)

// sparseBatchResponse is the /embed payload of the BM25 variant.
type sparseBatchResponse struct {
	Embeddings []embed.SparseVector `json:"embeddings"`
	Model      string               `json:"model"`
	Count      int                  `json:"count"`
}

// sparseSingleResponse is the /embed/single payload of the BM25 variant.
type sparseSingleResponse struct {
	Embedding embed.SparseVector `json:"embedding"`
	Model     string             `json:"model"`
}

// NewSparse builds the BM25 sparse-embedding service.
func NewSparse(cfg *config.Config, mgr *model.Manager) *Server {
	state := &State{Config: cfg, Model: mgr, Service: "embedd-bm25"}
	return newServer(state, func(r chi.Router) {
		r.Post("/embed", state.handleSparseEmbed)
		r.Post("/embed/single", state.handleSparseEmbedSingle)
	})
}

func (s *State) handleSparseEmbed(w http.ResponseWriter, r *http.Request) {
	texts, err := decodeTexts(r)
	if err != nil {
		writeError(w, err)
		return
	}

	logging.Infof("[web] generating embeddings for %d text(s)", len(texts))

	vectors, err := s.Model.EmbedSparse(r.Context(), texts)
	if err != nil {
		writeError(w, err)
		return
	}

	logging.Infof("[web] successfully generated %d embedding(s)", len(vectors))
	jsonOK(w, sparseBatchResponse{
		Embeddings: vectors,
		Model:      s.Model.Name(),
		Count:      len(vectors),
	})
}

// handleSparseEmbedSingle embeds only the first text and returns the bare
// embedding object instead of a one-element collection.
func (s *State) handleSparseEmbedSingle(w http.ResponseWriter, r *http.Request) {
	texts, err := decodeTexts(r)
	if err != nil {
		writeError(w, err)
		return
	}

	vectors, err := s.Model.EmbedSparse(r.Context(), texts[:1])
	if err != nil {
		writeError(w, err)
		return
	}

	jsonOK(w, sparseSingleResponse{
		Embedding: vectors[0],
		Model:     s.Model.Name(),
	})
}
