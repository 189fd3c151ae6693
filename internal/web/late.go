package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/embedkit/embedd/internal/config"
	"github.com/embedkit/embedd/internal/logging"
	"github.com/embedkit/embedd/internal/model"
)

// multiVector is one late-interaction embedding: a vector per input token.
type multiVector struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// lateBatchResponse is the /embed payload of the late-interaction variant.
type lateBatchResponse struct {
	Embeddings []multiVector `json:"embeddings"`
	Model      string        `json:"model"`
	Count      int           `json:"count"`
}

// lateSingleResponse is the /embed/single payload of the late-interaction
// variant; the embedding is the bare token-vector matrix.
type lateSingleResponse struct {
	Embedding  [][]float32 `json:"embedding"`
	Model      string      `json:"model"`
	NumVectors int         `json:"num_vectors"`
}

// NewLate builds the ColBERT late-interaction embedding service.
func NewLate(cfg *config.Config, mgr *model.Manager) *Server {
	state := &State{Config: cfg, Model: mgr, Service: "embedd-colbert"}
	return newServer(state, func(r chi.Router) {
		r.Post("/embed", state.handleLateEmbed)
		r.Post("/embed/single", state.handleLateEmbedSingle)
	})
}

func (s *State) handleLateEmbed(w http.ResponseWriter, r *http.Request) {
	texts, err := decodeTexts(r)
	if err != nil {
		writeError(w, err)
		return
	}

	logging.Infof("[web] generating embeddings for %d text(s)", len(texts))

	matrices, err := s.Model.EmbedLate(r.Context(), texts)
	if err != nil {
		writeError(w, err)
		return
	}

	embeddings := make([]multiVector, len(matrices))
	for i, m := range matrices {
		embeddings[i] = multiVector{Embeddings: m}
	}

	logging.Infof("[web] successfully generated %d embedding(s)", len(embeddings))
	jsonOK(w, lateBatchResponse{
		Embeddings: embeddings,
		Model:      s.Model.Name(),
		Count:      len(embeddings),
	})
}

func (s *State) handleLateEmbedSingle(w http.ResponseWriter, r *http.Request) {
	texts, err := decodeTexts(r)
	if err != nil {
		writeError(w, err)
		return
	}

	matrices, err := s.Model.EmbedLate(r.Context(), texts[:1])
	if err != nil {
		writeError(w, err)
		return
	}

	jsonOK(w, lateSingleResponse{
		Embedding:  matrices[0],
		Model:      s.Model.Name(),
		NumVectors: len(matrices[0]),
	})
}
