package inference

// Wire types for the text-embeddings-inference runtime API.

// embedRequest is the body of /embed_sparse and /embed_all.
type embedRequest struct {
	Inputs []string `json:"inputs"`
}

// sparseTerm is one index/value pair of a sparse embedding as returned by
// /embed_sparse.
type sparseTerm struct {
	Index uint32  `json:"index"`
	Value float32 `json:"value"`
}

// ModelInfo is the subset of the /info response the services care about.
type ModelInfo struct {
	ModelID   string `json:"model_id"`
	ModelSha  string `json:"model_sha,omitempty"`
	MaxBatch  int    `json:"max_client_batch_size,omitempty"`
	MaxTokens int    `json:"max_input_length,omitempty"`
}

// runtimeError is the JSON error body the runtime returns on non-2xx.
type runtimeError struct {
	Error     string `json:"error"`
	ErrorType string `json:"error_type,omitempty"`
}
