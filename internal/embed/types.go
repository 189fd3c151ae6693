// Package embed holds the request/response domain types shared by the
// sparse and late-interaction services.
package embed

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Texts is the polymorphic "texts" field of an embedding request: a single
// JSON string or an array of strings, normalized to a list at the decode
// boundary.
type Texts []string

// UnmarshalJSON accepts either a bare string or an array of strings.
func (t *Texts) UnmarshalJSON(data []byte) error {
	var one string
	if err := sonic.Unmarshal(data, &one); err == nil {
		*t = Texts{one}
		return nil
	}
	var many []string
	if err := sonic.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("texts must be a string or an array of strings")
	}
	*t = Texts(many)
	return nil
}

// Request is the body of POST /embed and POST /embed/single.
type Request struct {
	Texts Texts `json:"texts"`
}

// Normalize returns the input texts as a non-empty list.
func (r *Request) Normalize() ([]string, error) {
	if len(r.Texts) == 0 {
		return nil, ValidationError{Field: "texts", Reason: "at least one text is required"}
	}
	return []string(r.Texts), nil
}

// SparseVector represents a sparse embedding as parallel arrays of indices
// and values. Indices are term positions in the model's vocabulary space,
// values the corresponding weights. len(Indices) == len(Values) always.
type SparseVector struct {
	Indices []uint32  `json:"indices"`
	Values  []float32 `json:"values"`
}
