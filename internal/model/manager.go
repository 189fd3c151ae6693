// Package model manages the lifetime of the one embedding model each service
// process binds at startup.
package model

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/embedkit/embedd/internal/embed"
	"github.com/embedkit/embedd/internal/inference"
	"github.com/embedkit/embedd/internal/logging"
)

// Manager holds the configured model and its readiness state. It is
// constructed in main, loaded once before the server accepts traffic, and
// read-only afterwards; concurrent requests share it without further
// synchronization.
type Manager struct {
	name   string
	client *inference.Client
	ready  atomic.Bool
}

// NewManager creates an unloaded manager for the named model.
func NewManager(name string, client *inference.Client) *Manager {
	return &Manager{name: name, client: client}
}

// Load verifies the inference runtime serves the configured model and marks
// the manager ready. It is called once at startup; any error is fatal to the
// process. There is no reload or hot-swap.
func (m *Manager) Load(ctx context.Context) error {
	logging.Infof("[model] loading model: %s", m.name)

	info, err := m.client.Info(ctx)
	if err != nil {
		return fmt.Errorf("loading model %s: %w", m.name, err)
	}
	if !strings.EqualFold(info.ModelID, m.name) {
		return fmt.Errorf("loading model %s: runtime serves %q", m.name, info.ModelID)
	}

	m.ready.Store(true)
	logging.Infof("[model] model %s loaded successfully", m.name)
	return nil
}

// Ready reports whether Load has completed successfully.
func (m *Manager) Ready() bool {
	return m.ready.Load()
}

// Name returns the configured model identifier.
func (m *Manager) Name() string {
	return m.name
}

// EmbedSparse generates one sparse vector per input text.
func (m *Manager) EmbedSparse(ctx context.Context, texts []string) ([]embed.SparseVector, error) {
	if !m.ready.Load() {
		return nil, embed.ErrNotReady
	}
	vectors, err := m.client.EmbedSparse(ctx, texts)
	if err != nil {
		return nil, embed.ComputationError{Op: "generating embeddings", Err: err}
	}
	return vectors, nil
}

// EmbedLate generates one per-token vector matrix per input text.
func (m *Manager) EmbedLate(ctx context.Context, texts []string) ([][][]float32, error) {
	if !m.ready.Load() {
		return nil, embed.ErrNotReady
	}
	vectors, err := m.client.EmbedAll(ctx, texts)
	if err != nil {
		return nil, embed.ComputationError{Op: "generating embeddings", Err: err}
	}
	return vectors, nil
}

// Shutdown releases nothing; the model belongs to the runtime. Kept as the
// explicit counterpart to Load.
func (m *Manager) Shutdown() {
	logging.Infof("[model] shutting down...")
}
