// internal/registry/cloud_model.go
package registry

import (
	"context"
	"sync"
	"time"

	stderrors "vehicle-insurance-pipeline/internal/common/errors"
	"vehicle-insurance-pipeline/internal/ml"
)

// CloudModel lazily loads the production model from a store and keeps it
// cached in memory. Reload swaps the cached model when a newer one was
// pushed; callers can read concurrently.
type CloudModel struct {
	store ModelStore
	key   string

	mu       sync.RWMutex
	model    *ml.Model
	loadedAt time.Time
}

func NewCloudModel(store ModelStore, key string) *CloudModel {
	return &CloudModel{store: store, key: key}
}

// Get returns the cached model, loading it on first use.
func (c *CloudModel) Get(ctx context.Context) (*ml.Model, error) {
	c.mu.RLock()
	if c.model != nil {
		m := c.model
		c.mu.RUnlock()
		return m, nil
	}
	c.mu.RUnlock()

	return c.Reload(ctx)
}

// Reload fetches the model from the store unconditionally.
func (c *CloudModel) Reload(ctx context.Context) (*ml.Model, error) {
	present, err := c.store.IsPresent(ctx, c.key)
	if err != nil {
		return nil, stderrors.NewModelRegistryUnavailableError(err)
	}
	if !present {
		return nil, stderrors.NewModelNotFoundError(c.key)
	}

	data, err := c.store.Load(ctx, c.key)
	if err != nil {
		return nil, stderrors.NewModelRegistryUnavailableError(err)
	}

	model, err := ml.UnmarshalModel(data)
	if err != nil {
		return nil, stderrors.NewModelSerializationError(err)
	}

	c.mu.Lock()
	c.model = model
	c.loadedAt = time.Now().UTC()
	c.mu.Unlock()

	return model, nil
}

// LoadedAt reports when the cached model was last refreshed.
func (c *CloudModel) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

// IsLoaded reports whether a model is held in memory.
func (c *CloudModel) IsLoaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model != nil
}
