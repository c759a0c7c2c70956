package store

import (
	"context"
	"maps"
	"sync"

	"github.com/matzehuels/popdyn/pkg/filter"
	"github.com/matzehuels/popdyn/pkg/panels"
	"github.com/matzehuels/popdyn/pkg/treemap"
)

// Memory is an in-process [Repository].
type Memory struct {
	mu      sync.RWMutex
	order   []string
	items   map[string]treemap.Item
	metrics panels.Metrics
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]treemap.Item)}
}

// ListItems implements [Repository].
func (m *Memory) ListItems(ctx context.Context, c filter.Criteria) ([]treemap.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]treemap.Item, 0, len(m.order))
	for _, id := range m.order {
		all = append(all, cloneItem(m.items[id]))
	}
	return filter.Apply(all, c), nil
}

// GetItem implements [Repository].
func (m *Memory) GetItem(ctx context.Context, id string) (treemap.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.items[id]
	if !ok {
		return treemap.Item{}, notFound(id)
	}
	return cloneItem(it), nil
}

// PutItems implements [Repository].
func (m *Memory) PutItems(ctx context.Context, items []treemap.Item) error {
	if err := validateItems(items); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		if _, ok := m.items[it.ID]; !ok {
			m.order = append(m.order, it.ID)
		}
		m.items[it.ID] = cloneItem(it)
	}
	return nil
}

// Metrics implements [Repository].
func (m *Memory) Metrics(ctx context.Context) (panels.Metrics, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metrics, nil
}

// PutMetrics implements [Repository].
func (m *Memory) PutMetrics(ctx context.Context, pm panels.Metrics) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = pm
	return nil
}

// Close implements [Repository].
func (m *Memory) Close() error { return nil }

func cloneItem(it treemap.Item) treemap.Item {
	it.Meta = maps.Clone(it.Meta)
	return it
}

var _ Repository = (*Memory)(nil)
