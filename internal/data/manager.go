// Package data implements the layout/state engine. A single Manager owns the
// mindmap collection, arbitrates placement of new nodes, normalizes legacy
// records on load and persists the full collection after every mutation.
package data

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"mindcanvas/internal/event"
	"mindcanvas/internal/logging"
	"mindcanvas/internal/model"
	"mindcanvas/internal/storage"
)

// Manager is the single source of truth for mindmap data. A RWMutex guards
// the collection; accessors hand out deep clones so callers can never mutate
// engine state behind its back.
type Manager struct {
	mu       sync.RWMutex
	store    storage.Store
	events   *event.Manager
	logger   logging.Logger
	mindmaps []*model.Mindmap

	// snapshot is the serialized form of the current collection, used to
	// drop watcher reloads that echo the engine's own saves.
	snapshot []byte
}

// NewManager creates a Manager over the given store. A nil event manager or
// logger is replaced with a working default.
func NewManager(store storage.Store, events *event.Manager, logger logging.Logger) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("store must not be nil")
	}
	if logger == nil {
		logger = logging.NewNoop()
	}
	if events == nil {
		events = event.NewManager(logger)
	}
	return &Manager{
		store:    store,
		events:   events,
		logger:   logger,
		mindmaps: []*model.Mindmap{},
	}, nil
}

// Events exposes the event manager for subscribers.
func (m *Manager) Events() *event.Manager {
	return m.events
}

// Load reads the collection from the store and runs the migration pass,
// persisting once if anything was repaired. A read failure degrades to an
// empty collection so the application stays usable.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	maps, err := m.store.LoadAll(ctx)
	if err != nil {
		m.logger.Warn("failed to load collection, starting empty", "error", err)
		m.mindmaps = []*model.Mindmap{}
		m.snapshot = nil
		return nil
	}

	migrated := 0
	for _, mm := range maps {
		if Normalize(mm) {
			migrated++
		}
	}
	m.mindmaps = maps

	if migrated > 0 {
		if err := m.persistLocked(ctx); err != nil {
			m.logger.Warn("failed to persist migrated collection", "error", err)
		}
	} else {
		m.refreshSnapshotLocked()
	}
	m.logger.Info("collection loaded", "mindmaps", len(maps), "migrated", migrated)
	return nil
}

// Reload re-reads the collection, swaps it in atomically and publishes a
// reload event. A reload that decodes to the current state is dropped
// silently; a failed read keeps the current collection.
func (m *Manager) Reload(ctx context.Context) error {
	maps, err := m.store.LoadAll(ctx)
	if err != nil {
		m.logger.Warn("reload failed, keeping current collection", "error", err)
		return fmt.Errorf("failed to reload collection: %w", err)
	}
	for _, mm := range maps {
		Normalize(mm)
	}
	incoming, err := json.Marshal(maps)
	if err != nil {
		return fmt.Errorf("failed to serialize reloaded collection: %w", err)
	}

	m.mu.Lock()
	if bytes.Equal(incoming, m.snapshot) {
		m.mu.Unlock()
		m.logger.Debug("reload skipped, collection unchanged")
		return nil
	}
	m.mindmaps = maps
	m.snapshot = incoming
	count := len(maps)
	m.mu.Unlock()

	m.events.Publish(event.Event{Type: event.CollectionReloaded, Data: count})
	m.logger.Info("collection reloaded", "mindmaps", count)
	return nil
}

// Mindmaps returns clones of the whole collection in stored order.
func (m *Manager) Mindmaps() []*model.Mindmap {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*model.Mindmap, len(m.mindmaps))
	for i, mm := range m.mindmaps {
		out[i] = mm.Clone()
	}
	return out
}

// MindmapByID returns a clone of the mindmap, or (nil, false) if the id is
// unknown. Absence is a normal outcome, never an error.
func (m *Manager) MindmapByID(id string) (*model.Mindmap, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mm := m.findLocked(id)
	if mm == nil {
		return nil, false
	}
	return mm.Clone(), true
}

func (m *Manager) findLocked(id string) *model.Mindmap {
	for _, mm := range m.mindmaps {
		if mm.ID == id {
			return mm
		}
	}
	return nil
}

// persistLocked writes the full collection through the store. The in-memory
// state keeps the applied mutation even when the write fails; the error is
// surfaced to the command that triggered it.
func (m *Manager) persistLocked(ctx context.Context) error {
	if err := m.store.SaveAll(ctx, m.mindmaps); err != nil {
		m.logger.Error("failed to persist collection", "error", err)
		return fmt.Errorf("failed to persist collection: %w", err)
	}
	m.refreshSnapshotLocked()
	return nil
}

func (m *Manager) refreshSnapshotLocked() {
	b, err := json.Marshal(m.mindmaps)
	if err != nil {
		m.snapshot = nil
		return
	}
	m.snapshot = b
}
