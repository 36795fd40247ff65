// Package event provides in-process publish/subscribe so engine mutations can
// be observed without direct dependencies between layers.
package event

import (
	"sync"

	"mindcanvas/internal/logging"
)

// Type identifies what happened.
type Type int

const (
	MindmapCreated Type = iota
	MindmapUpdated
	MindmapDeleted
	NodeAdded
	NodeUpdated
	NodeMoved
	NodeResized
	NodeDeleted
	NodeSorted
	CollectionReloaded
)

func (t Type) String() string {
	switch t {
	case MindmapCreated:
		return "mindmap_created"
	case MindmapUpdated:
		return "mindmap_updated"
	case MindmapDeleted:
		return "mindmap_deleted"
	case NodeAdded:
		return "node_added"
	case NodeUpdated:
		return "node_updated"
	case NodeMoved:
		return "node_moved"
	case NodeResized:
		return "node_resized"
	case NodeDeleted:
		return "node_deleted"
	case NodeSorted:
		return "node_sorted"
	case CollectionReloaded:
		return "collection_reloaded"
	default:
		return "unknown"
	}
}

// Event carries the type and an event-specific payload.
type Event struct {
	Type Type
	Data any
}

// Handler receives published events. Handlers run on their own goroutine.
type Handler func(Event)

// Manager fans events out to subscribers.
type Manager struct {
	mu          sync.RWMutex
	subscribers map[Type][]Handler
	logger      logging.Logger
}

// NewManager creates an event manager. A nil logger falls back to the no-op
// logger.
func NewManager(logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNoop()
	}
	return &Manager{
		subscribers: make(map[Type][]Handler),
		logger:      logger,
	}
}

// Subscribe registers a handler for one event type.
func (m *Manager) Subscribe(t Type, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers[t] = append(m.subscribers[t], h)
}

// Publish delivers the event to every subscriber asynchronously. A panicking
// handler is recovered and logged so one bad subscriber cannot take down the
// process.
func (m *Manager) Publish(e Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, h := range m.subscribers[e.Type] {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Error("panic in event handler", "event", e.Type.String(), "panic", r)
				}
			}()
			h(e)
		}(h)
	}
}
