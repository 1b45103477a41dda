package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/floorplan-visualizer/backend/internal/models"
	"github.com/floorplan-visualizer/backend/internal/parser"
	"github.com/google/uuid"
)

// MaxLayouts limits how many parsed layouts are kept in memory.
const MaxLayouts = 10

// LayoutMaxAge is how long an idle layout stays cached before cleanup.
const LayoutMaxAge = 30 * time.Minute

// Manager caches parsed and migrated floorplan layouts so that repeated
// layout requests do not reparse the document from disk.
type Manager struct {
	mu      sync.RWMutex
	layouts map[string]*LayoutState
}

// LayoutState holds a loaded layout plus its load metadata.
type LayoutState struct {
	LoadID       string // unique per load, used in change notifications
	FloorplanID  string
	Layout       *models.FloorplanLayout
	Migrated     bool // whether color migration ran during this load
	LoadedAt     time.Time
	LastAccessed time.Time
}

// NewManager creates a new layout cache.
func NewManager() *Manager {
	return &Manager{
		layouts: make(map[string]*LayoutState),
	}
}

// Load parses the floorplan file at path, migrating legacy color fields if
// present, and caches the result under floorplanID. An existing entry for
// the same floorplan is replaced.
func (m *Manager) Load(floorplanID, path string) (*LayoutState, error) {
	m.evictOldestIfNeeded()

	layout, migrated, err := parser.ParseFloorplan(path)
	if err != nil {
		return nil, fmt.Errorf("loading floorplan %s: %w", floorplanID, err)
	}

	now := time.Now()
	state := &LayoutState{
		LoadID:       uuid.New().String(),
		FloorplanID:  floorplanID,
		Layout:       layout,
		Migrated:     migrated,
		LoadedAt:     now,
		LastAccessed: now,
	}

	m.mu.Lock()
	m.layouts[floorplanID] = state
	m.mu.Unlock()

	return state, nil
}

// Get returns the cached layout for a floorplan, refreshing its access time.
func (m *Manager) Get(floorplanID string) (*LayoutState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.layouts[floorplanID]
	if !ok {
		return nil, false
	}
	state.LastAccessed = time.Now()
	return state, true
}

// Invalidate drops the cached layout for a floorplan.
func (m *Manager) Invalidate(floorplanID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.layouts, floorplanID)
}

// Count returns the number of cached layouts.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.layouts)
}

// CleanupOldLayouts removes layouts that have not been accessed within
// maxAge. Called periodically from the server's cleanup loop.
func (m *Manager) CleanupOldLayouts(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, state := range m.layouts {
		if state.LastAccessed.Before(cutoff) {
			delete(m.layouts, id)
			removed++
		}
	}
	return removed
}

// evictOldestIfNeeded keeps the cache within MaxLayouts by dropping the
// least recently accessed entry.
func (m *Manager) evictOldestIfNeeded() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.layouts) < MaxLayouts {
		return
	}

	var oldestID string
	var oldest time.Time
	for id, state := range m.layouts {
		if oldestID == "" || state.LastAccessed.Before(oldest) {
			oldestID = id
			oldest = state.LastAccessed
		}
	}
	if oldestID != "" {
		delete(m.layouts, oldestID)
	}
}
