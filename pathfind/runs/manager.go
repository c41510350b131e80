package runs

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/astar/pathfind/service"
)

const DefaultLimit = 100

var (
	ErrRunNotFound = service.ErrRunNotFound
	ErrNilResult   = errors.New("run result is nil")
)

// Manager keeps the most recent runs in memory
type Manager struct {
	runs  map[string]*service.Run
	order []string // oldest first
	limit int
	now   func() time.Time
	mu    sync.RWMutex
}

// NewManager creates a run registry holding at most limit runs.
// A non-positive limit uses DefaultLimit.
func NewManager(limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Manager{
		runs:  make(map[string]*service.Run),
		limit: limit,
		now:   time.Now,
	}
}

// Create records a result under a fresh run ID, evicting the oldest runs
// once the limit is reached.
func (m *Manager) Create(result *service.SolveResult) (*service.Run, error) {
	if result == nil {
		return nil, ErrNilResult
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	run := &service.Run{
		ID:        uuid.NewString(),
		Result:    result,
		CreatedAt: m.now(),
	}
	result.RunID = run.ID
	result.CreatedAt = run.CreatedAt

	m.runs[run.ID] = run
	m.order = append(m.order, run.ID)

	for len(m.order) > m.limit {
		delete(m.runs, m.order[0])
		m.order = m.order[1:]
	}

	return run, nil
}

// Get retrieves a run by ID
func (m *Manager) Get(id string) (*service.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, exists := m.runs[id]
	if !exists {
		return nil, ErrRunNotFound
	}
	return run, nil
}

// List returns all runs, newest first
func (m *Manager) List() []*service.Run {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Run, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		result = append(result, m.runs[m.order[i]])
	}
	return result
}

// Delete removes a run
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.runs[id]; !exists {
		return ErrRunNotFound
	}
	delete(m.runs, id)

	for i, runID := range m.order {
		if runID == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// CleanupExpired removes runs created more than maxAge ago
func (m *Manager) CleanupExpired(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxAge)
	kept := m.order[:0]
	removed := 0

	for _, id := range m.order {
		if m.runs[id].CreatedAt.Before(cutoff) {
			delete(m.runs, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept

	return removed
}

// Count returns the number of recorded runs
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runs)
}
