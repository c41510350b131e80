package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/wricardo/mcp-training/astar/pathfind/engine"
	"github.com/wricardo/mcp-training/astar/pathfind/service"
)

var (
	ErrScenarioNotFound = service.ErrScenarioNotFound
	ErrInvalidName      = service.ErrInvalidScenarioName
)

// extensions are tried in order when a name has no extension
var extensions = []string{".json", ".yaml", ".yml"}

// Manager handles scenario loading and caching
type Manager struct {
	dir       string
	scenarios map[string]*engine.Scenario
	mu        sync.RWMutex
}

// NewManager creates a new scenario manager
func NewManager(dir string) (*Manager, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("scenario directory does not exist: %s", dir)
		}
		return nil, fmt.Errorf("failed to stat scenario directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scenario path is not a directory: %s", dir)
	}

	return &Manager{
		dir:       dir,
		scenarios: make(map[string]*engine.Scenario),
	}, nil
}

// Dir returns the scenario directory
func (m *Manager) Dir() string {
	return m.dir
}

// LoadScenario loads a scenario by ID, with or without a file extension
func (m *Manager) LoadScenario(name string) (*engine.Scenario, error) {
	id, err := scenarioID(name)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	// Check cache first
	if s, exists := m.scenarios[id]; exists {
		m.mu.RUnlock()
		return s, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if s, exists := m.scenarios[id]; exists {
		return s, nil
	}

	path, err := m.resolve(name, id)
	if err != nil {
		return nil, err
	}

	s, err := engine.LoadScenarioFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filepath.Base(path), err)
	}

	m.scenarios[id] = s
	return s, nil
}

// ListScenarios returns information about every valid scenario file
func (m *Manager) ListScenarios() ([]*service.ScenarioInfo, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	seen := make(map[string]bool)
	var infos []*service.ScenarioInfo

	for _, entry := range entries {
		if entry.IsDir() || !engine.IsScenarioFile(entry.Name()) {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if seen[id] {
			continue
		}

		s, err := m.LoadScenario(entry.Name())
		if err != nil {
			// Skip invalid scenarios
			slog.Debug("skipping scenario", "file", entry.Name(), "error", err)
			continue
		}
		seen[id] = true

		infos = append(infos, &service.ScenarioInfo{
			Filename:    entry.Name(),
			ScenarioID:  id,
			Name:        s.Name,
			Description: s.Description,
			Rows:        s.Rows,
			Cols:        s.Cols,
			Blocked:     len(s.Blocked),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ScenarioID < infos[j].ScenarioID
	})

	return infos, nil
}

// SaveScenario validates a scenario and writes it as <name>.json
func (m *Manager) SaveScenario(name string, s *engine.Scenario) error {
	id, err := scenarioID(name)
	if err != nil {
		return err
	}

	if s != nil && s.Name == "" {
		s.Name = id
	}
	if err := engine.ValidateScenario(s); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}

	path := filepath.Join(m.dir, id+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write scenario file: %w", err)
	}

	// Update cache
	m.mu.Lock()
	m.scenarios[id] = s
	m.mu.Unlock()

	return nil
}

// RefreshCache drops every cached scenario
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scenarios = make(map[string]*engine.Scenario)
}

// Evict drops a single cached scenario
func (m *Manager) Evict(name string) {
	id, err := scenarioID(name)
	if err != nil {
		return
	}
	m.mu.Lock()
	delete(m.scenarios, id)
	m.mu.Unlock()
}

// Watch evicts cached scenarios whose files change on disk. It blocks until
// ctx is done.
func (m *Manager) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(m.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", m.dir, err)
	}

	slog.Debug("watching scenario directory", "dir", m.dir)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			m.handleEvent(event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("scenario watcher error", "error", err)

		case <-ctx.Done():
			slog.Debug("scenario watcher stopping")
			return nil
		}
	}
}

// handleEvent processes a single fsnotify event
func (m *Manager) handleEvent(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if !engine.IsScenarioFile(name) {
		return
	}

	if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		m.Evict(name)
		slog.Debug("scenario changed", "file", name, "op", event.Op.String())
	}
}

// resolve finds the file backing a scenario
func (m *Manager) resolve(name, id string) (string, error) {
	if engine.IsScenarioFile(name) {
		path := filepath.Join(m.dir, name)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return "", ErrScenarioNotFound
			}
			return "", fmt.Errorf("failed to read scenario file: %w", err)
		}
		return path, nil
	}

	for _, ext := range extensions {
		path := filepath.Join(m.dir, id+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrScenarioNotFound
}

// scenarioID strips a known extension and rejects names that leave the directory
func scenarioID(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if engine.IsScenarioFile(name) {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	if name == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}
