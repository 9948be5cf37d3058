// Package save persists the small cross-session state: whether the tutorial
// has been seen, the wave a restart should begin at, and how many full runs
// have been completed. Storage goes through gdata; a nil manager degrades to
// in-memory state so the game runs fine where the platform store is
// unavailable.
package save

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

const (
	saveObject   = "progress"
	saveProperty = "state"
	appName      = "spikefall"
)

// State is the persisted progress record.
type State struct {
	TutorialCompleted bool `yaml:"tutorial_completed"`
	RestartWave       int  `yaml:"restart_wave"` // 1..3
	CompletionCount   int  `yaml:"completion_count"`
}

func defaultState() State {
	return State{RestartWave: 1}
}

// Manager owns the persisted state. All reads come from the in-memory copy;
// every mutation writes through.
type Manager struct {
	store *gdata.Manager // nil in degraded mode
	state State
}

// Open connects to the platform store and loads any existing progress. A
// store that cannot be opened is logged and degraded to memory-only.
func Open() *Manager {
	store, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Printf("save: open store: %v (progress will not persist)", err)
		store = nil
	}
	return NewManager(store)
}

func NewManager(store *gdata.Manager) *Manager {
	m := &Manager{store: store, state: defaultState()}
	if err := m.load(); err != nil {
		log.Printf("save: load: %v (using defaults)", err)
	}
	return m
}

func (m *Manager) load() error {
	if m.store == nil {
		return nil
	}
	if !m.store.ObjectPropExists(saveObject, saveProperty) {
		return nil
	}
	data, err := m.store.LoadObjectProp(saveObject, saveProperty)
	if err != nil {
		return fmt.Errorf("load progress: %w", err)
	}
	var s State
	if err := yaml.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshal progress: %w", err)
	}
	if s.RestartWave < 1 || s.RestartWave > 3 {
		s.RestartWave = 1
	}
	m.state = s
	return nil
}

func (m *Manager) flush() {
	if m.store == nil {
		return
	}
	data, err := yaml.Marshal(m.state)
	if err != nil {
		log.Printf("save: marshal progress: %v", err)
		return
	}
	if err := m.store.SaveObjectProp(saveObject, saveProperty, data); err != nil {
		log.Printf("save: write progress: %v", err)
	}
}

func (m *Manager) State() State {
	return m.state
}

func (m *Manager) TutorialCompleted() bool {
	return m.state.TutorialCompleted
}

func (m *Manager) MarkTutorialCompleted() {
	if m.state.TutorialCompleted {
		return
	}
	m.state.TutorialCompleted = true
	m.flush()
}

func (m *Manager) RestartWave() int {
	return m.state.RestartWave
}

// SetRestartWave records where the next run should resume. Out-of-range
// waves are clamped.
func (m *Manager) SetRestartWave(wave int) {
	if wave < 1 {
		wave = 1
	}
	if wave > 3 {
		wave = 3
	}
	if m.state.RestartWave == wave {
		return
	}
	m.state.RestartWave = wave
	m.flush()
}

func (m *Manager) CompletionCount() int {
	return m.state.CompletionCount
}

func (m *Manager) RecordCompletion() int {
	m.state.CompletionCount++
	m.state.RestartWave = 1
	m.flush()
	return m.state.CompletionCount
}
