package worldstage

import (
	"sync"
)

type Stage string

const (
	Init         Stage = "Init"         // The default stage of world
	Starting     Stage = "Starting"     // World is moved to this stage after StartGame() is called
	Ready        Stage = "Ready"        // World is moved to this stage when it's ready to start ticking
	Running      Stage = "Running"      // World is moved to this stage when Tick() is first called
	ShuttingDown Stage = "ShuttingDown" // World is moved to this stage when it received a shutdown signal
	ShutDown     Stage = "ShutDown"     // World is moved to this stage when it has successfully shutdown
)

// Manager tracks the lifecycle stage of a world. All transitions are guarded by a mutex so
// the stage can be inspected and awaited from any goroutine.
type Manager struct {
	mu      sync.Mutex
	current Stage
	notify  map[Stage]chan struct{}
}

func NewManager() *Manager {
	m := &Manager{
		current: Init,
		notify:  map[Stage]chan struct{}{},
	}
	return m
}

func (m *Manager) CompareAndSwap(oldStage, newStage Stage) (swapped bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != oldStage {
		return false
	}
	m.store(newStage)
	return true
}

func (m *Manager) Current() Stage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Manager) Store(val Stage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store(val)
}

func (m *Manager) Swap(newStage Stage) (oldStage Stage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	oldStage = m.current
	m.store(newStage)
	return oldStage
}

// NotifyOnStage returns a channel that is closed once the given stage is reached. If the
// world is already at that stage the returned channel is closed immediately.
func (m *Manager) NotifyOnStage(stage Stage) <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := m.channelFor(stage)
	if m.current == stage {
		m.closeOnce(stage)
	}
	return ch
}

// store must be called with the mutex held.
func (m *Manager) store(val Stage) {
	m.current = val
	m.channelFor(val)
	m.closeOnce(val)
}

func (m *Manager) channelFor(stage Stage) chan struct{} {
	ch, ok := m.notify[stage]
	if !ok {
		ch = make(chan struct{})
		m.notify[stage] = ch
	}
	return ch
}

func (m *Manager) closeOnce(stage Stage) {
	ch := m.notify[stage]
	select {
	case <-ch:
		// already closed
	default:
		close(ch)
	}
}
