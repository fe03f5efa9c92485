package threading

import (
	"sync"
	"time"

	"go.uber.org/multierr"
)

// Manager is the external collaborator described in the package's
// design notes: it holds a weak, non-owning registry of MsgThreads
// (keyed by RegistryID, in registration order), periodically drains
// each one's out-queue in that fixed order, and periodically injects
// heartbeats. NewMsgThread does not register the thread with any
// Manager: the caller adds it with Register after constructing it and
// removes it with Unregister. The Manager never owns the thread and
// never frees it.
type Manager struct {
	mu      sync.RWMutex
	order   []RegistryID
	threads map[RegistryID]*MsgThread
}

// NewManager constructs an empty Manager.
func NewManager() *Manager {
	return &Manager{threads: make(map[RegistryID]*MsgThread)}
}

// Register adds t to the registry, appending it to the round-robin
// drain order. Returns t's registry id for symmetry with Unregister,
// though callers usually just keep t.ID().
func (m *Manager) Register(t *MsgThread) RegistryID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threads[t.ID()] = t
	m.order = append(m.order, t.ID())
	return t.ID()
}

// Unregister removes a thread from the registry. It does not stop or
// join the thread — callers must do that themselves first.
func (m *Manager) Unregister(id RegistryID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.threads, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Threads returns the currently registered threads in round-robin
// drain order. The slice is a snapshot; it does not alias internal
// state.
func (m *Manager) Threads() []*MsgThread {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*MsgThread, 0, len(m.order))
	for _, id := range m.order {
		if t, ok := m.threads[id]; ok {
			out = append(out, t)
		}
	}
	return out
}

// DrainOnce pulls every currently-ready output message from t and
// invokes Process on each, in the order they were retrieved. It does
// not block waiting for more messages to arrive: once RetrieveOut
// returns nothing ready, DrainOnce returns. Called regularly by the
// owner of this Manager (the engine's main loop), once per registered
// thread, in registry order — this sequential, non-fanned-out
// invocation is what the package's round-robin-drain non-goal refers
// to: DrainOnce never parallelizes across threads.
func (m *Manager) DrainOnce(t *MsgThread) int {
	n := 0
	for t.HasOut() {
		msg, ok := t.RetrieveOut()
		if !ok {
			break
		}
		msg.Process()
		releaseIfPoolable(msg)
		n++
	}
	return n
}

// DrainAll calls DrainOnce for every registered thread, in round-robin
// registry order, and returns the total number of messages processed.
func (m *Manager) DrainAll() int {
	total := 0
	for _, t := range m.Threads() {
		total += m.DrainOnce(t)
	}
	return total
}

// TickHeartbeat injects a heartbeat into t carrying the given network
// and wall-clock times. Called at a configurable cadence by the
// engine's main loop.
func (m *Manager) TickHeartbeat(t *MsgThread, networkTime, wallTime float64) {
	t.Heartbeat(networkTime, wallTime)
}

// TickHeartbeatAll calls TickHeartbeat for every registered thread, in
// registry order.
func (m *Manager) TickHeartbeatAll(networkTime, wallTime float64) {
	for _, t := range m.Threads() {
		m.TickHeartbeat(t, networkTime, wallTime)
	}
}

// Shutdown stops every registered thread, joins each of them, performs
// one final DrainOnce pass so terminal sentinels and any residual
// diagnostics are observed, and unregisters them all. Threads are
// joined one after another, and each one gets its own wait of at most
// joinTimeout; threads that do not exit in time are reported in the
// returned error but left registered.
func (m *Manager) Shutdown(joinTimeout time.Duration) error {
	threads := m.Threads()

	for _, t := range threads {
		t.Stop()
	}

	var errs error
	for _, t := range threads {
		select {
		case <-t.Done():
			t.Join()
		case <-time.After(joinTimeout):
			errs = multierr.Append(errs, &ShutdownTimeoutError{ThreadName: t.Name()})
			continue
		}
		m.DrainOnce(t)
		m.Unregister(t.ID())
	}
	return errs
}

// ShutdownTimeoutError reports that a thread did not exit within a
// Manager's Shutdown join timeout.
type ShutdownTimeoutError struct {
	ThreadName string
}

func (e *ShutdownTimeoutError) Error() string {
	return "threading: thread " + e.ThreadName + " did not exit before shutdown timeout"
}
