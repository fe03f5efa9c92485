package threading

import "sync"

// Pool recycles values of type T through a sync.Pool. It exists to take
// allocation pressure off the heartbeat-ack and diagnostic message
// wrappers, which are constructed at the same rate as the diagnostics
// and heartbeats spec.md's rationale calls out as needing to sustain
// high event rates. Ordinary InputMessage[O]/OutputMessage[O] values
// authored by subsystem code are never pooled: their ownership model
// stays one-shot and GC-collected per the package's Open Question
// resolution.
type Pool[T any] struct {
	pool sync.Pool
}

// NewPool constructs a Pool whose sync.Pool.New calls generate.
func NewPool[T any](generate func() T) *Pool[T] {
	return &Pool[T]{pool: sync.Pool{New: func() any { return generate() }}}
}

// Get returns a recycled or freshly-generated T.
func (p *Pool[T]) Get() T { return p.pool.Get().(T) }

// Put returns v to the pool for reuse.
func (p *Pool[T]) Put(v T) { p.pool.Put(v) }

// poolable is implemented by message wrappers that return themselves
// to an internal Pool once Process has run. It is intentionally
// unexported: it is an implementation detail of this package's own
// heartbeat and diagnostic messages, not a hook for subsystem authors.
type poolable interface {
	release()
}

func releaseIfPoolable(msg Message) {
	if p, ok := msg.(poolable); ok {
		p.release()
	}
}
