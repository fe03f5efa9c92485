package threading

import (
	"sync"
	"sync/atomic"
)

// Runner is implemented by anything with a Run method that can serve as
// a BasicThread's main activity. BasicThread itself takes a plain func
// through SetRunner (pass a Runner's Run method value); MsgThread
// installs its unexported default run-loop that way and does not
// implement Runner.
type Runner interface {
	Run()
}

// BasicThread owns a goroutine's lifecycle: a name, a one-way
// terminating latch, and hooks for starting, stopping, and joining.
// It does not itself carry any message queues — MsgThread composes one
// with a pair of Queue[Message] instances.
type BasicThread struct {
	name string

	terminating atomic.Bool
	started     atomic.Bool
	done        chan struct{}
	wg          sync.WaitGroup

	// run is the activity the spawned goroutine executes; it defaults to
	// nil and callers must set it (via embedding MsgThread, or directly
	// via SetRunner) before Start.
	run func()

	// onStop is called on the child goroutine after run returns, before
	// the thread is considered joinable. Override via SetOnStop.
	onStop func()
}

// NewBasicThread constructs a named, unstarted BasicThread.
func NewBasicThread(name string) *BasicThread {
	return &BasicThread{name: name, done: make(chan struct{})}
}

// Name returns the thread's debug name.
func (t *BasicThread) Name() string { return t.name }

// SetRunner installs the function executed on the spawned goroutine.
func (t *BasicThread) SetRunner(run func()) { t.run = run }

// SetOnStop installs the child-side teardown hook, called after Run
// returns and before the thread is joinable.
func (t *BasicThread) SetOnStop(onStop func()) { t.onStop = onStop }

// Start spawns the goroutine running the installed Runner. Must only be
// called once, by the owning (main) goroutine.
func (t *BasicThread) Start() {
	if !t.started.CompareAndSwap(false, true) {
		return
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer close(t.done)
		if t.run != nil {
			t.run()
		}
		if t.onStop != nil {
			t.onStop()
		}
	}()
}

// Stop latches the terminating flag. Safe to call from any goroutine;
// idempotent. Does not block — call Join to wait for actual exit.
func (t *BasicThread) Stop() {
	t.terminating.Store(true)
}

// Terminating reports whether Stop has been called. Lock-free read,
// safe from either side.
func (t *BasicThread) Terminating() bool {
	return t.terminating.Load()
}

// Join blocks until the goroutine spawned by Start has returned,
// including its OnStop hook. Safe to call multiple times.
func (t *BasicThread) Join() {
	t.wg.Wait()
}

// Done returns a channel that is closed once the goroutine has
// returned, for callers that want to select on thread exit alongside
// other events.
func (t *BasicThread) Done() <-chan struct{} {
	return t.done
}
