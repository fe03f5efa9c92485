package threading

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// State is MsgThread's lifecycle stage. Transitions are strictly
// monotonic: New -> Running -> Draining -> Exited -> Joined. Re-entry
// into an earlier state is never valid.
type State uint32

const (
	StateNew State = iota
	StateRunning
	StateDraining
	StateExited
	StateJoined
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateExited:
		return "exited"
	case StateJoined:
		return "joined"
	default:
		return "unknown"
	}
}

// Hooks lets subsystem authors hook into a MsgThread's heartbeat and
// shutdown without replacing its run-loop. Each method is handed the
// owning MsgThread so an override can call the corresponding Base*
// method explicitly — the Go stand-in for "must call the parent
// implementation".
type Hooks interface {
	// DoHeartbeat runs on the child goroutine when a heartbeat message
	// is processed. Returning false terminates the thread, same as any
	// other input message's Process.
	DoHeartbeat(t *MsgThread, networkTime, wallTime float64) bool
	// Heartbeat runs on the main goroutine when the heartbeat's
	// acknowledgement output message arrives.
	Heartbeat(t *MsgThread)
	// OnStop runs on the child goroutine after the run-loop exits and
	// before the terminal sentinel is sent.
	OnStop(t *MsgThread)
}

// BaseHooks is the default no-op Hooks implementation. Embed it in a
// custom Hooks type and override only the methods you need.
type BaseHooks struct{}

func (BaseHooks) DoHeartbeat(*MsgThread, float64, float64) bool { return true }
func (BaseHooks) Heartbeat(*MsgThread)                          {}
func (BaseHooks) OnStop(*MsgThread)                             {}


// Stats reports inter-thread communication counters for a MsgThread.
type Stats struct {
	SentIn     uint64
	SentOut    uint64
	PendingIn  uint64
	PendingOut uint64
	QueueIn    QueueStats
	QueueOut   QueueStats
}

// RegistryID identifies a MsgThread inside a Manager's registry.
type RegistryID = uuid.UUID

// MsgThread combines BasicThread with an in-queue (main -> child) and
// an out-queue (child -> main) of Message, plus the diagnostic and
// heartbeat marshalling described in the package's design notes.
//
// A MsgThread is created and registered by the main goroutine only; it
// is started and stopped explicitly, and joined before being dropped.
type MsgThread struct {
	*BasicThread

	id    RegistryID
	hooks Hooks

	reporter    Reporter
	debugLogger DebugLogger

	queueIn  *Queue[Message]
	queueOut *Queue[Message]

	sentIn  atomic.Uint64
	sentOut atomic.Uint64

	state atomic.Uint32
}

// msgThreadConfig holds the queue tuning knobs a MsgThreadOption can
// override. It defaults to DefaultBatchThreshold/DefaultPollInterval,
// same as NewQueue.
type msgThreadConfig struct {
	batchThreshold int
	pollInterval   time.Duration
}

// MsgThreadOption configures optional, non-default construction
// parameters for NewMsgThread, following the functional-options shape
// used throughout this codebase's variable factories.
type MsgThreadOption func(*msgThreadConfig)

// WithQueueBatchThreshold overrides both of a MsgThread's queues' batch
// threshold, normally sourced from A3 config rather than hardcoded.
func WithQueueBatchThreshold(n int) MsgThreadOption {
	return func(c *msgThreadConfig) { c.batchThreshold = n }
}

// WithQueuePollInterval overrides both of a MsgThread's queues' bounded
// wait, normally sourced from A3 config rather than hardcoded.
func WithQueuePollInterval(d time.Duration) MsgThreadOption {
	return func(c *msgThreadConfig) { c.pollInterval = d }
}

// NewMsgThread constructs an unstarted MsgThread. hooks may be nil, in
// which case BaseHooks{} is used. reporter/debugLogger may be nil, in
// which case diagnostic calls are silently dropped — callers that want
// diagnostics observed on the main thread must supply real sinks.
func NewMsgThread(name string, hooks Hooks, reporter Reporter, debugLogger DebugLogger, opts ...MsgThreadOption) *MsgThread {
	if hooks == nil {
		hooks = BaseHooks{}
	}
	cfg := msgThreadConfig{batchThreshold: DefaultBatchThreshold, pollInterval: DefaultPollInterval}
	for _, opt := range opts {
		opt(&cfg)
	}
	t := &MsgThread{
		BasicThread: NewBasicThread(name),
		id:          uuid.New(),
		hooks:       hooks,
		reporter:    reporter,
		debugLogger: debugLogger,
		queueIn:     NewQueueWithTuning[Message](cfg.batchThreshold, cfg.pollInterval),
		queueOut:    NewQueueWithTuning[Message](cfg.batchThreshold, cfg.pollInterval),
	}
	t.state.Store(uint32(StateNew))
	t.SetRunner(t.run)
	t.SetOnStop(t.onStop)
	return t
}

// ID returns the identifier a Manager uses as this thread's registry
// key.
func (t *MsgThread) ID() RegistryID { return t.id }

// StateNow returns the thread's current lifecycle state.
func (t *MsgThread) StateNow() State { return State(t.state.Load()) }

func (t *MsgThread) setState(s State) { t.state.Store(uint32(s)) }

// Start transitions New -> Running and spawns the child goroutine.
func (t *MsgThread) Start() {
	t.setState(StateRunning)
	t.BasicThread.Start()
}

// Stop latches the terminating flag and transitions Running -> Draining.
// Non-forced SendIn/SendOut calls made after this point are dropped.
// Main-thread-only: main is the in-queue's sole producer, and Stop
// flushes it, so calling Stop from any other goroutine would race
// producerLocal against a concurrent Put. Without the flush, any
// sub-threshold tail left in producerLocal by a burst under
// batchThreshold would never reach staging, stranding the child in its
// bounded Get wait forever and violating the bounded shutdown
// guarantee. The run-loop's own self-termination path uses stopSelf
// instead, since it executes on the child goroutine.
func (t *MsgThread) Stop() {
	t.stopSelf()
	t.queueIn.Flush()
}

// stopSelf latches the terminating flag and transitions Running ->
// Draining without touching the in-queue. Safe to call from either
// goroutine; used by Stop (main) and by the run-loop's self-stop on a
// handler returning false (child) so the child never touches
// queueIn's producer-local buffer.
func (t *MsgThread) stopSelf() {
	t.setState(StateDraining)
	t.BasicThread.Stop()
}

// SendIn queues msg for the child thread. Main-thread-only. If the
// thread is terminating, msg is dropped without being enqueued.
func (t *MsgThread) SendIn(msg Message) { t.sendIn(msg, false) }

// SendInForced queues msg for the child thread even if the thread is
// terminating — used internally by Heartbeat.
func (t *MsgThread) SendInForced(msg Message) { t.sendIn(msg, true) }

func (t *MsgThread) sendIn(msg Message, force bool) {
	if t.Terminating() && !force {
		return
	}
	t.queueIn.Put(msg)
	t.sentIn.Add(1)
}

// SendOut queues msg for the main thread. Child-thread-only. If the
// thread is terminating, msg is dropped without being enqueued.
func (t *MsgThread) SendOut(msg Message) { t.sendOut(msg, false) }

// SendOutForced queues msg for the main thread even if the thread is
// terminating.
func (t *MsgThread) SendOutForced(msg Message) { t.sendOut(msg, true) }

func (t *MsgThread) sendOut(msg Message, force bool) {
	if t.Terminating() && !force {
		return
	}
	t.queueOut.Put(msg)
	t.sentOut.Add(1)
}

// RetrieveOut pops a message sent by the child from the child-to-main
// queue. Called regularly by the Manager. Returns (nil, false) if
// nothing is ready without blocking past the queue's bounded wait.
func (t *MsgThread) RetrieveOut() (Message, bool) { return t.queueOut.Get() }

// RetrieveIn pops a message sent by main from the main-to-child queue.
// Only the child goroutine may call this.
func (t *MsgThread) RetrieveIn() (Message, bool) { return t.queueIn.Get() }

// HasOut reports whether at least one message is pending for main.
func (t *MsgThread) HasOut() bool { return t.queueOut.Ready() }

// MightHaveOut is a lock-free approximation of HasOut.
func (t *MsgThread) MightHaveOut() bool { return t.queueOut.MaybeReady() }

// GetStats fills in a snapshot of inter-thread communication counters.
func (t *MsgThread) GetStats() Stats {
	qi, qo := t.queueIn.Stats(), t.queueOut.Stats()
	return Stats{
		SentIn:     t.sentIn.Load(),
		SentOut:    t.sentOut.Load(),
		PendingIn:  t.sentIn.Load() - qi.Dequeued,
		PendingOut: t.sentOut.Load() - qo.Dequeued,
		QueueIn:    qi,
		QueueOut:   qo,
	}
}

// Heartbeat is invoked by the Manager on its periodic tick. It builds a
// heartbeat message carrying the given times and force-sends it in-band
// with ordinary input work, preserving ordering per the package's
// ordering guarantees.
func (t *MsgThread) Heartbeat(networkTime, wallTime float64) {
	t.SendInForced(newHeartbeatMessage(t, networkTime, wallTime))
}

// run is the default child-side main loop, installed as this
// MsgThread's Runner at construction. It processes in-queue messages
// until Terminating is latched and the in-queue is drained, then runs
// the residual drain. The OnStop hook and terminal sentinel follow in
// onStop, which BasicThread calls after run returns.
func (t *MsgThread) run() {
	for !(t.Terminating() && !t.queueIn.MaybeReady()) {
		msg, ok := t.RetrieveIn()
		if !ok {
			continue
		}
		if !msg.Process() {
			// Self-termination runs on the child goroutine: latch
			// terminating without flushing queueIn (main's buffer).
			// The eventual Manager.Shutdown/Stop call from main still
			// flushes any tail once it follows.
			t.stopSelf()
		}
		releaseIfPoolable(msg)
	}

	// Residual drain: anything still in the queue survived SendIn's
	// terminating-drop filter (it was either enqueued before Stop, or
	// force-sent), so it is legitimate to execute, not discard.
	for t.queueIn.Ready() {
		msg, ok := t.RetrieveIn()
		if !ok {
			break
		}
		msg.Process()
		releaseIfPoolable(msg)
	}
}

// onStop is the default OnStop handler, installed at construction. It
// runs the Hooks.OnStop callback, transitions to Exited, and sends the
// terminal sentinel so a Manager draining the out-queue observes clean
// shutdown. The child is the out-queue's sole producer, so it flushes
// around both steps: once to splice out any diagnostics left below
// batchThreshold by the run-loop or OnStop itself, and once more after
// the terminal sentinel so that Put too is never stranded sub-threshold
// — without this a Manager's final DrainOnce could miss both trailing
// diagnostics and the clean-shutdown sentinel.
func (t *MsgThread) onStop() {
	t.hooks.OnStop(t)
	t.queueOut.Flush()
	t.setState(StateExited)
	t.SendOutForced(newTerminalMessage(t))
	t.queueOut.Flush()
}

// Join blocks until the child goroutine has exited and transitions
// Exited -> Joined.
func (t *MsgThread) Join() {
	t.BasicThread.Join()
	t.setState(StateJoined)
}
