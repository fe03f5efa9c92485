package threading

import "os"

// Reporter is the main-thread sink diagnostic output messages dispatch
// to. The core package depends only on this interface; a concrete
// zap-backed implementation lives in pkg/threading/reporter, kept out
// of this package so pkg/threading carries no logging dependency of
// its own.
type Reporter interface {
	Info(msg string)
	Warning(msg string)
	Error(msg string)
	FatalError(msg string)
	FatalErrorWithCore(msg string)
	InternalWarning(msg string)
	InternalError(msg string)
}

// DebugLogger is the main-thread sink for stream-scoped debug
// messages. Unlike the original C++ source's #ifdef DEBUG gate, Debug
// messages are always compiled in here and left to the DebugLogger to
// filter at runtime — see SPEC_FULL.md's REDESIGN note.
type DebugLogger interface {
	Log(stream string, msg string)
}

// osExit is overridden in tests so FatalError/FatalErrorWithCore's
// process-termination side effect can be exercised without killing the
// test binary.
var osExit = os.Exit

type diagnosticKind int

const (
	diagInfo diagnosticKind = iota
	diagWarning
	diagError
	diagFatalError
	diagFatalErrorWithCore
	diagInternalWarning
	diagInternalError
)

// diagnosticMessage is an output message carrying a single formatted
// diagnostic line, prefixed with the originating thread's name at
// construction time on the child. Dispatch to the Reporter happens
// when the main thread calls Process.
type diagnosticMessage struct {
	BasicOutputMessage
	kind     diagnosticKind
	reporter Reporter
}

var diagnosticPool = NewPool(func() *diagnosticMessage { return &diagnosticMessage{} })

func newDiagnosticMessage(t *MsgThread, kind diagnosticKind, msg string) *diagnosticMessage {
	m := diagnosticPool.Get()
	m.BasicOutputMessage = NewBasicOutputMessage(t.Name() + ": " + msg)
	m.kind = kind
	m.reporter = t.reporter
	return m
}

func (m *diagnosticMessage) release() {
	m.reporter = nil
	diagnosticPool.Put(m)
}

func (m *diagnosticMessage) Process() bool {
	if m.reporter == nil {
		return true
	}
	text := m.Name()
	switch m.kind {
	case diagInfo:
		m.reporter.Info(text)
	case diagWarning:
		m.reporter.Warning(text)
	case diagError:
		m.reporter.Error(text)
	case diagFatalError:
		m.reporter.FatalError(text)
		osExit(1)
	case diagFatalErrorWithCore:
		m.reporter.FatalErrorWithCore(text)
		osExit(2)
	case diagInternalWarning:
		m.reporter.InternalWarning(text)
	case diagInternalError:
		m.reporter.InternalError(text)
		osExit(2)
	}
	return true
}

// debugMessage is an output message carrying a stream-scoped debug
// line, dispatched to the DebugLogger rather than the Reporter.
type debugMessage struct {
	BasicOutputMessage
	stream string
	logger DebugLogger
}

func newDebugMessage(t *MsgThread, stream, msg string) *debugMessage {
	return &debugMessage{
		BasicOutputMessage: NewBasicOutputMessage(t.Name() + ": " + msg),
		stream:             stream,
		logger:             t.debugLogger,
	}
}

func (m *debugMessage) Process() bool {
	if m.logger != nil {
		m.logger.Log(m.stream, m.Name())
	}
	return true
}

// Info reports an informational message from the child thread. The
// main thread passes it to the Reporter once received. Child-only.
func (t *MsgThread) Info(msg string) { t.SendOut(newDiagnosticMessage(t, diagInfo, msg)) }

// Warning reports a possible problem from the child thread. Child-only.
func (t *MsgThread) Warning(msg string) { t.SendOut(newDiagnosticMessage(t, diagWarning, msg)) }

// Error reports a non-fatal error from the child thread; processing
// continues normally afterward. Child-only.
func (t *MsgThread) Error(msg string) { t.SendOut(newDiagnosticMessage(t, diagError, msg)) }

// FatalError reports a fatal error from the child thread. Once
// dispatched on main, the process exits. Child-only.
func (t *MsgThread) FatalError(msg string) { t.SendOut(newDiagnosticMessage(t, diagFatalError, msg)) }

// FatalErrorWithCore is like FatalError but additionally requests a
// core dump before exit. Child-only.
func (t *MsgThread) FatalErrorWithCore(msg string) {
	t.SendOut(newDiagnosticMessage(t, diagFatalErrorWithCore, msg))
}

// InternalWarning reports a potential internal invariant violation;
// the engine continues normally. Child-only.
func (t *MsgThread) InternalWarning(msg string) {
	t.SendOut(newDiagnosticMessage(t, diagInternalWarning, msg))
}

// InternalError reports an internal invariant failure severe enough to
// warrant a core dump. Child-only.
func (t *MsgThread) InternalError(msg string) {
	t.SendOut(newDiagnosticMessage(t, diagInternalError, msg))
}

// Debug records a stream-scoped debug message from the child thread.
// Child-only.
func (t *MsgThread) Debug(stream, msg string) { t.SendOut(newDebugMessage(t, stream, msg)) }
