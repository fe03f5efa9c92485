// Package reporter provides the default zap-backed implementations of
// threading.Reporter and threading.DebugLogger. It is kept outside
// pkg/threading so the core primitive carries no logging dependency of
// its own — subsystem authors may pass any Reporter/DebugLogger they
// like to threading.NewMsgThread, this one is simply the batteries
// zeusync-style engines reach for by default.
package reporter

import (
	"os"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the minimum severity a Reporter logs, mapped onto zap's
// levels.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// Reporter is the default threading.Reporter, backed by a zap.Logger
// configured the way the teacher engine configures its own: sampled,
// JSON-encoded, stderr output. Adapted from the corpus's
// observability/log package, trimmed to the string-only surface the
// diagnostic messages in pkg/threading actually send.
type Reporter struct {
	log *zap.Logger
}

// New builds a Reporter logging at the given level and above.
func New(level Level) *Reporter {
	config := zap.Config{
		Level:       zap.NewAtomicLevelAt(toZapLevel(level)),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}

	zapLogger, err := config.Build()
	if err != nil {
		panic(err)
	}

	return &Reporter{log: zapLogger}
}

func (r *Reporter) Info(msg string)    { r.log.Info(msg) }
func (r *Reporter) Warning(msg string) { r.log.Warn(msg) }
func (r *Reporter) Error(msg string)   { r.log.Error(msg) }

// FatalError logs at error level and lets the caller (threading's
// diagnostic message) perform the actual os.Exit, matching
// spec.md's split between "reported" and "the engine terminates".
func (r *Reporter) FatalError(msg string) { r.log.Error(msg, zap.Bool("fatal", true)) }

// FatalErrorWithCore additionally requests a core dump before the
// caller exits.
func (r *Reporter) FatalErrorWithCore(msg string) {
	r.log.Error(msg, zap.Bool("fatal", true), zap.Bool("core_dump", true))
	requestCoreDump()
}

func (r *Reporter) InternalWarning(msg string) { r.log.Warn(msg, zap.Bool("internal", true)) }

func (r *Reporter) InternalError(msg string) {
	r.log.Error(msg, zap.Bool("internal", true), zap.Bool("core_dump", true))
	requestCoreDump()
}

// Sync flushes any buffered log entries. Call before process exit.
func (r *Reporter) Sync() error { return r.log.Sync() }

// DebugLogger is the default threading.DebugLogger: it fans debug
// lines into the same zap.Logger under a "stream" field, gated by the
// Reporter's configured level rather than a compile-time #ifdef — see
// SPEC_FULL.md's REDESIGN note.
type DebugLogger struct {
	log *zap.Logger
}

// NewDebugLogger builds a DebugLogger sharing a Reporter's underlying
// zap.Logger.
func NewDebugLogger(r *Reporter) *DebugLogger {
	return &DebugLogger{log: r.log}
}

func (d *DebugLogger) Log(stream, msg string) {
	d.log.Debug(msg, zap.String("stream", stream))
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zap.DebugLevel
	case LevelInfo:
		return zap.InfoLevel
	case LevelWarn:
		return zap.WarnLevel
	case LevelError:
		return zap.ErrorLevel
	case LevelFatal:
		return zap.FatalLevel
	default:
		return zap.InfoLevel
	}
}

// requestCoreDump raises SIGABRT against the current process, the
// closest analogue to the C++ original's abort()-triggered core file
// available on a managed runtime.
func requestCoreDump() {
	_ = syscall.Kill(os.Getpid(), syscall.SIGABRT)
}
