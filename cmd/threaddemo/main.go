// Command threaddemo wires pkg/threading into a tiny standalone engine:
// a Manager, a zap-backed Reporter/DebugLogger pair, and two demo
// subsystems (filewriter, textlogger) started concurrently and ticked
// by a heartbeat/drain main loop until SIGINT. It exists to exercise
// the core package end-to-end the way the original's analysis engine
// exercises threading::MsgThread from its main event loop, per
// spec.md §1's "out of scope, but referenced" main loop.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/flowwatch/threading/examples/filewriter"
	"github.com/flowwatch/threading/examples/textlogger"
	"github.com/flowwatch/threading/internal/config"
	"github.com/flowwatch/threading/pkg/threading"
	"github.com/flowwatch/threading/pkg/threading/reporter"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	outputPath := flag.String("out", "threaddemo-records.log", "path the filewriter demo worker appends records to")
	flag.Parse()

	if err := run(*configPath, *outputPath); err != nil {
		fmt.Fprintln(os.Stderr, "threaddemo:", err)
		os.Exit(1)
	}
}

func run(configPath, outputPath string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	level, err := parseLevel(cfg.Reporter.Level)
	if err != nil {
		return err
	}
	rep := reporter.New(level)
	defer func() { _ = rep.Sync() }()
	dbg := reporter.NewDebugLogger(rep)

	mgr := threading.NewManager()

	queueOpts := []threading.MsgThreadOption{
		threading.WithQueueBatchThreshold(cfg.QueueBatchThreshold),
		threading.WithQueuePollInterval(cfg.QueueWaitTimeout),
	}

	fw, err := filewriter.New(outputPath, rep, dbg, queueOpts...)
	if err != nil {
		return fmt.Errorf("start filewriter: %w", err)
	}
	mgr.Register(fw.MsgThread)

	tl := textlogger.New("textlogger:stdout", os.Stdout, rep, dbg, queueOpts...)
	mgr.Register(tl.MsgThread)

	var eg errgroup.Group
	eg.Go(func() error { fw.Start(); return nil })
	eg.Go(func() error { tl.Start(); return nil })
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("start workers: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	heartbeatTicker := time.NewTicker(cfg.HeartbeatInterval)
	defer heartbeatTicker.Stop()
	drainTicker := time.NewTicker(cfg.DrainInterval)
	defer drainTicker.Stop()

	startWall := time.Now()
	recordSeq := 0

mainLoop:
	for {
		select {
		case <-ctx.Done():
			break mainLoop
		case now := <-heartbeatTicker.C:
			wallTime := now.Sub(startWall).Seconds()
			mgr.TickHeartbeatAll(wallTime, wallTime)
		case <-drainTicker.C:
			mgr.DrainAll()
			recordSeq++
			fw.WriteRecord(fmt.Sprintf("tick %d", recordSeq))
			tl.Log(fmt.Sprintf("drained tick %d, %d records written so far", recordSeq, fw.RecordsWritten()))
		}
	}

	if err := mgr.Shutdown(cfg.ShutdownTimeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func parseLevel(s string) (reporter.Level, error) {
	switch s {
	case "debug":
		return reporter.LevelDebug, nil
	case "info", "":
		return reporter.LevelInfo, nil
	case "warn":
		return reporter.LevelWarn, nil
	case "error":
		return reporter.LevelError, nil
	case "fatal":
		return reporter.LevelFatal, nil
	default:
		return 0, fmt.Errorf("unknown reporter level %q", s)
	}
}
