package threading

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RegisterUnregisterOrder(t *testing.T) {
	mgr := NewManager()
	a := NewMsgThread("a", nil, nil, nil)
	b := NewMsgThread("b", nil, nil, nil)
	c := NewMsgThread("c", nil, nil, nil)

	mgr.Register(a)
	mgr.Register(b)
	mgr.Register(c)

	names := func() []string {
		var out []string
		for _, th := range mgr.Threads() {
			out = append(out, th.Name())
		}
		return out
	}
	assert.Equal(t, []string{"a", "b", "c"}, names())

	mgr.Unregister(b.ID())
	assert.Equal(t, []string{"a", "c"}, names())
}

func TestManager_DrainOnceProcessesInFIFOOrder(t *testing.T) {
	rep := &fakeReporter{}
	th := NewMsgThread("emitter", nil, rep, nil)
	th.Info("first")
	th.Warning("second")

	mgr := NewManager()
	mgr.Register(th)

	n := mgr.DrainOnce(th)

	assert.Equal(t, 2, n)
	require.Len(t, rep.calls, 2)
	assert.Equal(t, "info:emitter: first", rep.calls[0])
	assert.Equal(t, "warn:emitter: second", rep.calls[1])
}

func TestManager_DrainAllVisitsEveryThreadInOrder(t *testing.T) {
	rep := &fakeReporter{}
	a := NewMsgThread("a", nil, rep, nil)
	b := NewMsgThread("b", nil, rep, nil)
	a.Info("from-a")
	b.Info("from-b")

	mgr := NewManager()
	mgr.Register(a)
	mgr.Register(b)

	total := mgr.DrainAll()

	assert.Equal(t, 2, total)
	require.Len(t, rep.calls, 2)
	assert.Equal(t, "info:a: from-a", rep.calls[0])
	assert.Equal(t, "info:b: from-b", rep.calls[1])
}

func TestManager_TickHeartbeatAllReachesEveryThread(t *testing.T) {
	h1 := &recordingHooks{}
	h2 := &recordingHooks{}
	t1 := NewMsgThread("t1", h1, nil, nil)
	t2 := NewMsgThread("t2", h2, nil, nil)
	t1.Start()
	t2.Start()
	defer func() {
		t1.Stop()
		t2.Stop()
		t1.Join()
		t2.Join()
	}()

	mgr := NewManager()
	mgr.Register(t1)
	mgr.Register(t2)

	mgr.TickHeartbeatAll(3, 3)

	require.Eventually(t, func() bool {
		return len(h1.snapshot()) == 1 && len(h2.snapshot()) == 1
	}, time.Second, time.Millisecond)

	assert.Equal(t, []float64{3}, h1.snapshot())
	assert.Equal(t, []float64{3}, h2.snapshot())
}

func TestManager_ShutdownJoinsAndDrainsTerminalSentinel(t *testing.T) {
	th := NewMsgThread("shutdown-me", nil, nil, nil)
	th.Start()

	mgr := NewManager()
	mgr.Register(th)

	err := mgr.Shutdown(time.Second)

	require.NoError(t, err)
	assert.Equal(t, StateJoined, th.StateNow())
	assert.False(t, th.HasOut(), "the terminal sentinel must have been drained")
	assert.Empty(t, mgr.Threads())
}

func TestManager_ShutdownReportsTimeoutWithoutBlockingForever(t *testing.T) {
	th := NewMsgThread("stuck", nil, nil, nil)
	release := make(chan struct{})
	th.SetRunner(func() { <-release })
	th.Start()
	defer close(release)

	mgr := NewManager()
	mgr.Register(th)

	err := mgr.Shutdown(10 * time.Millisecond)

	require.Error(t, err)
	var timeoutErr *ShutdownTimeoutError
	assert.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "stuck", timeoutErr.ThreadName)
}
