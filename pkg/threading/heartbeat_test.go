package threading

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHooks struct {
	BaseHooks
	mu    sync.Mutex
	ticks []float64
}

func (h *recordingHooks) DoHeartbeat(_ *MsgThread, networkTime, _ float64) bool {
	h.mu.Lock()
	h.ticks = append(h.ticks, networkTime)
	h.mu.Unlock()
	return true
}

func (h *recordingHooks) snapshot() []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]float64, len(h.ticks))
	copy(out, h.ticks)
	return out
}

func TestHeartbeat_TicksArriveInOrder(t *testing.T) {
	hooks := &recordingHooks{}
	th := NewMsgThread("beater", hooks, nil, nil)
	th.Start()
	defer func() {
		th.Stop()
		th.Join()
	}()

	th.Heartbeat(0, 0)
	th.Heartbeat(1, 1)
	th.Heartbeat(2, 2)

	require.Eventually(t, func() bool {
		return len(hooks.snapshot()) == 3
	}, time.Second, time.Millisecond)

	assert.Equal(t, []float64{0, 1, 2}, hooks.snapshot())
}

func TestHeartbeat_AckDrainsAndInvokesMainSideHook(t *testing.T) {
	hooks := &ackCountingHooks{}
	th := NewMsgThread("acker", hooks, nil, nil)
	th.Start()
	defer func() {
		th.Stop()
		th.Join()
	}()

	th.Heartbeat(5, 5)

	require.Eventually(t, func() bool { return th.HasOut() }, time.Second, time.Millisecond)

	msg, ok := th.RetrieveOut()
	require.True(t, ok)
	assert.True(t, msg.Process())
	releaseIfPoolable(msg)

	assert.Equal(t, 1, hooks.calls)
}

type ackCountingHooks struct {
	BaseHooks
	calls int
}

func (h *ackCountingHooks) Heartbeat(*MsgThread) { h.calls++ }

func TestHeartbeat_MessagesAreRecycledThroughPool(t *testing.T) {
	th := NewMsgThread("pooled", nil, nil, nil)

	first := newHeartbeatMessage(th, 1, 1)
	first.release()
	second := newHeartbeatMessage(th, 2, 2)

	assert.Same(t, first, second)
}

type notTerminalMessage struct {
	BasicOutputMessage
}

func (m *notTerminalMessage) Process() bool { return true }

func TestIsTerminal_DetectsSentinelOnly(t *testing.T) {
	th := NewMsgThread("terminal", nil, nil, nil)
	sentinel := newTerminalMessage(th)
	other := &notTerminalMessage{BasicOutputMessage: NewBasicOutputMessage("not-a-sentinel")}

	assert.True(t, IsTerminal(sentinel))
	assert.False(t, IsTerminal(other))
}
