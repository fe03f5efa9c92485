package threading

// heartbeatMessage is a distinguished input message that rides in-band
// with ordinary work so its ordering relative to other input messages
// is preserved. On the child it records the times the main thread
// observed, invokes the DoHeartbeat hook, and enqueues a one-shot
// output message that invokes Heartbeat() on arrival at main.
type heartbeatMessage struct {
	BasicInputMessage
	thread      *MsgThread
	networkTime float64
	wallTime    float64
}

var heartbeatPool = NewPool(func() *heartbeatMessage { return &heartbeatMessage{} })

func newHeartbeatMessage(t *MsgThread, networkTime, wallTime float64) *heartbeatMessage {
	m := heartbeatPool.Get()
	m.BasicInputMessage = NewBasicInputMessage("heartbeat")
	m.thread = t
	m.networkTime = networkTime
	m.wallTime = wallTime
	return m
}

func (m *heartbeatMessage) Process() bool {
	ok := m.thread.hooks.DoHeartbeat(m.thread, m.networkTime, m.wallTime)
	m.thread.SendOutForced(newHeartbeatAckMessage(m.thread))
	return ok
}

func (m *heartbeatMessage) release() {
	m.thread = nil
	heartbeatPool.Put(m)
}

// heartbeatAckMessage is the one-shot output counterpart: it invokes
// the main-side Heartbeat hook when the manager processes it. Instances
// are recycled through heartbeatAckPool since a MsgThread with an
// active heartbeat cadence constructs one of these per tick.
type heartbeatAckMessage struct {
	BasicOutputMessage
	thread *MsgThread
}

var heartbeatAckPool = NewPool(func() *heartbeatAckMessage { return &heartbeatAckMessage{} })

func newHeartbeatAckMessage(t *MsgThread) *heartbeatAckMessage {
	m := heartbeatAckPool.Get()
	m.BasicOutputMessage = NewBasicOutputMessage("heartbeat-ack")
	m.thread = t
	return m
}

func (m *heartbeatAckMessage) Process() bool {
	m.thread.hooks.Heartbeat(m.thread)
	return true
}

func (m *heartbeatAckMessage) release() {
	m.thread = nil
	heartbeatAckPool.Put(m)
}

// terminalMessage is the sentinel a MsgThread force-sends on its
// out-queue once its run-loop has exited, so a Manager draining the
// out-queue can observe clean shutdown.
type terminalMessage struct {
	BasicOutputMessage
}

func newTerminalMessage(t *MsgThread) *terminalMessage {
	return &terminalMessage{
		BasicOutputMessage: NewBasicOutputMessage(t.Name() + ": thread-exit"),
	}
}

// IsTerminal reports whether msg is the shutdown sentinel a MsgThread
// sends after its run-loop exits. Managers use this to detect clean
// exit without needing the sentinel's unexported type.
func IsTerminal(msg Message) bool {
	_, ok := msg.(*terminalMessage)
	return ok
}

func (m *terminalMessage) Process() bool { return true }
