package h2keepalive

import (
	"crypto/rand"
	"encoding/binary"
)

// keepAlivePingContent and gracefulClosePingContent are the two magic PING
// payloads (§3): chosen once per process, with their low bit cleared/set
// respectively so the pair is visually distinguishable in a hex trace and
// unambiguously demultiplexed on ACK receipt, without needing any other
// state to decide which FSM an incoming ACK belongs to.
var (
	keepAlivePingContent     = newPingMagic(0)
	gracefulClosePingContent = newPingMagic(1)
)

func newPingMagic(lowBit uint64) [8]byte {
	var raw [8]byte
	if _, err := rand.Read(raw[:]); err != nil {
		// crypto/rand.Read on the standard library's Reader does not fail in
		// practice; a panic here would indicate a broken host environment
		// that every other use of crypto/rand on this process would also
		// be unable to tolerate.
		panic("h2keepalive: crypto/rand unavailable: " + err.Error())
	}
	v := binary.BigEndian.Uint64(raw[:])
	v = (v &^ 1) | lowBit
	binary.BigEndian.PutUint64(raw[:], v)
	return raw
}

// GOAWAY debug payloads (§3): short, ASCII, read-only. Declared once as
// package-level []byte so every send copies from the same backing array
// rather than re-allocating a literal per call.
var (
	debugLocal                = []byte("0.local")
	debugRemote               = []byte("1.remote")
	debugSecond               = []byte("2.second")
	debugGracefulCloseTimeout = []byte("3.graceful-close-timeout")
	debugKeepAliveTimeout     = []byte("4.keep-alive-timeout")
)

// pingProtocol implements §4.3: sending PINGs with the right magic payload
// and replying to PING-ACK=false frames unconditionally, regardless of any
// FSM state. It holds no state of its own beyond the Transport it writes to.
type pingProtocol struct {
	transport Transport
}

// sendKeepAlive writes (and flushes) a keep-alive probe.
func (p *pingProtocol) sendKeepAlive() error {
	if err := p.transport.WritePing(false, keepAlivePingContent); err != nil {
		return err
	}
	return p.transport.Flush()
}

// sendGracefulClose writes (and flushes) a graceful-close probe.
func (p *pingProtocol) sendGracefulClose() error {
	if err := p.transport.WritePing(false, gracefulClosePingContent); err != nil {
		return err
	}
	return p.transport.Flush()
}

// receivePing implements the unconditional-echo half of §4.3: whenever a
// non-ACK PING arrives, this component MUST reply with an ACK echoing the
// same payload, regardless of its own state — the peer is entitled to probe
// at any time. ack=true frames are not handled here; Manager.OnPingReceived
// dispatches them to the FSMs by payload (classifyPingAck).
func (p *pingProtocol) receivePing(ack bool, data [8]byte) error {
	if ack {
		return nil
	}
	if err := p.transport.WritePing(true, data); err != nil {
		return err
	}
	return p.transport.Flush()
}

// classifyPingAck reports which magic payload an ACK corresponds to, or
// neither, by exact match against the two §3 payloads.
type pingPurpose uint8

const (
	pingUnknown pingPurpose = iota
	pingKeepAlive
	pingGracefulClose
)

func classifyPingAck(data [8]byte) pingPurpose {
	switch data {
	case keepAlivePingContent:
		return pingKeepAlive
	case gracefulClosePingContent:
		return pingGracefulClose
	default:
		return pingUnknown
	}
}
