// Copyright (c) 2013, Daniel Morsing
// For more information, see the LICENSE file

package spdy

import (
	"sync"

	"github.com/morsing-labs/spdycore/frame"
)

// State is a stream's position in the close-state Mealy machine of §4.3.
type State int

const (
	StreamOpen State = iota
	StreamHalfClosedLocal
	StreamHalfClosedRemote
	StreamClosed
)

func (s State) String() string {
	switch s {
	case StreamOpen:
		return "OPEN"
	case StreamHalfClosedLocal:
		return "HALF_CLOSED_LOCAL"
	case StreamHalfClosedRemote:
		return "HALF_CLOSED_REMOTE"
	case StreamClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Stream is one logical bidirectional conversation multiplexed over a
// Session's transport.
type Stream struct {
	id       frame.StreamId
	version  frame.Version
	priority uint8
	session  *Session

	mu         sync.Mutex
	state      State
	sendWindow int64
	listener   StreamListener
}

func newStream(session *Session, id frame.StreamId, version frame.Version, priority uint8, listener StreamListener) *Stream {
	return &Stream{
		id:         id,
		version:    version,
		priority:   priority,
		session:    session,
		sendWindow: int64(session.initialWindow.Load()),
		listener:   listener,
	}
}

// Id returns the stream's identifier.
func (str *Stream) Id() frame.StreamId { return str.id }

// Version returns the SPDY version this stream was opened at.
func (str *Stream) Version() frame.Version { return str.version }

// Priority returns the stream's priority as carried on SYN_STREAM.
func (str *Stream) Priority() uint8 { return str.priority }

// State returns the stream's current close-state.
func (str *Stream) State() State {
	str.mu.Lock()
	defer str.mu.Unlock()
	return str.state
}

// localFin advances the state machine after the local endpoint sends a
// frame with FIN set, reporting whether the stream is now fully closed.
func (str *Stream) localFin() bool {
	str.mu.Lock()
	defer str.mu.Unlock()
	switch str.state {
	case StreamOpen:
		str.state = StreamHalfClosedLocal
	case StreamHalfClosedRemote:
		str.state = StreamClosed
	}
	return str.state == StreamClosed
}

// remoteFin advances the state machine after a frame with FIN set is
// received, reporting whether the stream is now fully closed.
func (str *Stream) remoteFin() bool {
	str.mu.Lock()
	defer str.mu.Unlock()
	switch str.state {
	case StreamOpen:
		str.state = StreamHalfClosedRemote
	case StreamHalfClosedLocal:
		str.state = StreamClosed
	}
	return str.state == StreamClosed
}

// reset forces the stream directly to CLOSED, the immediate transition
// any state takes on RST_STREAM (sent or received).
func (str *Stream) reset() {
	str.mu.Lock()
	defer str.mu.Unlock()
	str.state = StreamClosed
}

// window reports the stream's current send window.
func (str *Stream) window() int64 {
	str.mu.Lock()
	defer str.mu.Unlock()
	return str.sendWindow
}

// adjustWindow applies delta (negative for locally emitted DATA,
// positive for a peer WINDOW_UPDATE) and returns the window's value
// before the adjustment, so callers can detect the zero-to-positive
// edge that unblocks a stalled data unit (see the teacher's oldwind
// check in session.go's handleWindowUpdate).
func (str *Stream) adjustWindow(delta int64) (old int64) {
	str.mu.Lock()
	defer str.mu.Unlock()
	old = str.sendWindow
	str.sendWindow += delta
	return old
}
