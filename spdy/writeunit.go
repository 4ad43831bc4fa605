// Copyright (c) 2013, Daniel Morsing
// For more information, see the LICENSE file

package spdy

import "github.com/morsing-labs/spdycore/frame"

// writeUnit is the FrameBytes variant of §3/§9: either a ready control
// frame, or a data frame whose buffer is produced lazily so the current
// flow-control window is observed at flush time (§4.3, §4.5).
//
// buffer returns the bytes to submit to the transport, or nil if the
// unit is not ready yet (a data unit stalled on a zero window); the
// session re-enqueues it behind whatever is already queued and tries
// the next unit instead. onWritten runs the unit's type-scoped
// completion action immediately after buffer's bytes have been handed
// to the transport's write callback -- not after the transport
// acknowledges the write, matching §4.5's "runs immediately after write
// is invoked" rule.
type writeUnit interface {
	buffer() []byte
	onWritten(s *Session)
}

// controlUnit carries an already-serialised control frame. Header
// compression is stateful and must be serialised with stream-id
// allocation (§4.4), so by the time a controlUnit is enqueued its bytes
// are already final. isGoAway is carried for callers that want to
// recognise the unit later; the session closes the transport through
// complete, not through this flag, since GO_AWAY's closing behaviour
// differs between a graceful GoAway and a fatal abort.
type controlUnit struct {
	buf      []byte
	isGoAway bool
	complete func(error)
}

func (u *controlUnit) buffer() []byte { return u.buf }

func (u *controlUnit) onWritten(s *Session) {
	if u.complete != nil {
		u.complete(nil)
	}
}

// dataUnit carries a DATA payload that may need several flushes to
// drain fully, one chunk per available flow-control window at the time
// each chunk is produced.
type dataUnit struct {
	stream    *Stream
	payload   []byte
	sent      int
	fin       bool
	lastChunk bool
	complete  func(error)
}

func (u *dataUnit) buffer() []byte {
	remaining := len(u.payload) - u.sent
	n := remaining
	// v2 has no per-stream flow control (§3/§4.3): there is no
	// WINDOW_UPDATE to ever replenish it, so gating a v2 stream on the
	// send window would stall it permanently past the initial window.
	if u.stream.version != frame.Version2 {
		window := u.stream.window()
		if window <= 0 {
			return nil
		}
		if window < int64(n) {
			n = int(window)
		}
	}
	chunk := u.payload[u.sent : u.sent+n]
	u.lastChunk = u.sent+n == len(u.payload)
	buf := u.stream.session.gen.Data(u.stream.id, u.lastChunk && u.fin, chunk)
	if u.stream.version != frame.Version2 {
		u.stream.adjustWindow(-int64(n))
	}
	u.sent += n
	return buf
}

func (u *dataUnit) onWritten(s *Session) {
	if !u.lastChunk {
		s.enqueue(u)
		return
	}
	if u.fin {
		if u.stream.localFin() {
			s.removeStream(u.stream.id)
		}
	}
	if u.complete != nil {
		u.complete(nil)
	}
}
