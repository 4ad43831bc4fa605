// Copyright (c) 2013, Daniel Morsing
// For more information, see the LICENSE file

package spdy

import "github.com/morsing-labs/spdycore/frame"

// enqueue appends a write unit to the back of the queue and attempts to
// flush. A unit may reach this either as a fresh request or as a
// continuation of a data unit that did not fully drain on its previous
// turn; both cases go to the back, so other already-queued frames are
// not starved (§4.5: "Data units may be re-queued behind later frames
// when window-stalled -- this is intentional").
func (s *Session) enqueue(u writeUnit) {
	s.qmu.Lock()
	s.queue = append(s.queue, u)
	s.qmu.Unlock()
	s.flush()
}

// flush drains at most one write unit to the transport. At most one
// unit is ever in flight: the flushing flag enforces single-flight
// submission, and the transport's completion callback re-invokes flush
// once the in-flight write is acknowledged (§4.5).
func (s *Session) flush() {
	s.qmu.Lock()
	if s.flushing || len(s.queue) == 0 {
		s.qmu.Unlock()
		return
	}
	unit := s.queue[0]
	behind := len(s.queue) > 1
	s.queue = s.queue[1:]
	s.flushing = true
	s.qmu.Unlock()

	buf := unit.buffer()
	if buf == nil {
		// Window-stalled: put the unit back and give up the flushing slot.
		// Retry immediately only if something else was already queued
		// behind it; otherwise nothing has changed and retrying now would
		// just spin until a WindowUpdate or new enqueue wakes it back up.
		s.qmu.Lock()
		s.flushing = false
		s.queue = append(s.queue, unit)
		s.qmu.Unlock()
		if behind {
			s.flush()
		}
		return
	}

	s.controller.Write(buf, func(err error) {
		s.qmu.Lock()
		s.flushing = false
		s.qmu.Unlock()
		if err != nil {
			s.logger.Printf("spdy: transport write failed: %v", err)
			s.doClose(frame.SessionStatusInternalError)
			return
		}
		s.flush()
	})
	unit.onWritten(s)
}
