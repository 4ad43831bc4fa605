// Copyright (c) 2013, Daniel Morsing
// For more information, see the LICENSE file

package spdy

import (
	"github.com/morsing-labs/spdycore/frame"
	"github.com/morsing-labs/spdycore/parser"
)

// OnControlFrame implements parser.Listener, dispatching an inbound
// control frame to the handler for its concrete type (§4.4).
func (s *Session) OnControlFrame(f frame.Frame) {
	switch fr := f.(type) {
	case *frame.SynStreamFrame:
		s.onSyn(fr)
	case *frame.SynReplyFrame:
		s.onReply(fr)
	case *frame.RstStreamFrame:
		s.onRst(fr)
	case *frame.SettingsFrame:
		s.onSettings(fr)
	case *frame.NoopFrame:
		// deprecated, ignored on receipt.
	case *frame.PingFrame:
		s.onPing(fr)
	case *frame.GoAwayFrame:
		s.onGoAway(fr)
	case *frame.HeadersFrame:
		s.onHeaders(fr)
	case *frame.WindowUpdateFrame:
		s.onWindowUpdate(fr)
	default:
		s.logger.Printf("spdy: unhandled frame %T", fr)
	}
}

// OnDataFrame implements parser.Listener.
func (s *Session) OnDataFrame(f *frame.DataFrame, payload []byte) {
	str, ok := s.getStream(f.StreamId)
	if !ok {
		s.rstUnknownStream(f.StreamId)
		return
	}
	if state := str.State(); state == StreamHalfClosedRemote || state == StreamClosed {
		// the peer already sent FIN on this stream; a further DATA
		// frame is a protocol violation, not a second delivery (§4.3/§7).
		status := frame.StreamStatusProtocolError
		if str.version == frame.Version3 {
			status = frame.StreamStatusStreamAlreadyClosed
		}
		s.Rst(str.version, RstInfo{StreamId: str.id, StatusCode: status})
		return
	}
	fin := f.Fin()
	closed := false
	if fin {
		closed = str.remoteFin()
	}
	if str.listener != nil {
		s.safeCall(func() { str.listener.OnData(str, payload, fin) })
	}
	if closed {
		s.removeStream(str.id)
		s.notifyStreamClosed(str, 0)
	}
}

// OnStreamException implements parser.Listener: reset the offending
// stream and keep the session alive (§7).
func (s *Session) OnStreamException(e *parser.StreamException) {
	s.logger.Printf("spdy: stream %d: %v", e.StreamId, e.Cause)
	s.Rst(frame.Version3, RstInfo{StreamId: e.StreamId, StatusCode: e.StatusCode})
}

// OnSessionException implements parser.Listener: the connection can no
// longer be parsed; emit GO_AWAY and close (§7).
func (s *Session) OnSessionException(e *parser.SessionException) {
	s.logger.Printf("spdy: session: %v", e.Cause)
	s.abort(frame.Version3, e.StatusCode)
}

func (s *Session) onSyn(syn *frame.SynStreamFrame) {
	if syn.Unidirectional() {
		// unidirectional (server-push) streams are not implemented by
		// the core; see §9.
		s.Rst(syn.Version, RstInfo{StreamId: syn.StreamId, StatusCode: frame.StreamStatusRefusedStream})
		return
	}

	if s.streamCount() >= int(s.maxConcurrentStreams.Load()) {
		s.Rst(syn.Version, RstInfo{StreamId: syn.StreamId, StatusCode: frame.StreamStatusRefusedStream})
		return
	}

	str := newStream(s, syn.StreamId, syn.Version, syn.Priority, nil)
	existing, inserted := s.putIfAbsent(str)
	if !inserted {
		// duplicate id: reset the existing stream, the new SYN is
		// treated as illegitimate (§7). Notify here directly: the stream
		// is removed from the registry first, so the lookup s.Rst below
		// makes to decide whether to notify misses it.
		existing.reset()
		s.removeStream(existing.id)
		s.notifyStreamClosed(existing, frame.StreamStatusProtocolError)
		s.Rst(syn.Version, RstInfo{StreamId: existing.id, StatusCode: frame.StreamStatusProtocolError})
		return
	}

	if syn.Fin() {
		str.remoteFin()
	}

	s.casMaxLastStreamId(syn.StreamId)

	var listener StreamListener
	s.forEachListener(func(l FrameListener) {
		if sl := l.OnSyn(str, syn); sl != nil {
			listener = sl
		}
	})
	str.listener = listener

	if str.State() == StreamClosed {
		s.removeStream(str.id)
	}
}

func (s *Session) onReply(reply *frame.SynReplyFrame) {
	str, ok := s.getStream(reply.StreamId)
	if !ok {
		return
	}
	if state := str.State(); state != StreamOpen && state != StreamHalfClosedRemote {
		// a reply is valid only once, in OPEN or HALF_CLOSED_REMOTE
		// (§4.3); anything else is a duplicate or out-of-order reply.
		s.Rst(str.version, RstInfo{StreamId: str.id, StatusCode: frame.StreamStatusProtocolError})
		return
	}
	closed := false
	if reply.Fin() {
		closed = str.remoteFin()
	}
	if str.listener != nil {
		s.safeCall(func() { str.listener.OnReply(str, reply) })
	}
	if closed {
		s.removeStream(str.id)
		s.notifyStreamClosed(str, 0)
	}
}

func (s *Session) onRst(rst *frame.RstStreamFrame) {
	str, ok := s.getStream(rst.StreamId)
	if !ok {
		return
	}
	str.reset()
	s.removeStream(rst.StreamId)
	status, _ := frame.StreamStatusFromCode(rst.Version, rst.StatusCode)
	s.notifyStreamClosed(str, status)
}

func (s *Session) onSettings(settings *frame.SettingsFrame) {
	s.forEachListener(func(l FrameListener) {
		l.OnSettings(settings.ClearPersisted, settings.Values)
	})
	for key, value := range settings.Values {
		switch key.ID {
		case frame.SettingsInitialWindowSize:
			s.initialWindow.Store(value)
		case frame.SettingsMaxConcurrentStreams:
			s.maxConcurrentStreams.Store(value)
		}
	}
}

func (s *Session) onPing(ping *frame.PingFrame) {
	s.mu.Lock()
	localParity := s.nextPingId % 2
	s.mu.Unlock()

	if ping.PingId%2 == localParity {
		// this is an echo of a ping we originated.
		s.forEachListener(func(l FrameListener) { l.OnPing(ping.PingId) })
		return
	}

	buf, err := s.buildControl(&frame.PingFrame{Version: ping.Version, PingId: ping.PingId})
	if err != nil {
		s.logger.Printf("spdy: building ping echo: %v", err)
		return
	}
	s.enqueue(&controlUnit{buf: buf})
}

func (s *Session) onGoAway(f *frame.GoAwayFrame) {
	s.rejected.Store(true)
	s.forEachListener(func(l FrameListener) { l.OnGoAway(f) })
}

func (s *Session) onHeaders(headers *frame.HeadersFrame) {
	str, ok := s.getStream(headers.StreamId)
	if !ok {
		return
	}
	closed := false
	if headers.Fin() {
		closed = str.remoteFin()
	}
	if str.listener != nil {
		s.safeCall(func() { str.listener.OnHeaders(str, headers) })
	}
	if closed {
		s.removeStream(str.id)
		s.notifyStreamClosed(str, 0)
	}
}

func (s *Session) onWindowUpdate(upd *frame.WindowUpdateFrame) {
	str, ok := s.getStream(upd.StreamId)
	if !ok {
		// window update for a stream that is gone; spec says do nothing.
		return
	}
	old := str.adjustWindow(int64(upd.DeltaWindowSize))
	if old <= 0 {
		s.flush()
	}
}

// rstUnknownStream resets an id the session has no record of, at the
// hardcoded version 2 noted in §4.4/§9: the real version is
// undiscoverable without a known stream.
func (s *Session) rstUnknownStream(id frame.StreamId) {
	s.Rst(frame.Version2, RstInfo{StreamId: id, StatusCode: frame.StreamStatusInvalidStream})
}
