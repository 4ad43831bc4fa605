// Copyright (c) 2013, Daniel Morsing
// For more information, see the LICENSE file

package spdy

import (
	"errors"
	"fmt"

	"github.com/morsing-labs/spdycore/frame"
)

// ErrSessionClosed is returned by operations attempted after the
// session has closed.
var ErrSessionClosed = errors.New("spdy: session closed")

// buildControl serialises f under the session mutex, the single
// critical section that also guards stream-id allocation (§4.4): header
// compression is one continuous deflate stream per session and must
// never interleave with itself.
func (s *Session) buildControl(f frame.Frame) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen.Control(f)
}

// Syn opens a new locally-initiated stream and enqueues its SYN_STREAM.
// Allocation, compression and registration happen atomically so that
// the id allocated here is the one actually written to the wire in
// that order relative to any concurrent Syn call (§4.4).
func (s *Session) Syn(version frame.Version, info SynInfo, listener StreamListener) (*Stream, error) {
	if s.closed.Load() {
		return nil, ErrSessionClosed
	}

	var flags frame.ControlFlags
	if info.Fin {
		flags |= frame.ControlFlagFin
	}
	if info.Unidirectional {
		flags |= frame.ControlFlagUnidirectional
	}

	s.mu.Lock()
	id := s.nextStreamId
	f := &frame.SynStreamFrame{
		Version:  version,
		Flags:    flags,
		StreamId: id,
		Priority: info.Priority,
		Headers:  info.Headers,
	}
	buf, err := s.gen.Control(f)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.nextStreamId += 2

	str := newStream(s, id, version, info.Priority, listener)
	if _, inserted := s.putIfAbsent(str); !inserted {
		// Cannot happen for a locally-allocated id; defensive only.
		s.mu.Unlock()
		return nil, fmt.Errorf("spdy: stream id %d already registered", id)
	}

	unit := &controlUnit{buf: buf}
	if info.Fin {
		unit.complete = func(error) {
			if str.localFin() {
				s.removeStream(id)
			}
		}
	}
	// Queue the frame before releasing mu so SYN_STREAM frames enter the
	// queue in the order their ids were allocated and their header blocks
	// compressed; the flush itself runs after the lock is released.
	s.qmu.Lock()
	s.queue = append(s.queue, unit)
	s.qmu.Unlock()
	s.mu.Unlock()
	s.flush()
	return str, nil
}

// Rst resets a stream, local or remote, with the given status.
func (s *Session) Rst(version frame.Version, info RstInfo) error {
	code, ok := info.StatusCode.Code(version)
	if !ok {
		return fmt.Errorf("spdy: status %v has no wire code at version %d", info.StatusCode, version)
	}

	buf, err := s.buildControl(&frame.RstStreamFrame{
		Version:    version,
		StreamId:   info.StreamId,
		StatusCode: code,
	})
	if err != nil {
		return err
	}

	if str, ok := s.getStream(info.StreamId); ok {
		str.reset()
		s.removeStream(info.StreamId)
		s.notifyStreamClosed(str, info.StatusCode)
	}

	s.enqueue(&controlUnit{buf: buf})
	return nil
}

// Settings sends a SETTINGS frame to the peer.
func (s *Session) Settings(version frame.Version, info SettingsInfo) error {
	buf, err := s.buildControl(&frame.SettingsFrame{
		Version:        version,
		ClearPersisted: info.ClearPersisted,
		Values:         info.Values,
	})
	if err != nil {
		return err
	}
	s.enqueue(&controlUnit{buf: buf})
	return nil
}

// Ping sends a PING frame and returns the ping id allocated for it,
// which the caller correlates against a later FrameListener.OnPing.
func (s *Session) Ping(version frame.Version) (PingInfo, error) {
	s.mu.Lock()
	id := s.nextPingId
	s.nextPingId += 2
	buf, err := s.gen.Control(&frame.PingFrame{Version: version, PingId: id})
	s.mu.Unlock()
	if err != nil {
		return PingInfo{}, err
	}
	s.enqueue(&controlUnit{buf: buf})
	return PingInfo{Id: id}, nil
}

// Headers sends additional headers on an already-open stream.
func (s *Session) Headers(version frame.Version, streamId frame.StreamId, headers frame.Headers, fin bool) error {
	var flags frame.ControlFlags
	if fin {
		flags |= frame.ControlFlagFin
	}
	buf, err := s.buildControl(&frame.HeadersFrame{
		Version:  version,
		Flags:    flags,
		StreamId: streamId,
		Headers:  headers,
	})
	if err != nil {
		return err
	}

	var complete func(error)
	if fin {
		if str, ok := s.getStream(streamId); ok {
			complete = func(error) {
				if str.localFin() {
					s.removeStream(streamId)
				}
			}
		}
	}
	s.enqueue(&controlUnit{buf: buf, complete: complete})
	return nil
}

// Data enqueues payload for streamId, to be drained across as many
// flow-controlled chunks as the stream's send window requires (§4.3).
// fin marks payload as the last data the local endpoint will send.
func (s *Session) Data(streamId frame.StreamId, payload []byte, fin bool) error {
	str, ok := s.getStream(streamId)
	if !ok {
		return fmt.Errorf("spdy: unknown stream %d", streamId)
	}
	s.enqueue(&dataUnit{stream: str, payload: payload, fin: fin})
	return nil
}

// WindowUpdate grants delta additional bytes of send window on
// streamId to the peer.
func (s *Session) WindowUpdate(version frame.Version, streamId frame.StreamId, delta int32) error {
	buf, err := s.buildControl(&frame.WindowUpdateFrame{
		Version:         version,
		StreamId:        streamId,
		DeltaWindowSize: delta,
	})
	if err != nil {
		return err
	}
	s.enqueue(&controlUnit{buf: buf})
	return nil
}

// GoAway announces that this endpoint will not process any further
// streams past the highest one it has already accepted, then closes the
// transport once the frame is written. If the peer has already sent its
// own GO_AWAY, emission is suppressed and the transport is closed
// directly (§4.4).
func (s *Session) GoAway(version frame.Version) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.rejected.Load() {
		s.doClose(noGoAway)
		return nil
	}

	buf, err := s.buildControl(&frame.GoAwayFrame{
		Version:      version,
		LastStreamId: frame.StreamId(s.lastStreamId.Load()),
		StatusCode:   frame.SessionStatusOK,
	})
	if err != nil {
		s.doClose(frame.SessionStatusInternalError)
		return err
	}
	s.enqueue(&controlUnit{buf: buf, isGoAway: true, complete: func(error) { s.doClose(frame.SessionStatusOK) }})
	return nil
}

// abort is the fatal half of §7's error policy: emit GO_AWAY carrying
// status (unless the peer already said goodbye) and close the
// transport ungracefully once the frame has been handed to the
// transport, without waiting on a normal application-driven GoAway.
func (s *Session) abort(version frame.Version, status frame.SessionStatus) {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	if !s.rejected.Load() {
		if buf, err := s.buildControl(&frame.GoAwayFrame{
			Version:      version,
			LastStreamId: frame.StreamId(s.lastStreamId.Load()),
			StatusCode:   status,
		}); err == nil {
			s.enqueue(&controlUnit{buf: buf, isGoAway: true, complete: func(error) { s.doClose(status) }})
			return
		}
	}
	s.doClose(status)
}

// doClose releases every stream and tears down the transport. graceful
// mirrors whether status represents a normal shutdown.
func (s *Session) doClose(status frame.SessionStatus) {
	s.streamsMu.Lock()
	streams := s.streams
	s.streams = make(map[frame.StreamId]*Stream)
	s.streamsMu.Unlock()

	for _, str := range streams {
		str.reset()
		s.notifyStreamClosed(str, frame.StreamStatusCancelStream)
	}

	graceful := status == frame.SessionStatusOK || status == noGoAway
	if err := s.controller.Close(graceful); err != nil {
		s.logger.Printf("spdy: error closing transport: %v", err)
	}
}

func (s *Session) notifyStreamClosed(str *Stream, status frame.StreamStatus) {
	if str.listener == nil {
		return
	}
	s.safeCall(func() { str.listener.OnStreamClosed(str, status) })
}
