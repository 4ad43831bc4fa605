// Copyright (c) 2013, Daniel Morsing
// For more information, see the LICENSE file

package spdy

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/morsing-labs/spdycore/frame"
	"github.com/morsing-labs/spdycore/generator"
	"github.com/morsing-labs/spdycore/headerblock"
	"github.com/morsing-labs/spdycore/parser"
)

// noGoAway marks a close that should not emit GO_AWAY, mirroring the
// teacher's noGoAway sentinel in session.go.
const noGoAway frame.SessionStatus = -1

// Session owns one transport connection and multiplexes many Streams
// over it, per §3/§4.4.
type Session struct {
	config     Config
	controller Controller
	listener   FrameListener

	// mu guards stream-id allocation, the outbound header-compression
	// context, and stream registration for Syn -- the single critical
	// section described in §4.4.
	mu           sync.Mutex
	nextStreamId frame.StreamId
	nextPingId   uint32
	gen          *generator.Generator

	streamsMu sync.Mutex
	streams   map[frame.StreamId]*Stream

	qmu      sync.Mutex
	queue    []writeUnit
	flushing bool

	lastStreamId         atomic.Uint32
	closed               atomic.Bool
	rejected             atomic.Bool
	initialWindow        atomic.Uint32
	maxConcurrentStreams atomic.Uint32

	parser *parser.Parser
	logger *log.Logger

	listenersMu sync.Mutex
	listeners   []FrameListener
}

// NewSession creates a Session that allocates locally-initiated stream
// and ping ids starting at initialStreamId, which also fixes this
// endpoint's parity (odd for a client, even for a server). frameListener
// may be nil; more can be attached later with AddListener.
func NewSession(controller Controller, initialStreamId frame.StreamId, frameListener FrameListener, opts ...Option) (*Session, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	gen, err := generator.New(headerblock.Dictionary)
	if err != nil {
		return nil, err
	}

	s := &Session{
		config:       cfg,
		controller:   controller,
		listener:     frameListener,
		nextStreamId: initialStreamId,
		nextPingId:   uint32(initialStreamId),
		gen:          gen,
		streams:      make(map[frame.StreamId]*Stream),
		logger:       cfg.Logger,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	s.initialWindow.Store(cfg.InitialWindow)
	s.maxConcurrentStreams.Store(cfg.MaxConcurrentStreams)
	s.parser = parser.New(s, headerblock.Dictionary)
	return s, nil
}

// Feed delivers transport bytes to the session's parser. It must be
// called only from the single goroutine that owns the transport's read
// side (§5: parser state is single-threaded).
func (s *Session) Feed(b []byte) {
	for len(b) > 0 {
		n := s.parser.Feed(b)
		if n == 0 {
			return
		}
		b = b[n:]
	}
}

// AddListener registers an additional session-scoped listener.
func (s *Session) AddListener(l FrameListener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, l)
}

// RemoveListener unregisters a listener previously passed to
// AddListener. It is a no-op if l was never registered.
func (s *Session) RemoveListener(l FrameListener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	for i, cur := range s.listeners {
		if cur == l {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

// GetStreams returns a snapshot of the currently registered streams.
func (s *Session) GetStreams() []*Stream {
	s.streamsMu.Lock()
	defer s.streamsMu.Unlock()
	out := make([]*Stream, 0, len(s.streams))
	for _, str := range s.streams {
		out = append(out, str)
	}
	return out
}

func (s *Session) getStream(id frame.StreamId) (*Stream, bool) {
	s.streamsMu.Lock()
	defer s.streamsMu.Unlock()
	str, ok := s.streams[id]
	return str, ok
}

func (s *Session) putIfAbsent(str *Stream) (existing *Stream, inserted bool) {
	s.streamsMu.Lock()
	defer s.streamsMu.Unlock()
	if cur, ok := s.streams[str.id]; ok {
		return cur, false
	}
	s.streams[str.id] = str
	return nil, true
}

func (s *Session) removeStream(id frame.StreamId) {
	s.streamsMu.Lock()
	defer s.streamsMu.Unlock()
	delete(s.streams, id)
}

func (s *Session) streamCount() int {
	s.streamsMu.Lock()
	defer s.streamsMu.Unlock()
	return len(s.streams)
}

// casMaxLastStreamId raises lastStreamId to id if id is larger, using a
// CAS loop to avoid the lost-update race the teacher's plain assignment
// is prone to (see §9's "lastStreamId update is best-effort" note).
func (s *Session) casMaxLastStreamId(id frame.StreamId) {
	for {
		cur := s.lastStreamId.Load()
		if uint32(id) <= cur {
			return
		}
		if s.lastStreamId.CompareAndSwap(cur, uint32(id)) {
			return
		}
	}
}

// forEachListener invokes fn for the session's primary listener (if
// any) and every listener added via AddListener, recovering and logging
// any panic so a misbehaving listener never destabilizes the session
// (§7: "Listener callbacks are defensive").
func (s *Session) forEachListener(fn func(FrameListener)) {
	s.safeCall(func() {
		if s.listener != nil {
			fn(s.listener)
		}
	})
	s.listenersMu.Lock()
	listeners := append([]FrameListener(nil), s.listeners...)
	s.listenersMu.Unlock()
	for _, l := range listeners {
		l := l
		s.safeCall(func() { fn(l) })
	}
}

func (s *Session) safeCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("spdy: listener panic: %v", r)
		}
	}()
	fn()
}
