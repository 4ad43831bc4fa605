package spdy

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morsing-labs/spdycore/frame"
	"github.com/morsing-labs/spdycore/generator"
	"github.com/morsing-labs/spdycore/headerblock"
	"github.com/morsing-labs/spdycore/parser"
)

// fakeController captures writes synchronously instead of touching a real
// transport, so tests can inspect exactly what a Session put on the wire.
type fakeController struct {
	mu       sync.Mutex
	writes   [][]byte
	closed   bool
	graceful bool
}

func (f *fakeController) Write(buf []byte, complete func(error)) {
	f.mu.Lock()
	f.writes = append(f.writes, append([]byte(nil), buf...))
	f.mu.Unlock()
	complete(nil)
}

func (f *fakeController) Close(graceful bool) error {
	f.mu.Lock()
	f.closed = true
	f.graceful = graceful
	f.mu.Unlock()
	return nil
}

func (f *fakeController) lastWrite() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.writes) == 0 {
		panic("fakeController: no writes recorded")
	}
	return f.writes[len(f.writes)-1]
}

func (f *fakeController) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

// decodeFrames parses every control/data frame out of wire, using a fresh
// parser with the same preset dictionary the session uses.
type decodeCapture struct {
	control []frame.Frame
	data    []*frame.DataFrame
}

func (c *decodeCapture) OnControlFrame(f frame.Frame)                   { c.control = append(c.control, f) }
func (c *decodeCapture) OnDataFrame(f *frame.DataFrame, payload []byte) { c.data = append(c.data, f) }
func (c *decodeCapture) OnStreamException(e *parser.StreamException)   {}
func (c *decodeCapture) OnSessionException(e *parser.SessionException) {}

func decode(t *testing.T, wire []byte) *decodeCapture {
	c := &decodeCapture{}
	p := parser.New(c, headerblock.Dictionary)
	for consumed := 0; consumed < len(wire); {
		n := p.Feed(wire[consumed:])
		require.NotZero(t, n, "parser made no progress")
		consumed += n
	}
	return c
}

// newPeerGen returns a fresh generator standing in for the peer's own
// direction of the session's header compression. Every header-bearing
// frame the peer sends across one test must flow through the same
// generator: header compression is one continuous deflate stream, and
// the session's Decompressor replays the concatenation of everything it
// has ever seen, so two independently primed generators' outputs cannot
// be concatenated and inflated as if they were one stream.
func newPeerGen(t *testing.T) *generator.Generator {
	gen, err := generator.New(headerblock.Dictionary)
	require.NoError(t, err)
	return gen
}

// peerFrame builds the wire bytes for a frame as if an independent peer
// had sent it. Use this only for a test that sends a single header-bearing
// frame (or none at all); for more than one, share a newPeerGen across
// the calls instead.
func peerFrame(t *testing.T, f frame.Frame) []byte {
	buf, err := newPeerGen(t).Control(f)
	require.NoError(t, err)
	return buf
}

type recordingFrameListener struct {
	FrameAdapter
	syns  []*frame.SynStreamFrame
	rsts  []*frame.RstStreamFrame
	pings []uint32
	goAways []*frame.GoAwayFrame
}

func (l *recordingFrameListener) OnSyn(stream *Stream, syn *frame.SynStreamFrame) StreamListener {
	l.syns = append(l.syns, syn)
	return nil
}
func (l *recordingFrameListener) OnRst(stream *Stream, rst *frame.RstStreamFrame) {
	l.rsts = append(l.rsts, rst)
}
func (l *recordingFrameListener) OnPing(pingId uint32)          { l.pings = append(l.pings, pingId) }
func (l *recordingFrameListener) OnGoAway(f *frame.GoAwayFrame) { l.goAways = append(l.goAways, f) }

// returningFrameListener installs the same StreamListener on every
// inbound stream it sees, so a test can observe that stream's own
// lifecycle callbacks rather than just the session-level ones.
type returningFrameListener struct {
	FrameAdapter
	listener StreamListener
}

func (l *returningFrameListener) OnSyn(stream *Stream, syn *frame.SynStreamFrame) StreamListener {
	return l.listener
}

// recordingStreamListener counts how many times OnStreamClosed fires and
// with what status, so a test can assert the exactly-once contract.
type recordingStreamListener struct {
	StreamAdapter
	closedStatuses []frame.StreamStatus
}

func (l *recordingStreamListener) OnStreamClosed(stream *Stream, status frame.StreamStatus) {
	l.closedStatuses = append(l.closedStatuses, status)
}

// Scenario 1: client opens one stream.
func TestSynEmitsSingleSynStream(t *testing.T) {
	ctl := &fakeController{}
	s, err := NewSession(ctl, 1, &recordingFrameListener{})
	require.NoError(t, err)

	headers := frame.NewHeaders()
	headers.Add(":method", "GET")

	str, err := s.Syn(frame.Version2, SynInfo{Headers: headers}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, ctl.count())
	got := decode(t, ctl.lastWrite())
	require.Len(t, got.control, 1)
	syn := got.control[0].(*frame.SynStreamFrame)
	assert.Equal(t, frame.Version2, syn.Version)
	assert.Equal(t, frame.StreamId(1), syn.StreamId)
	assert.True(t, syn.Headers.Equal(headers))
	assert.False(t, syn.Fin())

	streams := s.GetStreams()
	require.Len(t, streams, 1)
	assert.Equal(t, str.Id(), streams[0].Id())
	assert.Equal(t, StreamOpen, streams[0].State())
}

// Invariant: locally allocated ids keep the initiator's parity and strictly increase.
func TestSynAllocatesOddIncreasingIds(t *testing.T) {
	ctl := &fakeController{}
	s, err := NewSession(ctl, 1, nil)
	require.NoError(t, err)

	headers := frame.NewHeaders()
	var ids []frame.StreamId
	for i := 0; i < 4; i++ {
		str, err := s.Syn(frame.Version3, SynInfo{Headers: headers}, nil)
		require.NoError(t, err)
		ids = append(ids, str.Id())
	}
	for i, id := range ids {
		assert.Equal(t, frame.StreamId(1+2*i), id)
	}
}

// Scenario 3: duplicate inbound stream id.
func TestDuplicateInboundStreamIdIsReset(t *testing.T) {
	ctl := &fakeController{}
	listener := &recordingFrameListener{}
	s, err := NewSession(ctl, 2, listener)
	require.NoError(t, err)

	gen := newPeerGen(t)
	headers := frame.NewHeaders()
	headers.Add(":method", "GET")
	first := &frame.SynStreamFrame{Version: frame.Version2, StreamId: 2, Headers: headers}
	buf, err := gen.Control(first)
	require.NoError(t, err)
	s.Feed(buf)

	require.Len(t, listener.syns, 1)
	assert.Len(t, s.GetStreams(), 1)

	second := &frame.SynStreamFrame{Version: frame.Version2, StreamId: 2, Headers: headers}
	buf, err = gen.Control(second)
	require.NoError(t, err)
	s.Feed(buf)

	// No new onSyn for the illegitimate duplicate.
	assert.Len(t, listener.syns, 1)

	got := decode(t, ctl.lastWrite())
	require.Len(t, got.control, 1)
	rst := got.control[0].(*frame.RstStreamFrame)
	assert.Equal(t, frame.StreamId(2), rst.StreamId)
	code, ok := frame.StreamStatusProtocolError.Code(frame.Version2)
	require.True(t, ok)
	assert.Equal(t, code, rst.StatusCode)
}

// Scenario 4: data on unknown stream.
func TestDataOnUnknownStreamIsReset(t *testing.T) {
	ctl := &fakeController{}
	s, err := NewSession(ctl, 2, nil)
	require.NoError(t, err)

	wire := []byte{
		0x00, 0x00, 0x00, 99,
		0x00, 0x00, 0x00, 5,
		1, 2, 3, 4, 5,
	}
	s.Feed(wire)

	got := decode(t, ctl.lastWrite())
	require.Len(t, got.control, 1)
	rst := got.control[0].(*frame.RstStreamFrame)
	assert.Equal(t, frame.StreamId(99), rst.StreamId)
	assert.Equal(t, frame.Version2, rst.Version)
	code, ok := frame.StreamStatusInvalidStream.Code(frame.Version2)
	require.True(t, ok)
	assert.Equal(t, code, rst.StatusCode)
}

// Scenario 5: flow-control stall and resume.
func TestDataStallsOnWindowAndResumesOnWindowUpdate(t *testing.T) {
	ctl := &fakeController{}
	s, err := NewSession(ctl, 1, nil, WithInitialWindow(10))
	require.NoError(t, err)

	headers := frame.NewHeaders()
	str, err := s.Syn(frame.Version3, SynInfo{Headers: headers}, nil)
	require.NoError(t, err)

	before := ctl.count()
	require.NoError(t, s.Data(str.Id(), make([]byte, 30), true))

	// SYN_STREAM + one 10-byte DATA chunk, then stalled.
	assert.Equal(t, before+1, ctl.count())
	got := decode(t, ctl.lastWrite())
	require.Len(t, got.data, 1)
	assert.Equal(t, 10, len(got.data[0].Data))
	assert.False(t, got.data[0].Fin())

	// WindowUpdate grants window to the peer's receive side; what
	// unstalls our own stalled send is a WINDOW_UPDATE from the peer,
	// simulated here the same way an inbound frame would arrive.
	wu := peerFrame(t, &frame.WindowUpdateFrame{Version: frame.Version3, StreamId: str.Id(), DeltaWindowSize: 20})
	countBefore := ctl.count()
	s.Feed(wu)

	assert.Equal(t, countBefore+1, ctl.count())
	got2 := decode(t, ctl.lastWrite())
	require.Len(t, got2.data, 1)
	assert.Equal(t, 20, len(got2.data[0].Data))
	assert.True(t, got2.data[0].Fin())
}

// Scenario 6: PING echo vs reply.
func TestPingEchoVsReply(t *testing.T) {
	ctl := &fakeController{}
	listener := &recordingFrameListener{}
	s, err := NewSession(ctl, 1, listener)
	require.NoError(t, err)

	// Peer-originated ping (even id, since local parity is odd): echo back.
	s.Feed(peerFrame(t, &frame.PingFrame{Version: frame.Version3, PingId: 2}))
	got := decode(t, ctl.lastWrite())
	require.Len(t, got.control, 1)
	echoed := got.control[0].(*frame.PingFrame)
	assert.Equal(t, uint32(2), echoed.PingId)
	assert.Empty(t, listener.pings)

	// Locally-originated ping (odd id) echoed by the peer: deliver to listener.
	before := ctl.count()
	s.Feed(peerFrame(t, &frame.PingFrame{Version: frame.Version3, PingId: 3}))
	assert.Equal(t, before, ctl.count(), "no new write for a ping we originated")
	require.Len(t, listener.pings, 1)
	assert.Equal(t, uint32(3), listener.pings[0])
}

// Scenario 7: GO_AWAY suppression.
func TestGoAwaySuppressedAfterPeerGoAway(t *testing.T) {
	ctl := &fakeController{}
	s, err := NewSession(ctl, 1, &recordingFrameListener{})
	require.NoError(t, err)

	s.Feed(peerFrame(t, &frame.GoAwayFrame{Version: frame.Version3, LastStreamId: 0, StatusCode: frame.SessionStatusOK}))

	before := ctl.count()
	require.NoError(t, s.GoAway(frame.Version3))

	assert.Equal(t, before, ctl.count(), "GO_AWAY must be suppressed once peer already said goodbye")
	assert.True(t, ctl.closed)
	assert.True(t, ctl.graceful)
}

func TestGoAwayEmittedWhenNotRejected(t *testing.T) {
	ctl := &fakeController{}
	s, err := NewSession(ctl, 1, nil)
	require.NoError(t, err)

	require.NoError(t, s.GoAway(frame.Version3))

	got := decode(t, ctl.lastWrite())
	require.Len(t, got.control, 1)
	ga := got.control[0].(*frame.GoAwayFrame)
	assert.Equal(t, frame.SessionStatusOK, ga.StatusCode)
	assert.True(t, ctl.closed)
	assert.True(t, ctl.graceful)

	// A second call is a no-op: closed is already set.
	before := ctl.count()
	require.NoError(t, s.GoAway(frame.Version3))
	assert.Equal(t, before, ctl.count())
}

// 8.1 scenario 8: settings round trip affects new streams' initial window.
func TestSettingsUpdatesInitialWindowForNewStreams(t *testing.T) {
	ctl := &fakeController{}
	s, err := NewSession(ctl, 1, nil)
	require.NoError(t, err)

	s.Feed(peerFrame(t, &frame.SettingsFrame{
		Version: frame.Version3,
		Values: map[frame.SettingsKey]uint32{
			{ID: frame.SettingsInitialWindowSize}: 131072,
		},
	}))

	str, err := s.Syn(frame.Version3, SynInfo{Headers: frame.NewHeaders()}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(131072), str.window())
}

// 8.1 scenario 9: Config defaults.
func TestConfigDefaults(t *testing.T) {
	ctl := &fakeController{}
	s, err := NewSession(ctl, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(65536), s.initialWindow.Load())
	assert.Equal(t, uint32(100), s.maxConcurrentStreams.Load())
}

func TestMaxConcurrentStreamsRefusesOverflow(t *testing.T) {
	ctl := &fakeController{}
	listener := &recordingFrameListener{}
	s, err := NewSession(ctl, 2, listener, WithMaxConcurrentStreams(1))
	require.NoError(t, err)

	gen := newPeerGen(t)
	headers := frame.NewHeaders()
	buf, err := gen.Control(&frame.SynStreamFrame{Version: frame.Version3, StreamId: 2, Headers: headers})
	require.NoError(t, err)
	s.Feed(buf)
	require.Len(t, listener.syns, 1)
	assert.Len(t, s.GetStreams(), 1)

	buf, err = gen.Control(&frame.SynStreamFrame{Version: frame.Version3, StreamId: 4, Headers: headers})
	require.NoError(t, err)
	s.Feed(buf)
	assert.Len(t, listener.syns, 1, "second syn should have been refused, not delivered")
	assert.Len(t, s.GetStreams(), 1)

	got := decode(t, ctl.lastWrite())
	require.Len(t, got.control, 1)
	rst := got.control[0].(*frame.RstStreamFrame)
	assert.Equal(t, frame.StreamId(4), rst.StreamId)
}

func TestRstRemovesStreamAndNotifiesListener(t *testing.T) {
	ctl := &fakeController{}
	s, err := NewSession(ctl, 1, nil)
	require.NoError(t, err)

	listener := &recordingStreamListener{}
	str, err := s.Syn(frame.Version3, SynInfo{Headers: frame.NewHeaders()}, listener)
	require.NoError(t, err)

	require.NoError(t, s.Rst(frame.Version3, RstInfo{StreamId: str.Id(), StatusCode: frame.StreamStatusCancelStream}))
	assert.Empty(t, s.GetStreams())
	assert.Equal(t, StreamClosed, str.State())
	assert.Equal(t, []frame.StreamStatus{frame.StreamStatusCancelStream}, listener.closedStatuses)
}

// A session-wide teardown (GoAway completing) must still close out every
// stream still registered at that point exactly once, the same contract
// Rst and the remote-FIN paths in dispatch.go honour.
func TestGoAwayNotifiesRemainingStreamsClosed(t *testing.T) {
	ctl := &fakeController{}
	s, err := NewSession(ctl, 1, nil)
	require.NoError(t, err)

	listener := &recordingStreamListener{}
	str, err := s.Syn(frame.Version3, SynInfo{Headers: frame.NewHeaders()}, listener)
	require.NoError(t, err)

	require.NoError(t, s.GoAway(frame.Version3))
	assert.Empty(t, s.GetStreams())
	assert.Equal(t, StreamClosed, str.State())
	assert.Equal(t, []frame.StreamStatus{frame.StreamStatusCancelStream}, listener.closedStatuses)
	assert.True(t, ctl.closed)
}

// A DATA frame arriving after the peer already sent FIN on the same
// stream is a protocol violation, not a second delivery (§4.3/§7).
func TestDataAfterFinIsReset(t *testing.T) {
	ctl := &fakeController{}
	listener := &recordingFrameListener{}
	s, err := NewSession(ctl, 2, listener)
	require.NoError(t, err)

	gen := newPeerGen(t)
	headers := frame.NewHeaders()
	syn := &frame.SynStreamFrame{Version: frame.Version3, StreamId: 2, Flags: frame.ControlFlagFin, Headers: headers}
	buf, err := gen.Control(syn)
	require.NoError(t, err)
	s.Feed(buf)
	require.Len(t, listener.syns, 1)
	require.Len(t, s.GetStreams(), 1)

	before := ctl.count()
	s.Feed(gen.Data(2, false, []byte("late")))

	assert.Equal(t, before+1, ctl.count())
	got := decode(t, ctl.lastWrite())
	require.Len(t, got.control, 1)
	rst := got.control[0].(*frame.RstStreamFrame)
	assert.Equal(t, frame.StreamId(2), rst.StreamId)
	code, ok := frame.StreamStatusStreamAlreadyClosed.Code(frame.Version3)
	require.True(t, ok)
	assert.Equal(t, code, rst.StatusCode)
}

// A SYN_REPLY arriving while the stream is no longer OPEN or
// HALF_CLOSED_REMOTE -- here, after the local side has already sent its
// own FIN -- is rejected rather than delivered a second time (§4.3).
func TestReplyAfterLocalFinIsReset(t *testing.T) {
	ctl := &fakeController{}
	s, err := NewSession(ctl, 1, nil)
	require.NoError(t, err)

	listener := &recordingStreamListener{}
	str, err := s.Syn(frame.Version3, SynInfo{Headers: frame.NewHeaders()}, listener)
	require.NoError(t, err)

	gen := newPeerGen(t)
	replyHeaders := frame.NewHeaders()
	firstReply := &frame.SynReplyFrame{Version: frame.Version3, StreamId: str.Id(), Headers: replyHeaders}
	buf, err := gen.Control(firstReply)
	require.NoError(t, err)
	s.Feed(buf)
	assert.Equal(t, StreamOpen, str.State())

	require.NoError(t, s.Data(str.Id(), nil, true))
	assert.Equal(t, StreamHalfClosedLocal, str.State())

	before := ctl.count()
	secondReply := &frame.SynReplyFrame{Version: frame.Version3, StreamId: str.Id(), Headers: replyHeaders}
	buf, err = gen.Control(secondReply)
	require.NoError(t, err)
	s.Feed(buf)

	assert.Equal(t, before+1, ctl.count())
	got := decode(t, ctl.lastWrite())
	require.Len(t, got.control, 1)
	rst := got.control[0].(*frame.RstStreamFrame)
	assert.Equal(t, str.Id(), rst.StreamId)
	code, ok := frame.StreamStatusProtocolError.Code(frame.Version3)
	require.True(t, ok)
	assert.Equal(t, code, rst.StatusCode)
}

// A duplicate inbound SYN_STREAM must still notify the existing
// stream's own listener exactly once with OnStreamClosed (§8), even
// though the stream is removed from the registry before the path that
// emits the wire RST_STREAM would otherwise look it up again.
func TestDuplicateInboundStreamIdNotifiesStreamListener(t *testing.T) {
	ctl := &fakeController{}
	streamListener := &recordingStreamListener{}
	s, err := NewSession(ctl, 2, &returningFrameListener{listener: streamListener})
	require.NoError(t, err)

	gen := newPeerGen(t)
	headers := frame.NewHeaders()
	first := &frame.SynStreamFrame{Version: frame.Version2, StreamId: 2, Headers: headers}
	buf, err := gen.Control(first)
	require.NoError(t, err)
	s.Feed(buf)
	require.Len(t, s.GetStreams(), 1)

	second := &frame.SynStreamFrame{Version: frame.Version2, StreamId: 2, Headers: headers}
	buf, err = gen.Control(second)
	require.NoError(t, err)
	s.Feed(buf)

	assert.Empty(t, s.GetStreams())
	assert.Equal(t, []frame.StreamStatus{frame.StreamStatusProtocolError}, streamListener.closedStatuses)
}

// v2 streams have no per-stream flow control (§3/§4.3): a payload
// larger than the initial window must still be emitted whole instead of
// stalling on a WINDOW_UPDATE that a v2 peer will never send.
func TestV2DataIsNotFlowControlled(t *testing.T) {
	ctl := &fakeController{}
	s, err := NewSession(ctl, 1, nil, WithInitialWindow(10))
	require.NoError(t, err)

	str, err := s.Syn(frame.Version2, SynInfo{Headers: frame.NewHeaders()}, nil)
	require.NoError(t, err)

	before := ctl.count()
	require.NoError(t, s.Data(str.Id(), make([]byte, 30), true))

	assert.Equal(t, before+1, ctl.count())
	got := decode(t, ctl.lastWrite())
	require.Len(t, got.data, 1)
	assert.Equal(t, 30, len(got.data[0].Data))
	assert.True(t, got.data[0].Fin())
}
