// Copyright (c) 2013, Daniel Morsing
// For more information, see the LICENSE file

package spdy

import "github.com/morsing-labs/spdycore/frame"

// SynInfo describes an outbound stream creation request.
type SynInfo struct {
	Headers        frame.Headers
	Priority       uint8
	Fin            bool
	Unidirectional bool
}

// RstInfo describes an outbound stream reset.
type RstInfo struct {
	StreamId   frame.StreamId
	StatusCode frame.StreamStatus
}

// SettingsInfo describes an outbound SETTINGS frame.
type SettingsInfo struct {
	ClearPersisted bool
	Values         map[frame.SettingsKey]uint32
}

// PingInfo describes the outcome of a locally-initiated ping.
type PingInfo struct {
	Id uint32
}

// FrameListener receives session-scoped protocol events, mirroring the
// capability set described in §9: a session may register one without
// also implementing StreamListener, and vice versa, rather than forcing
// callers into a single fat interface.
type FrameListener interface {
	// OnSyn is invoked for an inbound SYN_STREAM once the Stream has
	// been registered. The returned StreamListener (possibly nil) is
	// installed on the stream for the remainder of its life.
	OnSyn(stream *Stream, syn *frame.SynStreamFrame) StreamListener
	OnRst(stream *Stream, rst *frame.RstStreamFrame)
	OnSettings(clearPersisted bool, values map[frame.SettingsKey]uint32)
	OnPing(pingId uint32)
	OnGoAway(f *frame.GoAwayFrame)
}

// StreamListener receives events scoped to one stream once it exists,
// either because the local endpoint called Syn or because FrameListener
// returned one from OnSyn.
type StreamListener interface {
	OnReply(stream *Stream, reply *frame.SynReplyFrame)
	OnHeaders(stream *Stream, headers *frame.HeadersFrame)
	OnData(stream *Stream, data []byte, fin bool)
	OnStreamClosed(stream *Stream, status frame.StreamStatus)
}

// FrameAdapter implements FrameListener with no-op methods, in the
// style of org.eclipse.jetty.spdy.api.Session.Listener.Adapter: embed
// it and override only the callbacks a listener cares about.
type FrameAdapter struct{}

func (FrameAdapter) OnSyn(stream *Stream, syn *frame.SynStreamFrame) StreamListener { return nil }
func (FrameAdapter) OnRst(stream *Stream, rst *frame.RstStreamFrame)                {}
func (FrameAdapter) OnSettings(clearPersisted bool, values map[frame.SettingsKey]uint32) {}
func (FrameAdapter) OnPing(pingId uint32)                 {}
func (FrameAdapter) OnGoAway(f *frame.GoAwayFrame)        {}

// StreamAdapter implements StreamListener with no-op methods.
type StreamAdapter struct{}

func (StreamAdapter) OnReply(stream *Stream, reply *frame.SynReplyFrame)     {}
func (StreamAdapter) OnHeaders(stream *Stream, headers *frame.HeadersFrame) {}
func (StreamAdapter) OnData(stream *Stream, data []byte, fin bool)          {}
func (StreamAdapter) OnStreamClosed(stream *Stream, status frame.StreamStatus) {}
