// Copyright (c) 2013, Daniel Morsing
// For more information, see the LICENSE file

package frame

// SynStreamFrame opens a new stream, optionally as a child of an
// existing one (associatedStreamId, unused by the core — see DESIGN.md).
type SynStreamFrame struct {
	Version            Version
	Flags              ControlFlags
	StreamId           StreamId
	AssociatedStreamId StreamId
	Priority           uint8
	Headers            Headers
}

func (f *SynStreamFrame) FrameVersion() Version { return f.Version }

// Fin reports whether the peer will send no further data on this stream.
func (f *SynStreamFrame) Fin() bool {
	return f.Flags&ControlFlagFin != 0
}

// Unidirectional reports whether this stream is server-push only. The
// core does not implement unidirectional streams (see spec §9); callers
// that see this set should reject the frame.
func (f *SynStreamFrame) Unidirectional() bool {
	return f.Flags&ControlFlagUnidirectional != 0
}

// SynReplyFrame answers a SynStreamFrame.
type SynReplyFrame struct {
	Version  Version
	Flags    ControlFlags
	StreamId StreamId
	Headers  Headers
}

func (f *SynReplyFrame) FrameVersion() Version { return f.Version }

func (f *SynReplyFrame) Fin() bool { return f.Flags&ControlFlagFin != 0 }

// RstStreamFrame aborts a stream.
type RstStreamFrame struct {
	Version    Version
	StreamId   StreamId
	StatusCode int32
}

func (f *RstStreamFrame) FrameVersion() Version { return f.Version }

// SettingsFrame configures session-wide tunables.
type SettingsFrame struct {
	Version        Version
	ClearPersisted bool
	Values         map[SettingsKey]uint32
}

func (f *SettingsFrame) FrameVersion() Version { return f.Version }

// NoopFrame is a deprecated no-op control frame, ignored on receipt.
type NoopFrame struct {
	Version Version
}

func (f *NoopFrame) FrameVersion() Version { return f.Version }

// PingFrame carries a round-trip probe id.
type PingFrame struct {
	Version Version
	PingId  uint32
}

func (f *PingFrame) FrameVersion() Version { return f.Version }

// GoAwayFrame announces that the sender will not initiate or accept any
// further streams past LastStreamId.
type GoAwayFrame struct {
	Version      Version
	LastStreamId StreamId
	StatusCode   SessionStatus // only meaningful at Version3; zero at Version2
}

func (f *GoAwayFrame) FrameVersion() Version { return f.Version }

// HeadersFrame carries additional headers for an already-open stream.
type HeadersFrame struct {
	Version  Version
	Flags    ControlFlags
	StreamId StreamId
	Headers  Headers
}

func (f *HeadersFrame) FrameVersion() Version { return f.Version }

func (f *HeadersFrame) Fin() bool { return f.Flags&ControlFlagFin != 0 }

// WindowUpdateFrame grants additional flow-control window on a stream.
type WindowUpdateFrame struct {
	Version         Version
	StreamId        StreamId
	DeltaWindowSize int32
}

func (f *WindowUpdateFrame) FrameVersion() Version { return f.Version }
