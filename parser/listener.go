// Copyright (c) 2013, Daniel Morsing
// For more information, see the LICENSE file

package parser

import "github.com/morsing-labs/spdycore/frame"

// Listener receives the events produced by a Parser. It is the
// resumable-codec half of the contract described in spec §6; the
// session implements it to dispatch frames to streams.
type Listener interface {
	OnControlFrame(f frame.Frame)
	OnDataFrame(f *frame.DataFrame, payload []byte)
	OnStreamException(e *StreamException)
	OnSessionException(e *SessionException)
}
