// Copyright (c) 2013, Daniel Morsing
// For more information, see the LICENSE file

package frame

// DataFrame carries a chunk of a stream's body. Unlike control frames,
// data frames have no SPDY version of their own: they are addressed
// purely by StreamId, and the version is implied by the stream they
// belong to.
type DataFrame struct {
	StreamId StreamId
	Flags    DataFlags
	Data     []byte
}

// Fin reports whether this is the last data frame the sender will emit
// on the stream.
func (f *DataFrame) Fin() bool { return f.Flags&DataFlagFin != 0 }
