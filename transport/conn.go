// Copyright (c) 2013, Daniel Morsing
// For more information, see the LICENSE file

// Package transport adapts a net.Conn to the spdy.Controller contract
// a Session writes frames through, and negotiates SPDY over TLS's NPN
// (or ALPN on newer runtimes) the way the teacher's negotiateListen did
// for plain net/http.
package transport

import (
	"bufio"
	"net"
	"time"
)

// Conn wraps a net.Conn and implements spdy.Controller. Writes are
// buffered and flushed per call, mirroring the teacher's
// outFramer.writeFrame (bufio.Writer + explicit Flush on every frame).
type Conn struct {
	conn         net.Conn
	bw           *bufio.Writer
	br           *bufio.Reader
	writeTimeout time.Duration
}

// NewConn wraps conn, applying writeTimeout (if non-zero) as a
// SetWriteDeadline before every write.
func NewConn(conn net.Conn, writeTimeout time.Duration) *Conn {
	return &Conn{
		conn:         conn,
		bw:           bufio.NewWriter(conn),
		br:           bufio.NewReader(conn),
		writeTimeout: writeTimeout,
	}
}

// Reader exposes the buffered connection for a caller's read loop; the
// transport itself does not own reading, matching spec §1's framing of
// the transport as "a byte-write callback and byte-feed entry point"
// rather than an owner of the read side.
func (c *Conn) Reader() *bufio.Reader {
	return c.br
}

// Write implements spdy.Controller. complete is invoked synchronously
// since *Conn performs a blocking write; a transport backed by
// asynchronous I/O could instead defer the call.
func (c *Conn) Write(buf []byte, complete func(error)) {
	if c.writeTimeout != 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.bw.Write(buf)
	if err == nil {
		err = c.bw.Flush()
	}
	complete(err)
}

// Close implements spdy.Controller. graceful is accepted for interface
// symmetry with §4.5's GO_AWAY-driven close; closing a net.Conn has no
// half-graceful mode to select between.
func (c *Conn) Close(graceful bool) error {
	return c.conn.Close()
}
