// Copyright (c) 2013, Daniel Morsing
// For more information, see the LICENSE file

package transport

import (
	"crypto/tls"
	"log"
	"net"
)

// Negotiated identifies which protocol a NPN/ALPN handshake selected.
type Negotiated int

const (
	NegotiatedSpdy3 Negotiated = iota
	NegotiatedSpdy2
	NegotiatedFallback
	NegotiatedUnknown
)

// NegotiatedConn pairs an accepted, already-handshaken connection with
// the protocol the peer agreed to speak.
type NegotiatedConn struct {
	net.Conn
	Protocol Negotiated
}

// Listener wraps a TLS listener and performs the handshake eagerly in
// Accept so callers receive a NegotiatedConn instead of having to
// inspect tls.ConnectionState themselves. It is the spec §4.6 analogue
// of the teacher's negotiateListen in server.go; unlike the teacher it
// does not also own HTTP fallback forwarding -- callers that need a
// plain net.Listener for non-SPDY connections get handed the raw
// NegotiatedConn and route it themselves.
type Listener struct {
	net.Listener
	logger *log.Logger
}

// NewListener wraps l, which must already be configured to offer
// "spdy/3" and "spdy/2" among its TLS NextProtos (or ALPN equivalent).
func NewListener(l net.Listener, logger *log.Logger) *Listener {
	if logger == nil {
		logger = log.Default()
	}
	return &Listener{Listener: l, logger: logger}
}

// Accept blocks until a connection completes its TLS handshake and
// returns a NegotiatedConn describing the protocol it chose.
func (nl *Listener) Accept() (net.Conn, error) {
	for {
		c, err := nl.Listener.Accept()
		if err != nil {
			return nil, err
		}
		tc, ok := c.(*tls.Conn)
		if !ok {
			return &NegotiatedConn{Conn: c, Protocol: NegotiatedUnknown}, nil
		}
		if err := tc.Handshake(); err != nil {
			nl.logger.Printf("transport: handshake: %v", err)
			tc.Close()
			continue
		}
		return &NegotiatedConn{Conn: tc, Protocol: classify(tc.ConnectionState().NegotiatedProtocol)}, nil
	}
}

func classify(proto string) Negotiated {
	switch proto {
	case "spdy/3":
		return NegotiatedSpdy3
	case "spdy/2":
		return NegotiatedSpdy2
	case "http/1.1", "":
		return NegotiatedFallback
	default:
		return NegotiatedUnknown
	}
}

// DefaultNextProtos returns the NPN/ALPN protocol list a listener
// should advertise to offer both SPDY versions with an HTTP fallback,
// mirroring the teacher's validateNPN default of {"spdy/3", "http/1.1"}.
func DefaultNextProtos() []string {
	return []string{"spdy/3", "spdy/2", "http/1.1"}
}
