// Copyright (c) 2013, Daniel Morsing
// For more information, see the LICENSE file

// Package spdy implements the session multiplexer and stream state
// machine that sit on top of the frame codec: the set of live streams,
// the write queue, flow control, and session lifecycle.
package spdy

import (
	"log"
	"time"
)

// Config holds session-wide tunables. Use the With* options with
// NewSession rather than constructing a Config directly.
type Config struct {
	InitialWindow        uint32
	MaxConcurrentStreams uint32
	WriteTimeout         time.Duration
	PingTimeout          time.Duration
	Logger               *log.Logger
}

// Option configures a Session at construction time.
type Option func(*Config)

// WithInitialWindow sets the per-stream flow-control window new streams
// start with (v3 only; ignored by v2 streams). Default 65536.
func WithInitialWindow(n uint32) Option {
	return func(c *Config) { c.InitialWindow = n }
}

// WithMaxConcurrentStreams caps the number of simultaneously open
// streams the session will accept from its peer. Default 100.
func WithMaxConcurrentStreams(n uint32) Option {
	return func(c *Config) { c.MaxConcurrentStreams = n }
}

// WithWriteTimeout records a per-write timeout in Config.WriteTimeout.
// The session does not apply it itself; the write deadline is applied
// by transport.Conn, which receives its own timeout through
// transport.NewConn.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Config) { c.WriteTimeout = d }
}

// WithPingTimeout records how long a PING reply may take in
// Config.PingTimeout. The session does not enforce it: it never times
// out a ping or closes the connection on its own.
func WithPingTimeout(d time.Duration) Option {
	return func(c *Config) { c.PingTimeout = d }
}

// WithLogger overrides the *log.Logger the session reports errors and
// defensive listener-panic recoveries to. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

func defaultConfig() Config {
	return Config{
		InitialWindow:        64 << 10,
		MaxConcurrentStreams: 100,
		Logger:               log.Default(),
	}
}
