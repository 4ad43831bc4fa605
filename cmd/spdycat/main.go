// Command spdycat dials a SPDY endpoint, issues a single SYN_STREAM
// with the headers given on the command line, and prints whatever
// reply and data frames come back. It exists to exercise spdy.Session
// end to end; it is not part of the core's tested contract.
package main

import (
	"crypto/tls"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/morsing-labs/spdycore/frame"
	"github.com/morsing-labs/spdycore/spdy"
	"github.com/morsing-labs/spdycore/transport"
)

var (
	addr      = flag.String("addr", "localhost:443", "host:port to dial")
	path      = flag.String("path", "/", "request path")
	method    = flag.String("method", "GET", "request method")
	insecure  = flag.Bool("insecure", false, "skip TLS certificate verification")
	plaintext = flag.Bool("plaintext", false, "dial a plain TCP connection instead of TLS (for local testing)")
)

func main() {
	flag.Parse()

	conn, version, err := dial(*addr)
	if err != nil {
		log.Fatalf("spdycat: dial: %v", err)
	}
	defer conn.Close()

	ctl := transport.NewConn(conn, 10*time.Second)
	listener := &replyPrinter{done: make(chan struct{})}
	session, err := spdy.NewSession(ctl, 1, nil)
	if err != nil {
		log.Fatalf("spdycat: %v", err)
	}

	go func() {
		buf := make([]byte, 4096)
		r := ctl.Reader()
		for {
			n, err := r.Read(buf)
			if n > 0 {
				session.Feed(buf[:n])
			}
			if err != nil {
				if err != io.EOF {
					log.Println("spdycat: read:", err)
				}
				listener.closeDone()
				return
			}
		}
	}()

	headers := frame.NewHeaders()
	headers.Set(":method", *method)
	headers.Set(":path", *path)
	headers.Set(":version", "HTTP/1.1")
	headers.Set(":host", strings.SplitN(*addr, ":", 2)[0])

	if _, err := session.Syn(version, spdy.SynInfo{Headers: headers, Fin: true}, listener); err != nil {
		log.Fatalf("spdycat: syn: %v", err)
	}

	<-listener.done
	session.GoAway(version)
}

func dial(addr string) (net.Conn, frame.Version, error) {
	if *plaintext {
		c, err := net.Dial("tcp", addr)
		return c, frame.Version3, err
	}

	cfg := &tls.Config{
		InsecureSkipVerify: *insecure,
		NextProtos:         transport.DefaultNextProtos(),
	}
	c, err := tls.Dial("tcp", addr, cfg)
	if err != nil {
		return nil, frame.Version3, err
	}
	switch c.ConnectionState().NegotiatedProtocol {
	case "spdy/2":
		return c, frame.Version2, nil
	default:
		return c, frame.Version3, nil
	}
}

// replyPrinter prints whatever the session delivers for the one stream
// this command opens.
type replyPrinter struct {
	spdy.StreamAdapter
	done chan struct{}
	once sync.Once
}

func (r *replyPrinter) OnReply(stream *spdy.Stream, reply *frame.SynReplyFrame) {
	fmt.Println(reply.Headers.Get(":status"))
	for name, values := range reply.Headers {
		for _, v := range values {
			fmt.Printf("%s: %s\n", name, v)
		}
	}
	fmt.Println()
}

func (r *replyPrinter) OnData(stream *spdy.Stream, data []byte, fin bool) {
	fmt.Print(string(data))
}

func (r *replyPrinter) OnStreamClosed(stream *spdy.Stream, status frame.StreamStatus) {
	r.closeDone()
}

func (r *replyPrinter) closeDone() {
	r.once.Do(func() { close(r.done) })
}
