package server

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	http3 "github.com/quic-go/quic-go/http3"
)

// HTTP3Server wraps http3.Server lifecycle.
type HTTP3Server struct {
	srv  *http3.Server
	addr string

	mu   sync.Mutex
	pc   net.PacketConn
	done chan struct{}
}

// NewHTTP3Server creates a server bound to addr with given TLS config and handler.
func NewHTTP3Server(addr string, tlsCfg *tls.Config, h http.Handler) *HTTP3Server {
	s := &http3.Server{Addr: addr, TLSConfig: tlsCfg, Handler: h}
	return &HTTP3Server{srv: s, addr: addr}
}

// Start begins serving HTTP/3 in the background. An addr ending in ":0"
// picks an ephemeral UDP port; the bound address is returned.
func (s *HTTP3Server) Start() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pc != nil {
		return "", errors.New("server: already started")
	}

	pc, err := net.ListenPacket("udp", s.addr)
	if err != nil {
		return "", err
	}
	s.pc = pc
	s.done = make(chan struct{})
	go func(done chan struct{}) {
		_ = s.srv.Serve(pc)
		close(done)
	}(s.done)
	return pc.LocalAddr().String(), nil
}

// Stop closes the listener and waits briefly for Serve to return.
func (s *HTTP3Server) Stop() error {
	s.mu.Lock()
	pc, done := s.pc, s.done
	s.mu.Unlock()
	if pc == nil {
		return nil
	}

	err := s.srv.Close()
	_ = pc.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
	}
	return err
}

// Run serves until ctx is done. ready, if not nil, receives the bound
// address once the listener is up.
func (s *HTTP3Server) Run(ctx context.Context, ready func(addr string)) error {
	addr, err := s.Start()
	if err != nil {
		return err
	}
	if ready != nil {
		ready(addr)
	}
	<-ctx.Done()
	return s.Stop()
}

// HTTP3Client returns an http.Client using HTTP/3 round tripper with given TLS config.
func HTTP3Client(tlsCfg *tls.Config, timeout time.Duration) *http.Client {
	tr := &http3.Transport{TLSClientConfig: tlsCfg}
	return &http.Client{Transport: tr, Timeout: timeout}
}

// ShutdownHTTP3 gracefully closes the RoundTripper if applicable.
func ShutdownHTTP3(c *http.Client) {
	if tr, ok := c.Transport.(*http3.Transport); ok {
		_ = tr.Close()
	}
}
