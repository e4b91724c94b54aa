// Package chatserver implements the connection handler (C5) and
// acceptor (C6): accepting connections on an already-bound listener,
// admitting clients, and running one receive loop per connection.
package chatserver

import (
	"fmt"
	"net"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"

	"github.com/kbaird/chatterm/internal/dispatch"
	"github.com/kbaird/chatterm/internal/registry"
	"github.com/kbaird/chatterm/internal/settings"
	"github.com/kbaird/chatterm/internal/wire"
)

// Config tunes a Server beyond the host/port it listens on.
type Config struct {
	// WriteDeadline bounds every write to a client socket.
	WriteDeadline time.Duration
	// ReadChunkBytes is the maximum size of a single read from a client
	// socket; see wire.ReadChunkBytes.
	ReadChunkBytes int
}

// FromSettings adapts a loaded settings.Settings into a Config. The
// no-settings-file case is already covered by settings.Defaults, which
// settings.Load("") returns unchanged.
func FromSettings(s settings.Settings) Config {
	return Config{
		WriteDeadline:  s.IdleWriteDeadline,
		ReadChunkBytes: s.ReadChunkBytes,
	}
}

// Server owns the registry and the accept loop.
type Server struct {
	Config   Config
	Registry *registry.Registry

	wg conc.WaitGroup
}

// New returns a Server with an empty registry (the default channel
// already present).
func New(cfg Config) *Server {
	return &Server{
		Config:   cfg,
		Registry: registry.New(),
	}
}

// Serve accepts connections on ln until Accept fails (for example
// because ln was closed). It never blocks on client I/O: each accepted
// connection is handed to its own goroutine. Once Accept fails, Serve
// waits for every handler goroutine it started to return and then
// returns the wrapped Accept error; it does not close the client
// connections that are still open.
func (s *Server) Serve(ln net.Listener) error {
	logrus.WithField("addr", ln.Addr()).Info("listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.wg.Wait()
			return errors.Wrap(err, "accept failed")
		}

		s.wg.Go(func() {
			s.handleConnection(conn)
		})
	}
}

// handleConnection runs one client's connection from ADMITTED through
// REMOVED. A panic in this goroutine is recovered here so a single
// misbehaving handler logs and drops its connection instead of taking
// the whole process down.
func (s *Server) handleConnection(conn net.Conn) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("remote_addr", conn.RemoteAddr()).
				Errorf("connection handler panicked: %v", r)
			_ = conn.Close()
		}
	}()

	framer := wire.New(conn, s.Config.WriteDeadline, s.Config.ReadChunkBytes)
	client := s.Registry.Admit(framer)

	// ADMITTED: establish the nick-to-handle binding. This is a no-op by
	// construction (Admit already set Nick to str(Handle)) but it
	// exercises the same Rename path every later nick change does.
	s.Registry.Rename(client.Handle, client.Nick)

	log := logrus.WithFields(logrus.Fields{
		"handle":      client.Handle,
		"remote_addr": conn.RemoteAddr(),
	})
	log.Info("client admitted")

	s.Registry.TellAll(fmt.Sprintf("%s joined chat", client.Nick))

	s.runActive(client, log)

	s.drain(client, log)
}

// runActive is the ACTIVE state: read a frame, dispatch it, repeat,
// until a transport error or an externally-set INACTIVE status (a
// kick, or a fan-out write failure elsewhere) ends the loop.
func (s *Server) runActive(client *registry.Client, log *logrus.Entry) {
	for {
		if client.Status() != registry.StatusActive {
			return
		}

		line, err := client.Socket.ReadLine()
		if err != nil {
			log.WithError(err).Debug("read failed, draining")
			return
		}

		if client.Status() != registry.StatusActive {
			return
		}

		dispatch.Dispatch(s.Registry, client, line)
	}
}

// drain is the DRAINING state: ensure the client is removed, then
// announce its departure to whoever remains. Remove is idempotent, so
// this is safe whether the client already went through Kick or not.
func (s *Server) drain(client *registry.Client, log *logrus.Entry) {
	s.Registry.Remove(client.Handle)
	log.Info("client removed")
	s.Registry.TellAll(fmt.Sprintf("%s left chat", client.Nick))
}
