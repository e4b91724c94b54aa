// Package registry holds the server's shared in-memory state: clients,
// the nickname bijection, and the channel table, plus the fan-out
// primitives that deliver lines to them. A single mutex guards all
// three structures, since the invariants span them jointly (see
// Registry's doc comment).
package registry

import (
	"net"
	"strconv"
	"sync"
	"sync/atomic"
)

// Status is a client's lifecycle state.
type Status int32

const (
	// StatusActive is the normal state of a connected client.
	StatusActive Status = iota
	// StatusInactive is set by an administrative kick, transiently,
	// before the client is removed, and by a failed fan-out write, which
	// leaves removal to the client's own connection handler.
	StatusInactive
	// StatusRemoved is terminal: the record has been extracted from the
	// registry and its socket closed.
	StatusRemoved
)

// Socket is the transport a Client needs: enough to frame lines in and
// out and to close the connection. *wire.Framer satisfies this. The
// registry and fan-out code only ever call WriteLine/Close/RemoteAddr;
// ReadLine exists here so the connection handler can read from the same
// value it gets back from Admit, without a second lookup table.
type Socket interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	Close() error
	RemoteAddr() net.Addr
}

// Client is one connection's record. Handle and Socket never change
// after admission. Nick, Channel and Status are mutated only through
// Registry methods, which hold the registry's lock while doing so.
type Client struct {
	Handle  uint64
	Socket  Socket
	Nick    string
	Channel string
	status  atomic.Int32
}

// Status reads the client's current lifecycle state. It is safe to call
// from any goroutine without holding the registry lock: the handler's
// receive loop needs to poll this on every iteration to notice a kick,
// and routing it through the coarse lock would serialize every handler
// behind every other handler's idle polling.
func (c *Client) Status() Status {
	return Status(c.status.Load())
}

func (c *Client) setStatus(s Status) {
	c.status.Store(int32(s))
}

// DefaultChannel is the channel every client is admitted into and that
// exists for the server's entire lifetime.
const DefaultChannel = "default"

func defaultNick(handle uint64) string {
	return strconv.FormatUint(handle, 10)
}

// Registry is the server's shared state: the client table, the
// nickname bijection (stored as two explicit maps, nick-to-handle and
// handle-to-nick), and the channel table. A single sync.Mutex protects
// all three because
// every non-trivial operation (rename, move, admit, remove) touches
// more than one of them and must be observed atomically by other
// goroutines.
type Registry struct {
	mu sync.Mutex

	nextHandle atomic.Uint64

	clients map[uint64]*Client
	nickToHandle map[string]uint64
	handleToNick map[uint64]string
	channels map[string]map[uint64]struct{}
}

// New returns a Registry with the default channel already present.
func New() *Registry {
	r := &Registry{
		clients:      make(map[uint64]*Client),
		nickToHandle: make(map[string]uint64),
		handleToNick: make(map[uint64]string),
		channels:     make(map[string]map[uint64]struct{}),
	}
	r.channels[DefaultChannel] = make(map[uint64]struct{})
	return r
}
