package registry

import "github.com/sirupsen/logrus"

// Tell writes one framed line to a single client's socket. A write
// error is logged and the client is marked for removal; the write is
// not retried and the error is not returned, matching the fire-and-
// forget nature of every other fan-out primitive: the offending
// handler discovers the problem on its own next read.
//
// c may belong to a different goroutine than the caller (e.g. the
// target of a /msg or /kick), so the read of c.Nick in the failure-log
// path goes through the same lock tellLocked's callers already hold.
func (r *Registry) Tell(c *Client, line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tellLocked(c, line)
}

// TellChannel writes line to every member of the named channel. The
// registry lock is held across the whole iteration, so no member can
// join or leave mid-broadcast: the set of recipients is exactly the
// membership at the moment of the call. Unknown channels are a no-op.
func (r *Registry) TellChannel(name, line string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.channels[name]
	if !ok {
		return
	}

	for handle := range members {
		c, ok := r.clients[handle]
		if !ok {
			continue
		}
		tellLocked(c, line)
	}
}

// TellAll writes line to every client currently in the registry, under
// the lock, for the same atomicity reason as TellChannel.
func (r *Registry) TellAll(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.clients {
		tellLocked(c, line)
	}
}

// tellLocked is the shared body of Tell, TellChannel, and TellAll, for
// callers already holding r.mu. A per-socket write error never aborts
// a surrounding broadcast; it only flags that one client.
func tellLocked(c *Client, line string) {
	if err := c.Socket.WriteLine(line); err != nil {
		logrus.WithFields(logrus.Fields{
			"handle": c.Handle,
			"nick":   c.Nick,
		}).WithError(err).Warn("write failed, flagging client for removal")
		c.setStatus(StatusInactive)
	}
}
