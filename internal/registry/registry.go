package registry

// RenameResult reports the outcome of Rename.
type RenameResult int

const (
	// Renamed means the nickname bijection was updated.
	Renamed RenameResult = iota
	// Rejected means new_nick is already bound to a different handle;
	// state is left unchanged.
	Rejected
)

// ChannelResult reports the outcome of CreateChannel.
type ChannelResult int

const (
	// Created means a new, empty channel was added.
	Created ChannelResult = iota
	// Exists means the channel was already present.
	Exists
)

// Admit allocates a fresh handle, creates an ACTIVE client with
// nick=str(handle), channel=default, and inserts it into the client
// table, the default channel's membership, and the nickname index.
func (r *Registry) Admit(socket Socket) *Client {
	handle := r.nextHandle.Add(1) - 1

	c := &Client{
		Handle:  handle,
		Socket:  socket,
		Nick:    defaultNick(handle),
		Channel: DefaultChannel,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients[handle] = c
	r.channels[DefaultChannel][handle] = struct{}{}
	r.nickToHandle[c.Nick] = handle
	r.handleToNick[handle] = c.Nick

	return c
}

// Remove closes the client's socket and erases it from the client
// table, its channel's membership, and both sides of the nickname
// index. It marks the record REMOVED. Idempotent: removing an
// already-removed or unknown handle is a no-op.
func (r *Registry) Remove(handle uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(handle)
}

// removeLocked is Remove's body, for callers that already hold r.mu
// (e.g. Kick). Go's sync.Mutex isn't reentrant, so every exported
// method that needs to call another locked operation internally goes
// through one of these private, already-locked variants instead of
// calling the public method.
func (r *Registry) removeLocked(handle uint64) {
	c, ok := r.clients[handle]
	if !ok {
		return
	}

	c.setStatus(StatusRemoved)
	_ = c.Socket.Close()

	if members, ok := r.channels[c.Channel]; ok {
		delete(members, handle)
	}

	if nick, ok := r.handleToNick[handle]; ok {
		delete(r.nickToHandle, nick)
	}
	delete(r.handleToNick, handle)
	delete(r.clients, handle)
}

// Rename implements /nick's bijection update. On success it updates
// both sides of the index and the client's Nick field and returns
// Renamed. If newNick is already bound to a different handle, state is
// left unchanged and Rejected is returned. Renaming to one's own
// current nick is a no-op success.
func (r *Registry) Rename(handle uint64, newNick string) RenameResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[handle]
	if !ok {
		return Rejected
	}

	if existing, taken := r.nickToHandle[newNick]; taken && existing != handle {
		return Rejected
	}

	if c.Nick == newNick {
		return Renamed
	}

	delete(r.nickToHandle, c.Nick)
	r.nickToHandle[newNick] = handle
	r.handleToNick[handle] = newNick
	c.Nick = newNick

	return Renamed
}

// CreateChannel adds an empty channel if absent.
func (r *Registry) CreateChannel(name string) ChannelResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.channels[name]; ok {
		return Exists
	}

	r.channels[name] = make(map[uint64]struct{})
	return Created
}

// MoveToChannel removes handle from its current channel's membership
// and adds it to name's, updating the client's Channel field. name must
// already exist; ok reports whether it did.
func (r *Registry) MoveToChannel(handle uint64, name string) (ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.channels[name]
	if !ok {
		return false
	}

	c, ok := r.clients[handle]
	if !ok {
		return false
	}

	if old, ok := r.channels[c.Channel]; ok {
		delete(old, handle)
	}

	target[handle] = struct{}{}
	c.Channel = name

	return true
}

// Lookup returns the client currently bound to nick, if any.
func (r *Registry) Lookup(nick string) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	handle, ok := r.nickToHandle[nick]
	if !ok {
		return nil, false
	}
	return r.clients[handle], true
}

// Kick marks target's status INACTIVE, then removes it. The caller is
// responsible for any messaging to/about the target; Kick only performs
// the registry-state transition.
func (r *Registry) Kick(handle uint64) (ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[handle]
	if !ok {
		return false
	}

	c.setStatus(StatusInactive)
	r.removeLocked(handle)
	return true
}

// ClientOf returns the client record for handle, if it is still
// present.
func (r *Registry) ClientOf(handle uint64) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[handle]
	return c, ok
}

// SnapshotChannels returns, for every channel, its name and member
// count, in no particular order.
func (r *Registry) SnapshotChannels() []ChannelSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ChannelSummary, 0, len(r.channels))
	for name, members := range r.channels {
		out = append(out, ChannelSummary{Name: name, Count: len(members)})
	}
	return out
}

// ChannelSummary is one row of a channel listing.
type ChannelSummary struct {
	Name  string
	Count int
}

// SnapshotChannelNicks returns the nicknames of every member of name,
// and whether the channel exists.
func (r *Registry) SnapshotChannelNicks(name string) ([]string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.channels[name]
	if !ok {
		return nil, false
	}

	out := make([]string, 0, len(members))
	for handle := range members {
		if nick, ok := r.handleToNick[handle]; ok {
			out = append(out, nick)
		}
	}
	return out, true
}

// SnapshotAllNicks returns the nicknames of every active client.
func (r *Registry) SnapshotAllNicks() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.handleToNick))
	for _, nick := range r.handleToNick {
		out = append(out, nick)
	}
	return out
}
