package registry

import (
	"fmt"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSocket records every line written to it; it never actually fails
// unless failing is set.
type fakeSocket struct {
	mu      sync.Mutex
	lines   []string
	failing bool
}

func (f *fakeSocket) ReadLine() (string, error) { return "", fmt.Errorf("not implemented") }

func (f *fakeSocket) WriteLine(line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return fmt.Errorf("write failed")
	}
	f.lines = append(f.lines, line)
	return nil
}

func (f *fakeSocket) Close() error { return nil }

func (f *fakeSocket) RemoteAddr() net.Addr { return &net.TCPAddr{} }

func (f *fakeSocket) written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.lines))
	copy(out, f.lines)
	return out
}

func TestAdmitAssignsSequentialHandlesAndDefaultNick(t *testing.T) {
	r := New()

	a := r.Admit(&fakeSocket{})
	b := r.Admit(&fakeSocket{})

	assert.Equal(t, uint64(0), a.Handle)
	assert.Equal(t, uint64(1), b.Handle)
	assert.Equal(t, "0", a.Nick)
	assert.Equal(t, "1", b.Nick)
	assert.Equal(t, DefaultChannel, a.Channel)

	nicks, ok := r.SnapshotChannelNicks(DefaultChannel)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"0", "1"}, nicks)
}

func TestDefaultChannelAlwaysPresent(t *testing.T) {
	r := New()
	channels := r.SnapshotChannels()
	require.Len(t, channels, 1)
	assert.Equal(t, DefaultChannel, channels[0].Name)
	assert.Equal(t, 0, channels[0].Count)
}

func TestRenameSuccessAndRejection(t *testing.T) {
	r := New()
	a := r.Admit(&fakeSocket{})
	b := r.Admit(&fakeSocket{})

	assert.Equal(t, Renamed, r.Rename(a.Handle, "alice"))
	assert.Equal(t, "alice", a.Nick)

	// b can't take alice's nick.
	assert.Equal(t, Rejected, r.Rename(b.Handle, "alice"))
	assert.Equal(t, "1", b.Nick)

	// a can.
	assert.Equal(t, Renamed, r.Rename(a.Handle, "alice"))
}

func TestRenameIdempotent(t *testing.T) {
	r := New()
	a := r.Admit(&fakeSocket{})

	require.Equal(t, Renamed, r.Rename(a.Handle, "alice"))
	require.Equal(t, Renamed, r.Rename(a.Handle, "alice"))

	client, ok := r.ClientOf(a.Handle)
	require.True(t, ok)
	assert.Equal(t, "alice", client.Nick)
}

func TestCreateChannel(t *testing.T) {
	r := New()

	assert.Equal(t, Created, r.CreateChannel("lounge"))
	assert.Equal(t, Exists, r.CreateChannel("lounge"))
}

func TestMoveToChannel(t *testing.T) {
	r := New()
	a := r.Admit(&fakeSocket{})
	r.CreateChannel("lounge")

	ok := r.MoveToChannel(a.Handle, "lounge")
	require.True(t, ok)
	assert.Equal(t, "lounge", a.Channel)

	defaultNicks, _ := r.SnapshotChannelNicks(DefaultChannel)
	assert.Empty(t, defaultNicks)

	loungeNicks, _ := r.SnapshotChannelNicks("lounge")
	assert.Equal(t, []string{"0"}, loungeNicks)

	assert.False(t, r.MoveToChannel(a.Handle, "nonexistent"))
}

func TestRemoveErasesFromEveryStructure(t *testing.T) {
	r := New()
	a := r.Admit(&fakeSocket{})
	r.Rename(a.Handle, "alice")

	r.Remove(a.Handle)

	_, ok := r.ClientOf(a.Handle)
	assert.False(t, ok)

	_, ok = r.Lookup("alice")
	assert.False(t, ok)

	nicks, _ := r.SnapshotChannelNicks(DefaultChannel)
	assert.NotContains(t, nicks, "alice")

	assert.Equal(t, StatusRemoved, a.Status())
}

func TestRemoveIsIdempotent(t *testing.T) {
	r := New()
	a := r.Admit(&fakeSocket{})

	r.Remove(a.Handle)
	assert.NotPanics(t, func() { r.Remove(a.Handle) })
}

func TestKickMarksInactiveThenRemoves(t *testing.T) {
	r := New()
	a := r.Admit(&fakeSocket{})

	require.True(t, r.Kick(a.Handle))

	assert.Equal(t, StatusRemoved, a.Status())
	_, ok := r.ClientOf(a.Handle)
	assert.False(t, ok)
}

func TestKickUnknownHandle(t *testing.T) {
	r := New()
	assert.False(t, r.Kick(999))
}
