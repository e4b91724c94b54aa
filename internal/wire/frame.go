// Package wire implements the line-oriented framing the chat protocol
// uses on top of a TCP stream: newline-terminated UTF-8 messages in,
// newline-terminated UTF-8 messages out.
package wire

import (
	"net"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ReadChunkBytes is the documented ceiling on a single read from the
// underlying connection. A logical line may span many chunks.
const ReadChunkBytes = 1024

// Framer accumulates bytes read off a net.Conn and splits them into
// complete lines, and frames outbound lines with a trailing newline.
type Framer struct {
	conn          net.Conn
	writeDeadline time.Duration
	readChunk     int
	pending       []byte
}

// New wraps conn, reading in readChunk-byte pieces (ReadChunkBytes if
// readChunk is 0). writeDeadline bounds every individual write and has
// no effect on reads, which block until a line is available or the
// connection errors.
func New(conn net.Conn, writeDeadline time.Duration, readChunk int) *Framer {
	if readChunk <= 0 {
		readChunk = ReadChunkBytes
	}
	return &Framer{
		conn:          conn,
		writeDeadline: writeDeadline,
		readChunk:     readChunk,
	}
}

// RemoteAddr returns the peer's network address.
func (f *Framer) RemoteAddr() net.Addr {
	return f.conn.RemoteAddr()
}

// Close closes the underlying connection.
func (f *Framer) Close() error {
	return f.conn.Close()
}

// ReadLine returns the next complete, newline-terminated line from the
// connection with any trailing "\r" stripped. It blocks, reading up to
// the Framer's read-chunk size at a time, until a line is available. A
// read error (including io.EOF on peer close) is returned as-is.
//
// Malformed UTF-8 in the line is replaced with utf8.RuneError (a lossy
// replacement) rather than treated as an error.
func (f *Framer) ReadLine() (string, error) {
	for {
		if idx := indexByte(f.pending, '\n'); idx >= 0 {
			line := f.pending[:idx]
			f.pending = f.pending[idx+1:]
			return sanitizeLine(line), nil
		}

		chunk := make([]byte, f.readChunk)
		n, err := f.conn.Read(chunk)
		if n > 0 {
			f.pending = append(f.pending, chunk[:n]...)
		}
		if err != nil {
			return "", err
		}
		if n == 0 {
			return "", errors.New("connection closed")
		}
	}
}

// WriteLine writes s to the connection with a trailing newline. If s
// contains embedded newlines, each segment is written as its own framed
// line.
func (f *Framer) WriteLine(s string) error {
	segments := strings.Split(s, "\n")
	for _, seg := range segments {
		if err := f.writeOne(seg); err != nil {
			return err
		}
	}
	return nil
}

func (f *Framer) writeOne(line string) error {
	if f.writeDeadline > 0 {
		if err := f.conn.SetWriteDeadline(time.Now().Add(f.writeDeadline)); err != nil {
			return errors.Wrap(err, "unable to set write deadline")
		}
	}

	_, err := f.conn.Write([]byte(line + "\n"))
	return errors.Wrap(err, "write failed")
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

func sanitizeLine(b []byte) string {
	s := strings.TrimSuffix(string(b), "\r")
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, string(utf8.RuneError))
	}
	return s
}
