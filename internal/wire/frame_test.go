package wire

import (
	"net"
	"testing"
	"time"
)

func pipe(t *testing.T) (client net.Conn, server net.Conn) {
	t.Helper()
	c, s := net.Pipe()
	t.Cleanup(func() {
		_ = c.Close()
		_ = s.Close()
	})
	return c, s
}

func TestReadLineSingleLine(t *testing.T) {
	client, server := pipe(t)
	f := New(server, time.Second, 1024)

	go func() {
		_, _ = client.Write([]byte("hello\n"))
	}()

	line, err := f.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if line != "hello" {
		t.Errorf("got %q, want %q", line, "hello")
	}
}

func TestReadLineTwoLinesOneChunk(t *testing.T) {
	client, server := pipe(t)
	f := New(server, time.Second, 1024)

	go func() {
		_, _ = client.Write([]byte("one\ntwo\n"))
	}()

	for _, want := range []string{"one", "two"} {
		line, err := f.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine: %v", err)
		}
		if line != want {
			t.Errorf("got %q, want %q", line, want)
		}
	}
}

func TestReadLineSplitAcrossChunks(t *testing.T) {
	client, server := pipe(t)
	// A tiny chunk size forces ReadLine to accumulate across several
	// internal reads, exercising the half-line boundary case.
	f := New(server, time.Second, 2)

	go func() {
		for _, b := range []byte("hello world\n") {
			_, _ = client.Write([]byte{b})
		}
	}()

	line, err := f.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if line != "hello world" {
		t.Errorf("got %q, want %q", line, "hello world")
	}
}

func TestReadLineStripsCR(t *testing.T) {
	client, server := pipe(t)
	f := New(server, time.Second, 1024)

	go func() {
		_, _ = client.Write([]byte("hi\r\n"))
	}()

	line, err := f.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if line != "hi" {
		t.Errorf("got %q, want %q", line, "hi")
	}
}

func TestReadLineOnClose(t *testing.T) {
	client, server := pipe(t)
	f := New(server, time.Second, 1024)

	_ = client.Close()

	if _, err := f.ReadLine(); err == nil {
		t.Error("expected an error after peer close, got nil")
	}
}

func TestWriteLineSplitsEmbeddedNewlines(t *testing.T) {
	client, server := pipe(t)
	serverFramer := New(server, time.Second, 1024)
	clientFramer := New(client, time.Second, 1024)

	go func() {
		_ = serverFramer.WriteLine("a\nb")
	}()

	for _, want := range []string{"a", "b"} {
		line, err := clientFramer.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine: %v", err)
		}
		if line != want {
			t.Errorf("got %q, want %q", line, want)
		}
	}
}

func TestWriteLineAppendsTrailingNewline(t *testing.T) {
	client, server := pipe(t)
	serverFramer := New(server, time.Second, 1024)
	clientFramer := New(client, time.Second, 1024)

	go func() {
		_ = serverFramer.WriteLine("ping")
	}()

	line, err := clientFramer.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if line != "ping" {
		t.Errorf("got %q, want %q", line, "ping")
	}
}
