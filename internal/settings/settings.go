// Package settings loads the server's optional tuning-parameter file.
// None of these keys are required: a bare `chatserver <host> <port>`
// invocation runs entirely on the defaults below.
package settings

import (
	"strconv"
	"time"

	"github.com/horgh/config"
	"github.com/pkg/errors"
)

// Settings are tuning parameters read from an optional file, layered
// over built-in defaults. CLI positional host/port arguments are never
// part of this file; they always come from argv.
type Settings struct {
	ReadChunkBytes    int
	IdleWriteDeadline time.Duration
	LogLevel          string
}

// Defaults returns the built-in settings used when no file is given.
func Defaults() Settings {
	return Settings{
		ReadChunkBytes:    1024,
		IdleWriteDeadline: 10 * time.Second,
		LogLevel:          "info",
	}
}

// Load reads path as a `key = value` file (see
// github.com/horgh/config) and overlays any keys it sets onto the
// defaults. An empty path returns the defaults unchanged.
func Load(path string) (Settings, error) {
	s := Defaults()
	if path == "" {
		return s, nil
	}

	kv, err := config.ReadStringMap(path)
	if err != nil {
		return Settings{}, errors.Wrap(err, "unable to read settings file")
	}

	if v, ok := kv["read-chunk-bytes"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Settings{}, errors.Wrap(err, "read-chunk-bytes is not valid")
		}
		s.ReadChunkBytes = n
	}

	if v, ok := kv["idle-write-deadline"]; ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Settings{}, errors.Wrap(err, "idle-write-deadline is not valid")
		}
		s.IdleWriteDeadline = d
	}

	if v, ok := kv["log-level"]; ok && v != "" {
		s.LogLevel = v
	}

	return s, nil
}
