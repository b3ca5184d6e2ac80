package stt

import (
	"errors"
	"io"
	"os"
)

// Input is an audio source handed to an engine: either a path to a file on
// disk or an already-open byte stream. Engines accept both forms; a zero
// Input is invalid and yields the type-error sentinel.
type Input struct {
	reader io.Reader
	path   string
}

// FromPath builds an Input referencing an audio file on disk.
func FromPath(path string) Input {
	return Input{path: path}
}

// FromReader builds an Input reading from an open audio stream.
func FromReader(r io.Reader) Input {
	return Input{reader: r}
}

// valid reports whether the Input references any audio source.
func (in Input) valid() bool {
	return in.path != "" || in.reader != nil
}

// Spool materializes an Input as a file on disk. Path inputs are returned
// as-is; stream inputs are copied to a temp file. The returned cleanup is
// never nil and must be called on every exit path.
func Spool(in Input) (string, func(), error) {
	noop := func() {}

	if in.path != "" {
		return in.path, noop, nil
	}
	if in.reader == nil {
		return "", noop, errors.New("empty audio input")
	}

	tmp, err := os.CreateTemp("", "voicerecog-*.audio")
	if err != nil {
		return "", noop, err
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, in.reader); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", noop, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", noop, err
	}

	return tmpPath, func() { os.Remove(tmpPath) }, nil
}
