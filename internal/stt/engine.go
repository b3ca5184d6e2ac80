// Package stt provides speech-to-text recognition for audio content.
package stt

// ErrorTag is the first element of an in-band error result.
const ErrorTag = "ERROR!"

// errInputShape is the reason reported when an engine is handed an Input
// that is neither a path nor an open stream.
const errInputShape = "file must be a path string or an open audio stream"

// Engine is the interface for speech recognition implementations.
//
// Recognize returns the transcript lines for the audio referenced by in,
// one element per provider alternative. Failures are reported in-band as
// the two-element result {"ERROR!", reason} so they can be rendered to the
// chat user like any transcript; they are never escalated as Go errors.
type Engine interface {
	// Name returns the engine name shown in recognition output (e.g. "Baidu")
	Name() string

	// Recognize converts the audio to transcript lines for the given
	// language hint.
	Recognize(in Input, lang string) []string
}

// errorResult builds the in-band error sentinel.
func errorResult(reason string) []string {
	return []string{ErrorTag, reason}
}

// IsErrorResult reports whether res is an in-band error sentinel.
func IsErrorResult(res []string) bool {
	return len(res) > 0 && res[0] == ErrorTag
}
