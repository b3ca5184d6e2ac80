// Package message contains the host-facing message model.
// The host application owns every Message: it constructs the object, hands it
// to each middleware by reference, and destroys it afterwards. A middleware
// may mutate Text and must return the message (or a replacement) to the host.
package message

import "io"

// MsgType enumerates the content types a host message can carry.
type MsgType int

const (
	MsgUnknown MsgType = iota
	MsgText
	MsgImage
	MsgAudio
	MsgVideo
	MsgFile
)

// String returns the human-readable name of the message type.
func (t MsgType) String() string {
	switch t {
	case MsgText:
		return "text"
	case MsgImage:
		return "image"
	case MsgAudio:
		return "audio"
	case MsgVideo:
		return "video"
	case MsgFile:
		return "file"
	default:
		return "unknown"
	}
}

// Author identifies who sent a message and through which host module.
type Author struct {
	ModuleID string // host module that produced the message, e.g. "blueset.telegram"
	Name     string
}

// Message is the host-owned message object passed through middlewares.
// File is a readable handle on the media payload for non-text messages;
// the host rewinds or closes it after the middleware pass.
type Message struct {
	Type   MsgType
	Author *Author
	File   io.Reader
	Text   string
}

// Middleware is the capability a message-processing plugin implements.
// ProcessMessage receives a message, may mutate it, and returns it.
// Returning nil discards the message.
type Middleware interface {
	ProcessMessage(msg *Message) *Message
}
