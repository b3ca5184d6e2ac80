// Package middleware implements the voice-recognition message adapter:
// audio messages get their transcript appended, everything else passes
// through untouched.
package middleware

import (
	"fmt"
	"strings"

	"github.com/echobridge/voicerecog/internal/config"
	. "github.com/echobridge/voicerecog/internal/logging"
	"github.com/echobridge/voicerecog/internal/message"
	"github.com/echobridge/voicerecog/internal/stt"
)

// DefaultMasterModuleID identifies the host's own primary channel.
// Messages authored by this module already came from the bot's master side
// and pass through unrecognized.
const DefaultMasterModuleID = "blueset.telegram"

// FailureText is appended instead of a transcript when the recognition pass
// fails for any reason.
const FailureText = "Failed to recognize voice content."

// VoiceRecog is the middleware. It holds an immutable dispatcher over the
// configured engines and the default language hint; a message pass mutates
// nothing but the message text, so concurrent host deliveries are safe.
type VoiceRecog struct {
	dispatcher     *stt.Dispatcher
	lang           string
	masterModuleID string
}

// New builds the middleware from a loaded config.
func New(cfg *config.Config) (*VoiceRecog, error) {
	engines, err := stt.EnginesFromConfig(cfg.SpeechAPI)
	if err != nil {
		return nil, err
	}
	if len(engines) == 0 {
		L_warn("middleware: no speech engines configured, audio messages will pass through")
	}

	return &VoiceRecog{
		dispatcher:     stt.NewDispatcher(engines...),
		lang:           cfg.Language,
		masterModuleID: DefaultMasterModuleID,
	}, nil
}

// SetMasterModuleID overrides the host master channel sentinel.
func (v *VoiceRecog) SetMasterModuleID(id string) {
	v.masterModuleID = id
}

// ProcessMessage implements message.Middleware. Non-audio and self-sent
// messages are returned unchanged; for audio messages the recognition result
// (or the fixed failure string) is appended to the text.
func (v *VoiceRecog) ProcessMessage(msg *message.Message) *message.Message {
	if msg == nil {
		return nil
	}
	if msg.Type != message.MsgAudio || v.sentByMaster(msg) {
		return msg
	}
	if v.dispatcher.EngineCount() == 0 {
		return msg
	}

	text, err := v.recognize(msg)
	if err != nil {
		L_warn("middleware: recognition failed", "error", err)
		msg.Text += FailureText
		return msg
	}

	msg.Text += text
	return msg
}

// sentByMaster reports whether the message was authored by the host's own
// master channel.
func (v *VoiceRecog) sentByMaster(msg *message.Message) bool {
	return msg.Author != nil && msg.Author.ModuleID == v.masterModuleID
}

// recognize spools the message stream and runs every engine against it.
// Any panic from the audio/provider path is converted into an error so the
// message pass always completes.
func (v *VoiceRecog) recognize(msg *message.Message) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recognition panic: %v", r)
		}
	}()

	if msg.File == nil {
		return "", fmt.Errorf("audio message has no stream")
	}

	entries, err := v.dispatcher.RecognizeAll(stt.FromReader(msg.File), v.lang)
	if err != nil {
		return "", err
	}

	return strings.Join(entries, "\n"), nil
}
