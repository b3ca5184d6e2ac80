package middleware

import (
	"strings"
	"testing"

	"github.com/echobridge/voicerecog/internal/config"
	"github.com/echobridge/voicerecog/internal/message"
	"github.com/echobridge/voicerecog/internal/stt"
)

// stubEngine ignores the audio and returns canned lines.
type stubEngine struct {
	name   string
	result []string
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Recognize(_ stt.Input, _ string) []string { return s.result }

// panicEngine simulates a decoder blowing up mid-pass.
type panicEngine struct{}

func (panicEngine) Name() string { return "Panic" }

func (panicEngine) Recognize(_ stt.Input, _ string) []string { panic("decoder bug") }

func newTestMiddleware(engines ...stt.Engine) *VoiceRecog {
	return &VoiceRecog{
		dispatcher:     stt.NewDispatcher(engines...),
		lang:           "zh",
		masterModuleID: DefaultMasterModuleID,
	}
}

func TestProcessMessage_NonAudioPassesThrough(t *testing.T) {
	v := newTestMiddleware(&stubEngine{name: "Stub", result: []string{"hi"}})

	msg := &message.Message{Type: message.MsgText, Text: "hello"}
	got := v.ProcessMessage(msg)

	if got != msg {
		t.Fatal("expected the same message object back")
	}
	if got.Text != "hello" {
		t.Errorf("expected text unchanged, got %q", got.Text)
	}
}

func TestProcessMessage_FromMasterPassesThrough(t *testing.T) {
	v := newTestMiddleware(&stubEngine{name: "Stub", result: []string{"hi"}})

	msg := &message.Message{
		Type:   message.MsgAudio,
		Author: &message.Author{ModuleID: DefaultMasterModuleID},
		File:   strings.NewReader("audio"),
		Text:   "note",
	}
	got := v.ProcessMessage(msg)

	if got != msg || got.Text != "note" {
		t.Errorf("expected master-authored audio unchanged, got %q", got.Text)
	}
}

func TestProcessMessage_AppendsTranscript(t *testing.T) {
	v := newTestMiddleware(&stubEngine{name: "Stub", result: []string{"hi"}})

	msg := &message.Message{
		Type: message.MsgAudio,
		File: strings.NewReader("audio-bytes"),
		Text: "",
	}
	got := v.ProcessMessage(msg)

	if got.Text != "Stub (zh): hi" {
		t.Errorf("expected transcript appended, got %q", got.Text)
	}
}

func TestProcessMessage_AppendsToExistingText(t *testing.T) {
	v := newTestMiddleware(&stubEngine{name: "Stub", result: []string{"hi"}})

	msg := &message.Message{
		Type: message.MsgAudio,
		File: strings.NewReader("audio-bytes"),
		Text: "[voice note] ",
	}
	got := v.ProcessMessage(msg)

	if got.Text != "[voice note] Stub (zh): hi" {
		t.Errorf("expected transcript appended to original text, got %q", got.Text)
	}
}

func TestProcessMessage_MultipleEngines(t *testing.T) {
	v := newTestMiddleware(
		&stubEngine{name: "Alpha", result: []string{"hello", "world"}},
		&stubEngine{name: "Beta", result: []string{"ERROR!", "bad audio"}},
	)

	msg := &message.Message{
		Type: message.MsgAudio,
		File: strings.NewReader("audio-bytes"),
	}
	got := v.ProcessMessage(msg)

	want := "Alpha (zh): hello\nworld\nBeta (zh): ERROR!\nbad audio"
	if got.Text != want {
		t.Errorf("expected %q, got %q", want, got.Text)
	}
}

func TestProcessMessage_NoStream(t *testing.T) {
	v := newTestMiddleware(&stubEngine{name: "Stub", result: []string{"hi"}})

	msg := &message.Message{Type: message.MsgAudio, Text: "x"}
	got := v.ProcessMessage(msg)

	if got.Text != "x"+FailureText {
		t.Errorf("expected failure text appended, got %q", got.Text)
	}
}

func TestProcessMessage_PanicRecovered(t *testing.T) {
	v := newTestMiddleware(panicEngine{})

	msg := &message.Message{
		Type: message.MsgAudio,
		File: strings.NewReader("audio-bytes"),
	}
	got := v.ProcessMessage(msg)

	if got.Text != FailureText {
		t.Errorf("expected failure text after panic, got %q", got.Text)
	}
}

func TestProcessMessage_NoEnginesPassesThrough(t *testing.T) {
	v := newTestMiddleware()

	msg := &message.Message{
		Type: message.MsgAudio,
		File: strings.NewReader("audio-bytes"),
		Text: "keep",
	}
	got := v.ProcessMessage(msg)

	if got.Text != "keep" {
		t.Errorf("expected pass-through with no engines, got %q", got.Text)
	}
}

func TestNew_UnknownProviderSkipped(t *testing.T) {
	cfg := &config.Config{
		Language: "zh",
		SpeechAPI: map[string]config.Credentials{
			"nonsense": {APIKey: "x"},
		},
	}

	v, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if v.dispatcher.EngineCount() != 0 {
		t.Errorf("expected unknown provider to be skipped, got %d engines", v.dispatcher.EngineCount())
	}
}

func TestVoiceRecog_ImplementsMiddleware(t *testing.T) {
	var _ message.Middleware = (*VoiceRecog)(nil)
}
