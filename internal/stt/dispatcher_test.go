package stt

import (
	"os"
	"strings"
	"testing"
)

// fakeEngine records what it was asked to recognize and returns canned lines.
type fakeEngine struct {
	name    string
	result  []string
	gotPath string
	gotLang string
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Recognize(in Input, lang string) []string {
	f.gotPath = in.path
	f.gotLang = lang
	return f.result
}

func TestDispatcher_OrderAndFormat(t *testing.T) {
	a := &fakeEngine{name: "Alpha", result: []string{"hi"}}
	b := &fakeEngine{name: "Beta", result: errorResult("bad audio")}
	d := NewDispatcher(a, b)

	entries, err := d.RecognizeAll(FromPath("voice.ogg"), "zh")
	if err != nil {
		t.Fatalf("RecognizeAll() error: %v", err)
	}

	want := []string{
		"Alpha (zh): hi",
		"Beta (zh): ERROR!\nbad audio",
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d: expected %q, got %q", i, want[i], entries[i])
		}
	}

	if a.gotLang != "zh" || b.gotLang != "zh" {
		t.Error("expected language hint to reach every engine")
	}
}

func TestDispatcher_NoEngines(t *testing.T) {
	d := NewDispatcher()
	if _, err := d.RecognizeAll(FromPath("voice.ogg"), "zh"); err == nil {
		t.Fatal("expected error for empty engine list, got nil")
	}
}

func TestDispatcher_SpoolsStreamOnce(t *testing.T) {
	a := &fakeEngine{name: "Alpha", result: []string{"one"}}
	b := &fakeEngine{name: "Beta", result: []string{"two"}}
	d := NewDispatcher(a, b)

	_, err := d.RecognizeAll(FromReader(strings.NewReader("audio-bytes")), "en")
	if err != nil {
		t.Fatalf("RecognizeAll() error: %v", err)
	}

	if a.gotPath == "" || a.gotPath != b.gotPath {
		t.Fatalf("expected both engines to see the same spooled file, got %q and %q", a.gotPath, b.gotPath)
	}
	// Spooled temp file must be gone after the pass
	if _, err := os.Stat(a.gotPath); !os.IsNotExist(err) {
		t.Errorf("expected spooled file %s to be removed", a.gotPath)
	}
}

func TestIsErrorResult(t *testing.T) {
	if !IsErrorResult(errorResult("boom")) {
		t.Error("expected sentinel to be recognized")
	}
	if IsErrorResult([]string{"hello", "world"}) {
		t.Error("transcript lines misidentified as sentinel")
	}
	if IsErrorResult(nil) {
		t.Error("nil misidentified as sentinel")
	}
}
