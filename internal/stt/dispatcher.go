package stt

import (
	"errors"
	"fmt"
	"strings"
)

// Dispatcher fans one audio input out to every configured engine and formats
// the heterogeneous results uniformly. The engine list is fixed at
// construction; requests never mutate it.
type Dispatcher struct {
	engines []Engine
}

// NewDispatcher builds a dispatcher over the given engines.
func NewDispatcher(engines ...Engine) *Dispatcher {
	return &Dispatcher{engines: engines}
}

// EngineCount returns the number of configured engines.
func (d *Dispatcher) EngineCount() int {
	return len(d.engines)
}

// RecognizeAll runs every engine against the audio, in configured order, and
// returns one formatted entry per engine: "<Name> (<lang>): <lines>". Engine
// failures fold into the same format via the in-band error sentinel; the
// returned error covers only infrastructure failure before any engine ran.
func (d *Dispatcher) RecognizeAll(in Input, lang string) ([]string, error) {
	if len(d.engines) == 0 {
		return nil, errors.New("no speech engines configured")
	}

	// Spool once so stream inputs are read a single time and every engine
	// sees the same file.
	path, cleanup, err := Spool(in)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	entries := make([]string, 0, len(d.engines))
	for _, e := range d.engines {
		res := e.Recognize(FromPath(path), lang)
		entries = append(entries, fmt.Sprintf("%s (%s): %s", e.Name(), lang, strings.Join(res, "\n")))
	}

	return entries, nil
}
