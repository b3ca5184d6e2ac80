package stt

import (
	"fmt"

	"github.com/echobridge/voicerecog/internal/config"
	. "github.com/echobridge/voicerecog/internal/logging"
)

// engineOrder fixes the construction (and therefore output) order of known
// providers, since the speech_api mapping itself is unordered.
var engineOrder = []string{"baidu", "bing"}

// EnginesFromConfig constructs every engine named in the speech_api mapping.
// Unknown provider names are logged and skipped; a configured provider that
// fails to construct (e.g. token exchange failure) is a hard error.
func EnginesFromConfig(apis map[string]config.Credentials) ([]Engine, error) {
	var engines []Engine

	for _, name := range engineOrder {
		creds, ok := apis[name]
		if !ok {
			continue
		}

		var (
			engine Engine
			err    error
		)
		switch name {
		case "baidu":
			engine, err = NewBaiduEngine(BaiduConfig{
				APIKey:    creds.APIKey,
				SecretKey: creds.SecretKey,
			})
		case "bing":
			engine, err = NewBingEngine(BingConfig{
				SubscriptionKey: creds.SubscriptionKey,
			})
		}
		if err != nil {
			return nil, fmt.Errorf("configure %s engine: %w", name, err)
		}
		engines = append(engines, engine)
	}

	for name := range apis {
		if !knownEngine(name) {
			L_warn("stt: unknown speech provider in config, skipping", "provider", name)
		}
	}

	return engines, nil
}

func knownEngine(name string) bool {
	for _, n := range engineOrder {
		if n == name {
			return true
		}
	}
	return false
}
