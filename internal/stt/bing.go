package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	. "github.com/echobridge/voicerecog/internal/logging"
)

const bingAPIURL = "https://speech.platform.bing.com/speech/recognition/conversation/cognitiveservices/v1"

// bingLangs is the list of BCP-47 tags the conversation endpoint accepts.
var bingLangs = []string{
	"ar-EG", "de-DE", "en-US", "es-ES", "fr-FR",
	"it-IT", "ja-JP", "pt-BR", "ru-RU", "zh-CN",
}

// BingConfig holds Bing speech configuration.
// APIURL and HTTPClient are optional overrides for tests.
type BingConfig struct {
	SubscriptionKey string
	APIURL          string
	HTTPClient      *http.Client
}

// BingEngine implements speech recognition against the Bing speech REST API.
// Unlike Baidu there is no token exchange; the subscription key rides on
// every request.
type BingEngine struct {
	subscriptionKey string
	apiURL          string
	client          *http.Client

	decodePCM func(string) ([]byte, error)
}

// NewBingEngine returns a ready engine.
func NewBingEngine(cfg BingConfig) (*BingEngine, error) {
	if cfg.SubscriptionKey == "" {
		return nil, fmt.Errorf("bing subscription_key not configured")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = bingAPIURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	L_info("stt: bing engine initialized")

	return &BingEngine{
		subscriptionKey: cfg.SubscriptionKey,
		apiURL:          cfg.APIURL,
		client:          client,
		decodePCM:       DecodePCM16k,
	}, nil
}

// resolveBingLanguage maps a requested language tag onto the supported list.
// An exact tag wins; otherwise the first supported tag sharing the coarse
// prefix (text before "-") is taken.
func resolveBingLanguage(lang string) (string, bool) {
	for _, l := range bingLangs {
		if l == lang {
			return l, true
		}
	}

	prefix, _, _ := strings.Cut(lang, "-")
	for _, l := range bingLangs {
		p, _, _ := strings.Cut(l, "-")
		if p == prefix {
			return l, true
		}
	}

	return "", false
}

// Recognize converts the audio to transcript lines, one per NBest alternative.
func (b *BingEngine) Recognize(in Input, lang string) []string {
	if !in.valid() {
		return errorResult(errInputShape)
	}

	resolved, ok := resolveBingLanguage(lang)
	if !ok {
		return errorResult("invalid language")
	}
	if resolved != lang {
		L_debug("stt: bing language fallback", "requested", lang, "using", resolved)
	}

	path, cleanup, err := Spool(in)
	if err != nil {
		return errorResult(err.Error())
	}
	defer cleanup()

	pcm, err := b.decodePCM(path)
	if err != nil {
		return errorResult(err.Error())
	}
	wav := WrapPCMAsWAV(pcm, TargetSampleRate, 1, 16)

	query := url.Values{
		"language": {resolved},
		"format":   {"detailed"},
	}
	reqURL := b.apiURL + "?" + query.Encode()

	req, err := http.NewRequestWithContext(context.Background(), "POST", reqURL, bytes.NewReader(wav))
	if err != nil {
		return errorResult(err.Error())
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", b.subscriptionKey)
	req.Header.Set("Content-Type", "audio/wav; samplerate=16000")

	L_debug("stt: sending to bing", "lang", resolved, "wavBytes", len(wav))

	resp, err := b.client.Do(req)
	if err != nil {
		return errorResult(err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errorResult(err.Error())
	}

	var result struct {
		NBest []struct {
			Display string `json:"Display"`
		} `json:"NBest"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		// Non-JSON body: surface the raw response text
		return errorResult(string(body))
	}

	if resp.StatusCode != http.StatusOK {
		L_debug("stt: bing request failed", "status", resp.StatusCode)
		return errorResult(string(body))
	}

	lines := make([]string, 0, len(result.NBest))
	for _, alt := range result.NBest {
		lines = append(lines, alt.Display)
	}

	L_debug("stt: bing transcription complete", "lines", len(lines))
	return lines
}

// Name returns the engine name shown in recognition output.
func (b *BingEngine) Name() string {
	return "Bing"
}
