package stt

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	. "github.com/echobridge/voicerecog/internal/logging"
)

const (
	baiduTokenURL = "https://openapi.baidu.com/oauth/2.0/token"
	baiduAPIURL   = "http://vop.baidu.com/server_api"

	// baiduCUID is the fixed client id the recognition endpoint expects.
	baiduCUID = "testing_user"
)

// baiduLangs is the fixed vocabulary of language codes Baidu accepts.
var baiduLangs = []string{"zh", "ct", "en"}

// BaiduConfig holds Baidu speech configuration.
// TokenURL, APIURL and HTTPClient are optional overrides for tests.
type BaiduConfig struct {
	APIKey     string
	SecretKey  string
	TokenURL   string
	APIURL     string
	HTTPClient *http.Client
}

// BaiduEngine implements speech recognition against Baidu's REST API.
// The OAuth access token is exchanged once at construction and never
// refreshed; when it expires, recognition calls simply start failing.
type BaiduEngine struct {
	apiURL      string
	accessToken string
	fullToken   map[string]interface{}
	channel     int
	client      *http.Client

	decodePCM func(string) ([]byte, error)
}

// NewBaiduEngine exchanges the key pair for an access token and returns a
// ready engine. Construction fails when the token exchange does.
func NewBaiduEngine(cfg BaiduConfig) (*BaiduEngine, error) {
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("baidu api_key/secret_key not configured")
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = baiduTokenURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = baiduAPIURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {cfg.APIKey},
		"client_secret": {cfg.SecretKey},
	}

	resp, err := client.PostForm(cfg.TokenURL, form)
	if err != nil {
		return nil, fmt.Errorf("baidu token exchange: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("baidu token exchange: read response: %w", err)
	}

	var token map[string]interface{}
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("baidu token exchange: parse response: %w", err)
	}

	accessToken, ok := token["access_token"].(string)
	if !ok || accessToken == "" {
		return nil, fmt.Errorf("baidu token exchange: no access_token in response")
	}

	L_info("stt: baidu engine initialized")

	return &BaiduEngine{
		apiURL:      cfg.APIURL,
		accessToken: accessToken,
		fullToken:   token,
		channel:     1,
		client:      client,
		decodePCM:   DecodePCM16k,
	}, nil
}

// Recognize converts the audio to transcript lines.
// Unsupported inputs and languages are rejected before any network call.
func (b *BaiduEngine) Recognize(in Input, lang string) []string {
	if !in.valid() {
		return errorResult(errInputShape)
	}
	if !baiduLangSupported(lang) {
		return errorResult("invalid language")
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

	payload := map[string]interface{}{
		"format":  "pcm",
		"rate":    TargetSampleRate,
		"channel": b.channel,
		"cuid":    baiduCUID,
		"token":   b.accessToken,
		"lan":     lang,
		"len":     len(pcm),
		"speech":  base64.StdEncoding.EncodeToString(pcm),
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return errorResult(err.Error())
	}

	req, err := http.NewRequestWithContext(context.Background(), "POST", b.apiURL, bytes.NewReader(jsonBody))
	if err != nil {
		return errorResult(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	L_debug("stt: sending to baidu", "lang", lang, "pcmBytes", len(pcm))

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
		ErrNo  int      `json:"err_no"`
		ErrMsg string   `json:"err_msg"`
		Result []string `json:"result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return errorResult(err.Error())
	}

	if result.ErrNo != 0 {
		L_debug("stt: baidu request failed", "err_no", result.ErrNo, "err_msg", result.ErrMsg)
		return errorResult(result.ErrMsg)
	}

	L_debug("stt: baidu transcription complete", "lines", len(result.Result))
	return result.Result
}

// Name returns the engine name shown in recognition output.
func (b *BaiduEngine) Name() string {
	return "Baidu"
}

func baiduLangSupported(lang string) bool {
	for _, l := range baiduLangs {
		if strings.EqualFold(lang, l) {
			return true
		}
	}
	return false
}
