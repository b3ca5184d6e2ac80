package main

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/gabriel-vasile/mimetype"

	"github.com/echobridge/voicerecog/internal/config"
	. "github.com/echobridge/voicerecog/internal/logging"
	"github.com/echobridge/voicerecog/internal/stt"
)

const version = "0.1.0"

type recognizeCmd struct {
	File   string `arg:"" type:"existingfile" help:"Audio file to recognize."`
	Lang   string `short:"l" help:"Language hint (defaults to the config language)."`
	Config string `short:"c" help:"Config file path (defaults to ~/.voicerecog/config.yaml)."`
}

func (r *recognizeCmd) Run() error {
	cfg, err := config.Load(r.Config)
	if err != nil {
		return err
	}

	lang := r.Lang
	if lang == "" {
		lang = cfg.Language
	}

	// Sniff magic bytes before doing any provider work
	mt, err := mimetype.DetectFile(r.File)
	if err != nil {
		return fmt.Errorf("detect file type: %w", err)
	}
	if !isAudioMIME(mt.String()) {
		return fmt.Errorf("%s does not look like an audio file (detected %s)", r.File, mt)
	}

	engines, err := stt.EnginesFromConfig(cfg.SpeechAPI)
	if err != nil {
		return err
	}
	if len(engines) == 0 {
		return fmt.Errorf("no speech engines configured in speech_api - run 'voicerecog config init'")
	}

	dispatcher := stt.NewDispatcher(engines...)
	entries, err := dispatcher.RecognizeAll(stt.FromPath(r.File), lang)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		fmt.Println(entry)
	}
	return nil
}

// isAudioMIME accepts anything the voice-note pipeline can decode: plain
// audio types plus the OGG/WebM containers some hosts label as video.
func isAudioMIME(mt string) bool {
	if strings.HasPrefix(mt, "audio/") {
		return true
	}
	switch mt {
	case "application/ogg", "video/ogg", "video/webm":
		return true
	}
	return false
}

type configInitCmd struct {
	Path string `help:"Destination path (defaults to ~/.voicerecog/config.yaml)."`
}

func (c *configInitCmd) Run() error {
	return config.WriteTemplate(c.Path)
}

type configCmd struct {
	Init configInitCmd `cmd:"" help:"Write a commented starter config file."`
}

type versionCmd struct{}

func (versionCmd) Run() error {
	fmt.Printf("voicerecog %s\n", version)
	return nil
}

var cli struct {
	Debug bool `help:"Enable debug logging."`

	Recognize recognizeCmd `cmd:"" help:"Recognize speech in an audio file."`
	Config    configCmd    `cmd:"" help:"Manage the config file."`
	Version   versionCmd   `cmd:"" help:"Print version."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("voicerecog"),
		kong.Description("Voice recognition middleware - send audio to speech providers and print transcripts."),
	)

	level := LevelInfo
	if cli.Debug {
		level = LevelDebug
	}
	Init(&Config{Level: level, TimeFormat: "15:04:05"})

	ctx.FatalIfErrorf(ctx.Run())
}
