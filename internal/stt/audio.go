package stt

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pion/opus"
	"github.com/pion/opus/pkg/oggreader"
	"github.com/zeozeozeo/gomplerate"

	. "github.com/echobridge/voicerecog/internal/logging"
)

const (
	// TargetSampleRate is the rate every provider payload is resampled to.
	TargetSampleRate = 16000

	maxFrameSize = 5760 // Max Opus frame size (120ms at 48kHz)
)

// DecodePCM16k converts an audio file to raw s16le mono PCM at 16 kHz.
// For OGG/Opus files (the usual voice-note container), tries pure Go
// decoding when ffmpeg is absent; everything else needs ffmpeg.
func DecodePCM16k(filePath string) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	// OGG/Opus: prefer ffmpeg when installed, the pure Go decoder has
	// limited codec support and panics on some files
	if ext == ".ogg" || ext == ".opus" || ext == ".oga" {
		if ffmpegAvailable() {
			L_debug("stt: using ffmpeg for OGG/Opus", "file", filePath)
			return convertWithFFmpeg(filePath)
		}
		pcm, err := decodeOggOpusSafe(filePath)
		if err != nil {
			return nil, fmt.Errorf("OGG decoding failed (%v) - install ffmpeg for reliable audio conversion", err)
		}
		return pcm, nil
	}

	// Other formats: ffmpeg only
	if ffmpegAvailable() {
		L_debug("stt: using ffmpeg for non-OGG format", "file", filePath, "ext", ext)
		return convertWithFFmpeg(filePath)
	}

	return nil, fmt.Errorf("unsupported audio format %s (install ffmpeg for non-OGG files)", ext)
}

// decodeOggOpusSafe wraps decodeOggOpus with panic recovery.
// The pion/opus library can panic on malformed files.
func decodeOggOpusSafe(filePath string) (pcm []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			L_warn("stt: pure Go decoder panicked, recovered", "panic", r)
			err = fmt.Errorf("decoder panic: %v", r)
			pcm = nil
		}
	}()
	return decodeOggOpus(filePath)
}

// decodeOggOpus decodes OGG/Opus to 16 kHz mono s16le PCM using pure Go.
func decodeOggOpus(filePath string) ([]byte, error) {
	L_debug("stt: decoding OGG/Opus", "file", filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close()

	ogg, header, err := oggreader.NewWith(file)
	if err != nil {
		return nil, fmt.Errorf("parse OGG container: %w", err)
	}

	sampleRate := int(header.SampleRate)
	channels := int(header.Channels)
	L_debug("stt: OGG header", "sampleRate", sampleRate, "channels", channels)

	decoder := opus.NewDecoder()
	outBuf := make([]byte, maxFrameSize*channels*2) // *2 for 16-bit samples

	var allSamples []int16
	for {
		segments, _, err := ogg.ParseNextPage()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse OGG page: %w", err)
		}

		// Each segment is an Opus packet
		for _, segment := range segments {
			if len(segment) == 0 {
				continue
			}

			_, isStereo, err := decoder.Decode(segment, outBuf)
			if err != nil {
				L_trace("stt: skipping packet", "error", err, "len", len(segment))
				continue
			}

			actualChannels := 1
			if isStereo {
				actualChannels = 2
			}

			samples := bytesToInt16(outBuf, actualChannels)
			allSamples = append(allSamples, samples...)
		}
	}

	if len(allSamples) == 0 {
		return nil, fmt.Errorf("no audio samples decoded from %s", filePath)
	}

	L_debug("stt: decoded samples", "count", len(allSamples), "sampleRate", sampleRate)

	if channels > 1 {
		allSamples = toMono(allSamples, channels)
	}

	if sampleRate != TargetSampleRate {
		L_debug("stt: resampling", "from", sampleRate, "to", TargetSampleRate)
		allSamples = resampleInt16(allSamples, sampleRate, TargetSampleRate)
	}

	return int16ToBytes(allSamples), nil
}

// bytesToInt16 converts a byte buffer to int16 samples (little-endian).
func bytesToInt16(buf []byte, channels int) []int16 {
	numSamples := len(buf) / 2
	samples := make([]int16, 0, numSamples)

	for i := 0; i < len(buf)-1; i += 2 {
		sample := int16(binary.LittleEndian.Uint16(buf[i : i+2])) // #nosec G115 - safe: uint16 to int16 for audio samples
		// Stop at trailing zeros (unused buffer space)
		if sample == 0 && i > 0 {
			allZero := true
			for j := i; j < len(buf)-1; j += 2 {
				if binary.LittleEndian.Uint16(buf[j:j+2]) != 0 {
					allZero = false
					break
				}
			}
			if allZero {
				break
			}
		}
		samples = append(samples, sample)
	}

	return samples
}

// toMono converts multi-channel audio to mono by averaging channels.
func toMono(samples []int16, channels int) []int16 {
	if channels == 1 {
		return samples
	}

	mono := make([]int16, len(samples)/channels)
	for i := 0; i < len(mono); i++ {
		var sum int32
		for ch := 0; ch < channels; ch++ {
			sum += int32(samples[i*channels+ch])
		}
		mono[i] = int16(sum / int32(channels)) // #nosec G115 - safe: channels is small (1-8)
	}
	return mono
}

// resampleInt16 converts audio from one sample rate to another using gomplerate.
func resampleInt16(samples []int16, fromRate, toRate int) []int16 {
	if fromRate == toRate {
		return samples
	}

	resampler, err := gomplerate.NewResampler(1, fromRate, toRate)
	if err != nil {
		L_warn("stt: resampler creation failed, skipping resample", "error", err)
		return samples
	}

	return resampler.ResampleInt16(samples)
}

// int16ToBytes serializes samples as little-endian s16le PCM.
func int16ToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s)) // #nosec G115 - safe: int16 to uint16 for audio samples
	}
	return buf
}

// ffmpegAvailable checks if ffmpeg is installed.
func ffmpegAvailable() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// convertWithFFmpeg uses ffmpeg to convert audio to 16 kHz mono s16le PCM.
func convertWithFFmpeg(inputPath string) ([]byte, error) {
	tmpFile, err := os.CreateTemp("", "voicerecog-*.raw")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	// #nosec G204 - inputPath is from internal file operations, not user input
	cmd := exec.Command("ffmpeg",
		"-i", inputPath,
		"-ar", fmt.Sprintf("%d", TargetSampleRate),
		"-ac", "1",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-y",
		tmpPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		L_debug("stt: ffmpeg output", "output", string(output))
		return nil, fmt.Errorf("ffmpeg conversion failed: %w", err)
	}

	rawData, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read converted audio: %w", err)
	}

	return rawData, nil
}
