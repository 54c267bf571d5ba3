package play

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hajimehoshi/go-mp3"
)

var (
	ErrSourceNotFound = errors.New("audio source not found")
	ErrUndecodable    = errors.New("audio source cannot be decoded")
)

// Decoder turns a file into interleaved stereo signed 16-bit LE PCM at
// sampleRate.
type Decoder func(source string, sampleRate int) ([]byte, error)

// DecodeFile decodes mp3 natively when the rates match and hands everything
// else to ffmpeg.
func DecodeFile(source string, sampleRate int) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(source), ".mp3") {
		pcm, err := decodeMP3(source, sampleRate)
		if err == nil {
			return pcm, nil
		}
		if !errors.Is(err, errRateMismatch) {
			return nil, err
		}
		slog.Debug("MP3 sample rate differs from output, resampling with ffmpeg", "source", source)
	}
	return decodeFFmpeg(source, sampleRate)
}

var errRateMismatch = errors.New("sample rate mismatch")

func decodeMP3(source string, sampleRate int) ([]byte, error) {
	f, err := os.Open(source)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if decoder.SampleRate() != sampleRate {
		return nil, errRateMismatch
	}

	// go-mp3 always yields stereo s16le
	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	return alignFrames(pcm), nil
}

func decodeFFmpeg(source string, sampleRate int) ([]byte, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg is required for %s files", ErrUndecodable, filepath.Ext(source))
	}

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", strconv.Itoa(channelCount),
		"-ar", strconv.Itoa(sampleRate),
		"-",
	}
	slog.Debug("Decoding with ffmpeg", "source", source, "args", strings.Join(args, " "))

	var stderr bytes.Buffer
	cmd := exec.Command("ffmpeg", args...)
	cmd.Stderr = &stderr

	pcm, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrUndecodable, err, strings.TrimSpace(stderr.String()))
	}
	return alignFrames(pcm), nil
}

func alignFrames(pcm []byte) []byte {
	return pcm[:len(pcm)/frameSize*frameSize]
}
