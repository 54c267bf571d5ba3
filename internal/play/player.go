package play

import (
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Player is the part of *oto.Player a Session drives.
type Player interface {
	Play()
	Pause()
	IsPlaying() bool
	BufferedSize() int
	Seek(offset int64, whence int) (int64, error)
	Err() error
	Close() error
}

// Output creates players on an audio device.
type Output interface {
	NewPlayer(r io.Reader) Player
}

type otoOutput struct {
	ctx *oto.Context
}

func (o *otoOutput) NewPlayer(r io.Reader) Player {
	return o.ctx.NewPlayer(r)
}

// oto allows a single context per process.
var (
	contextMu   sync.Mutex
	sharedCtx   *oto.Context
	contextRate int
)

// openOutput returns the process-wide oto context, creating it on first use.
func openOutput(sampleRate int) (Output, error) {
	contextMu.Lock()
	defer contextMu.Unlock()

	if sharedCtx != nil {
		if contextRate != sampleRate {
			return nil, fmt.Errorf("audio output already open at %d Hz, cannot reopen at %d Hz", contextRate, sampleRate)
		}
		return &otoOutput{ctx: sharedCtx}, nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	sharedCtx = ctx
	contextRate = sampleRate
	return &otoOutput{ctx: ctx}, nil
}
