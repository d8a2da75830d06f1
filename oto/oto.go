//go:build cgo

// Package oto plays audio through github.com/ebitengine/oto.
package oto

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/goodmultitracks/multitrack"
)

const (
	sampleRate = 44100
	bufferSize = 20 * time.Millisecond
)

type (
	OtoContext struct {
		context *oto.Context
	}

	// OtoOutput feeds a player through a pipe, so WriteAudio blocks until
	// the player has consumed the previous buffer.
	OtoOutput struct {
		player    *oto.Player
		w         *io.PipeWriter
		tmpBuffer []byte
	}
)

func NewContext() (*OtoContext, error) {
	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &OtoContext{context: context}, nil
}

func (c *OtoContext) SampleRate() int { return sampleRate }

func (c *OtoContext) Output() multitrack.AudioSink {
	r, w := io.Pipe()
	player := c.context.NewPlayer(r)
	player.Play()
	return &OtoOutput{player: player, w: w}
}

func (c *OtoContext) Close() error {
	if err := c.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

func (o *OtoOutput) WriteAudio(buffer []float32) error {
	o.tmpBuffer = o.tmpBuffer[:0]
	for _, v := range buffer {
		o.tmpBuffer = binary.LittleEndian.AppendUint32(o.tmpBuffer, math.Float32bits(v))
	}
	if _, err := o.w.Write(o.tmpBuffer); err != nil {
		return fmt.Errorf("cannot write to player: %w", err)
	}
	return nil
}

func (o *OtoOutput) Close() error {
	o.player.Pause()
	if err := o.w.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}
