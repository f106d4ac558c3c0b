package gui

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

const (
	sampleRate = 48000

	// toneFrequency is the pitch of the beep tone in Hz.
	toneFrequency = 440

	// toneAmplitude keeps the square wave well below full scale.
	toneAmplitude = 6000
)

// beeper plays the buzzer tone for as long as the machine's sound timer runs.
type beeper struct {
	player *audio.Player
}

// newBeeper creates the audio context and an endless square wave player,
// initially paused.
func newBeeper() (*beeper, error) {
	context := audio.NewContext(sampleRate)
	player, err := context.NewPlayer(&squareWave{})
	if err != nil {
		return nil, fmt.Errorf("creating audio player: %w", err)
	}
	return &beeper{player: player}, nil
}

// setPlaying starts or pauses the tone.
func (b *beeper) setPlaying(play bool) {
	switch {
	case play && !b.player.IsPlaying():
		b.player.Play()
	case !play && b.player.IsPlaying():
		b.player.Pause()
	}
}

// squareWave is an endless audio stream of a square wave tone,
// 16 bit little endian samples with two channels.
type squareWave struct {
	position int64
}

const (
	bytesPerSample = 4 // 2 channels x 2 bytes

	// samplesPerHalfWave is the number of samples after which the square
	// wave flips its sign.
	samplesPerHalfWave = sampleRate / toneFrequency / 2
)

// Read fills the buffer with square wave samples.
func (s *squareWave) Read(buf []byte) (int, error) {
	samples := len(buf) / bytesPerSample

	for i := range samples {
		value := int16(toneAmplitude)
		if (s.position/samplesPerHalfWave)%2 == 1 {
			value = -toneAmplitude
		}
		s.position++

		offset := i * bytesPerSample
		buf[offset] = byte(value)
		buf[offset+1] = byte(value >> 8)
		buf[offset+2] = byte(value)
		buf[offset+3] = byte(value >> 8)
	}

	return samples * bytesPerSample, nil
}
