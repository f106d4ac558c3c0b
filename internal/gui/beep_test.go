package gui

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestSquareWaveAlternates(t *testing.T) {
	s := &squareWave{}
	buf := make([]byte, samplesPerHalfWave*2*bytesPerSample)

	n, err := s.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, len(buf), n)

	firstSample := int16(buf[0]) | int16(buf[1])<<8
	assert.Equal(t, int16(toneAmplitude), firstSample)

	// Both channels carry the same sample.
	firstRight := int16(buf[2]) | int16(buf[3])<<8
	assert.Equal(t, firstSample, firstRight)

	// After half a wave period the sign flips.
	offset := samplesPerHalfWave * bytesPerSample
	flipped := int16(buf[offset]) | int16(buf[offset+1])<<8
	assert.Equal(t, int16(-toneAmplitude), flipped)
}

func TestSquareWaveKeepsPhaseAcrossReads(t *testing.T) {
	s := &squareWave{}
	buf := make([]byte, samplesPerHalfWave*bytesPerSample)

	_, err := s.Read(buf)
	assert.NoError(t, err)

	_, err = s.Read(buf)
	assert.NoError(t, err)

	// The second read starts in the negative half wave.
	sample := int16(buf[0]) | int16(buf[1])<<8
	assert.Equal(t, int16(-toneAmplitude), sample)
}

func TestKeypadMapping(t *testing.T) {
	assert.Len(t, keypad, 16)

	seen := map[byte]bool{}
	for _, pad := range keypad {
		assert.True(t, pad < 16)
		assert.False(t, seen[pad])
		seen[pad] = true
	}
}
