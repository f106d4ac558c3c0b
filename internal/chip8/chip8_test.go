package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func newTestMachine(t *testing.T) *Chip8 {
	t.Helper()
	return New(log.NewTestLogger(t))
}

// writeOpcode stores an instruction word at the program counter.
func writeOpcode(c *Chip8, opcode uint16) {
	c.memory[c.pc] = byte(opcode >> 8)
	c.memory[c.pc+1] = byte(opcode)
}

// step writes an instruction word at the program counter and executes one cycle.
func step(t *testing.T, c *Chip8, opcode uint16) {
	t.Helper()
	writeOpcode(c, opcode)
	assert.NoError(t, c.Step())
}

func TestNewInitializesMachine(t *testing.T) {
	c := newTestMachine(t)

	assert.Equal(t, uint16(ProgramStart), c.pc)
	assert.Equal(t, byte(0), c.sp)
	assert.False(t, c.WaitingForKey())

	// Built-in font written to the reserved low memory region.
	assert.Equal(t, byte(0xF0), c.memory[0])
	assert.Equal(t, byte(0x80), c.memory[79])
	assert.Equal(t, byte(0x00), c.memory[80])
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		offset  uint16
		data    []byte
		wantErr bool
	}{
		{name: "program at start", offset: ProgramStart, data: []byte{0x12, 0x00}},
		{name: "fits exactly", offset: MemorySize - 2, data: []byte{0xAA, 0xBB}},
		{name: "one byte too large", offset: MemorySize - 1, data: []byte{0xAA, 0xBB}, wantErr: true},
		{name: "offset out of range", offset: MemorySize, data: []byte{0xAA}, wantErr: true},
		{name: "empty data", offset: ProgramStart, data: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestMachine(t)
			err := c.Load(tt.data, tt.offset)

			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, ErrLoadOverflow))
				return
			}

			assert.NoError(t, err)
			for i, b := range tt.data {
				assert.Equal(t, b, c.memory[int(tt.offset)+i])
			}
		})
	}
}

func TestLoadRejectsWithoutPartialWrite(t *testing.T) {
	c := newTestMachine(t)

	err := c.Load([]byte{0x11, 0x22, 0x33}, MemorySize-2)
	assert.True(t, errors.Is(err, ErrLoadOverflow))
	assert.Equal(t, byte(0), c.memory[MemorySize-2])
	assert.Equal(t, byte(0), c.memory[MemorySize-1])
}

func TestStepFetchOutOfRange(t *testing.T) {
	c := newTestMachine(t)
	c.pc = MemorySize - 1

	err := c.Step()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrAddressOutOfRange))
}

func TestLoadAndStepSetsIndexRegister(t *testing.T) {
	c := newTestMachine(t)

	assert.NoError(t, c.Load([]byte{0xA1, 0x23}, 0))
	c.pc = 0

	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x123), c.i)
	assert.Equal(t, uint16(2), c.pc)
}

func TestLoadAndStepSetsRegister(t *testing.T) {
	c := newTestMachine(t)
	c.v[0] = 5

	step(t, c, 0x600A)
	assert.Equal(t, byte(10), c.v[0])
	assert.Equal(t, uint16(ProgramStart+2), c.pc)
}

func TestTimersFloorAtZero(t *testing.T) {
	c := newTestMachine(t)
	c.delayTimer = 2

	step(t, c, 0xA000)
	assert.Equal(t, byte(1), c.delayTimer)

	step(t, c, 0xA000)
	assert.Equal(t, byte(0), c.delayTimer)

	step(t, c, 0xA000)
	assert.Equal(t, byte(0), c.delayTimer)
}

func TestBeepNotification(t *testing.T) {
	c := newTestMachine(t)
	beeps := 0
	c.SetBeepHandler(func() { beeps++ })
	c.soundTimer = 2

	step(t, c, 0xA000)
	assert.Equal(t, 0, beeps)
	assert.True(t, c.SoundActive())

	step(t, c, 0xA000)
	assert.Equal(t, 1, beeps)
	assert.False(t, c.SoundActive())

	step(t, c, 0xA000)
	assert.Equal(t, 1, beeps)
}

func TestWaitForKeySuspendsMachine(t *testing.T) {
	c := newTestMachine(t)
	c.delayTimer = 6

	step(t, c, 0xF30A)
	assert.True(t, c.WaitingForKey())
	assert.Equal(t, uint16(ProgramStart), c.pc)
	// The suspending cycle itself still updates the timers.
	assert.Equal(t, byte(5), c.delayTimer)

	// Suspended steps are complete no-ops, including the timers.
	assert.NoError(t, c.Step())
	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(ProgramStart), c.pc)
	assert.Equal(t, byte(5), c.delayTimer)

	assert.NoError(t, c.ResolveKey(0xB))
	assert.False(t, c.WaitingForKey())
	assert.Equal(t, byte(0xB), c.v[3])
	assert.Equal(t, uint16(ProgramStart+2), c.pc)
}

func TestResolveKeyWhileRunning(t *testing.T) {
	c := newTestMachine(t)

	err := c.ResolveKey(0x1)
	assert.True(t, errors.Is(err, ErrNotWaitingForKey))
	assert.Equal(t, uint16(ProgramStart), c.pc)
}

func TestDisplayUpdatedConsumesFlag(t *testing.T) {
	c := newTestMachine(t)
	assert.False(t, c.DisplayUpdated())

	step(t, c, 0x00E0)
	assert.True(t, c.DisplayUpdated())
	assert.False(t, c.DisplayUpdated())
}

func TestProgramCounterStaysEven(t *testing.T) {
	opcodes := []uint16{
		0x6005, 0x7001, 0x3006, 0xA123, 0xC00F,
		0x8120, 0xE19E, 0xFFFF, 0x1300,
	}

	c := newTestMachine(t)
	for _, opcode := range opcodes {
		writeOpcode(c, opcode)
		assert.NoError(t, c.Step())
		assert.Equal(t, uint16(0), c.pc%2)
	}
}

func TestSetKeyIgnoresOutOfRange(t *testing.T) {
	c := newTestMachine(t)
	c.SetKey(0x20, true)

	for _, pressed := range c.keys {
		assert.False(t, pressed)
	}
}

func TestPixelsAliasesDisplayBuffer(t *testing.T) {
	c := newTestMachine(t)
	pixels := c.Pixels()
	assert.Len(t, pixels, DisplayWidth*DisplayHeight)

	c.pixels[5] = 1
	assert.Equal(t, byte(1), pixels[5])
}
