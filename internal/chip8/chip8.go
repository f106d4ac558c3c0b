// Package chip8 implements the CHIP-8 virtual machine core.
// CHIP-8 is an interpreted programming language from the 1970s designed for simple games.
// This package executes CHIP-8 programs by fetching, decoding and executing
// 2 byte instruction words from a 4KB memory space.
package chip8

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/retroenv/retrogolib/log"
)

// CHIP-8 memory layout constants.
//
// CHIP-8 memory map (4KB total):
//
//	0x000-0x1FF: Interpreter reserved area, holds the built-in font data
//	0x200-0xFFF: User program space (3584 bytes)
//
// The display buffer, stack and registers are maintained separately from the
// 4KB main memory address space.
const (
	// MemorySize is the size of the CHIP-8 memory address space in bytes.
	MemorySize = 4096

	// ProgramStart is the memory address where CHIP-8 programs begin execution.
	// CHIP-8 programs are loaded at address 0x200 in the virtual machine's memory space,
	// but stored starting at offset 0x0 in ROM files.
	ProgramStart = 0x200

	// DisplayWidth is the width of the monochrome display in pixels.
	DisplayWidth = 64

	// DisplayHeight is the height of the monochrome display in pixels.
	DisplayHeight = 32

	// KeyCount is the number of keys on the hex keypad.
	KeyCount = 16

	registerCount = 16
	stackSize     = 16
	opcodeSize    = 2

	// fontGlyphSize is the size of one built-in font glyph in bytes.
	fontGlyphSize = 5

	// flagRegister is the index of register VF. VF is a general purpose
	// register that ALU instructions additionally overwrite as the
	// carry/borrow flag and that DRW overwrites as the collision flag.
	flagRegister = 0xF
)

// status models the run state of the machine. Waiting for a key is explicit
// machine state rather than blocking I/O, a suspended machine treats Step
// as a no-op until ResolveKey is called.
type status int

const (
	statusRunning status = iota
	statusWaitingForKey
)

// Chip8 holds the complete state of one emulated CHIP-8 machine.
// An instance is owned by a single control loop, concurrent calls
// have to be serialized by the caller.
type Chip8 struct {
	logger *log.Logger
	rand   *rand.Rand

	memory [MemorySize]byte
	v      [registerCount]byte
	i      uint16
	pc     uint16

	stack [stackSize]uint16
	sp    byte

	delayTimer byte
	soundTimer byte

	// pixels is the 64x32 monochrome display buffer, row-major,
	// one byte per pixel holding 0 or 1.
	pixels [DisplayWidth * DisplayHeight]byte
	keys   [KeyCount]bool

	status      status
	keyRegister byte // target register of a pending key wait

	displayDirty bool
	trace        bool
	beep         func()
}

// New returns a new machine with zeroed registers, the built-in font table
// written to the reserved low memory region and the program counter set to
// the program start address.
func New(logger *log.Logger) *Chip8 {
	c := &Chip8{
		logger: logger,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
		pc:     ProgramStart,
	}
	copy(c.memory[:], fontSet[:])
	return c
}

// Load copies data into memory starting at the given offset.
// The whole write is rejected if it would exceed the memory bounds,
// no partial write occurs. Load does not reset any other machine state.
func (c *Chip8) Load(data []byte, offset uint16) error {
	if int(offset)+len(data) > MemorySize {
		return fmt.Errorf("loading %d bytes at offset %04X: %w",
			len(data), offset, ErrLoadOverflow)
	}
	copy(c.memory[offset:], data)
	return nil
}

// Step executes one full machine cycle: fetch, decode, execute and timer
// update. While the machine waits for a key press the whole cycle is
// suspended and Step returns immediately.
//
// A returned error wrapping ErrAddressOutOfRange, ErrStackOverflow or
// ErrStackUnderflow is fatal for the run, the caller has to stop stepping.
// Unknown instruction words are not errors, they are reported through the
// logger and executed as advance-only no-ops.
func (c *Chip8) Step() error {
	if c.status == statusWaitingForKey {
		return nil
	}

	opcode, err := c.fetch()
	if err != nil {
		return err
	}

	if c.trace {
		c.logger.Debug("Executing instruction",
			log.Hex("pc", c.pc),
			log.String("instruction", disassemble(opcode)))
	}

	if err := c.execute(opcode); err != nil {
		return err
	}

	c.updateTimers()
	return nil
}

// fetch reads the big-endian instruction word at the program counter.
func (c *Chip8) fetch() (uint16, error) {
	if int(c.pc)+1 >= MemorySize {
		return 0, fmt.Errorf("fetching instruction at %04X: %w",
			c.pc, ErrAddressOutOfRange)
	}
	return uint16(c.memory[c.pc])<<8 | uint16(c.memory[c.pc+1]), nil
}

// advance moves the program counter to the next instruction. Conditional
// skips advance twice, every advance is an independent +2 so that the
// program counter always stays a multiple of the opcode size.
func (c *Chip8) advance() {
	c.pc += opcodeSize
}

// updateTimers decrements the delay and sound timers once per cycle,
// flooring at 0. The beep notification fires when the sound timer
// transitions from 1 to 0.
func (c *Chip8) updateTimers() {
	if c.delayTimer > 0 {
		c.delayTimer--
	}
	if c.soundTimer > 0 {
		if c.soundTimer == 1 && c.beep != nil {
			c.beep()
		}
		c.soundTimer--
	}
}

// push puts an address onto the call stack.
func (c *Chip8) push(address uint16) error {
	if c.sp >= stackSize-1 {
		return fmt.Errorf("call at %04X exceeds %d nested calls: %w",
			c.pc, stackSize-1, ErrStackOverflow)
	}
	c.sp++
	c.stack[c.sp] = address
	return nil
}

// pop removes the top address from the call stack.
func (c *Chip8) pop() (uint16, error) {
	if c.sp == 0 {
		return 0, fmt.Errorf("return at %04X with empty stack: %w",
			c.pc, ErrStackUnderflow)
	}
	address := c.stack[c.sp]
	c.sp--
	return address, nil
}

// flag returns the value of the VF flag register.
func (c *Chip8) flag() byte {
	return c.v[flagRegister]
}

// setFlag sets the VF flag register. VF stays readable and writable as an
// ordinary register by all other instructions.
func (c *Chip8) setFlag(value byte) {
	c.v[flagRegister] = value
}

// ResolveKey completes a pending wait-for-key instruction: the key value is
// written into the instruction's target register, the machine resumes and
// the program counter advances past the instruction. Calling ResolveKey
// while the machine is not waiting is reported as misuse.
func (c *Chip8) ResolveKey(value byte) error {
	if c.status != statusWaitingForKey {
		return ErrNotWaitingForKey
	}
	c.v[c.keyRegister] = value
	c.status = statusRunning
	c.advance()
	return nil
}

// WaitingForKey reports whether the machine is suspended on a
// wait-for-key instruction.
func (c *Chip8) WaitingForKey() bool {
	return c.status == statusWaitingForKey
}

// SetKey records the pressed state of one hex keypad key (0x0-0xF).
// Key state is only ever read by the machine, translating host input
// events onto the keypad is the caller's responsibility.
func (c *Chip8) SetKey(key byte, pressed bool) {
	if key < KeyCount {
		c.keys[key] = pressed
	}
}

// Pixels returns the display buffer, row-major with one byte per pixel
// holding 0 or 1, index = x + y*DisplayWidth. The returned slice aliases
// machine state and must be treated as read-only.
func (c *Chip8) Pixels() []byte {
	return c.pixels[:]
}

// DisplayUpdated reports whether a draw instruction changed the display
// buffer since the last call and clears the flag.
func (c *Chip8) DisplayUpdated() bool {
	dirty := c.displayDirty
	c.displayDirty = false
	return dirty
}

// SoundActive reports whether the sound timer is running, the tone should
// play for as long as it is.
func (c *Chip8) SoundActive() bool {
	return c.soundTimer > 0
}

// SetBeepHandler registers a function that is called whenever the sound
// timer runs out. The handler must not block.
func (c *Chip8) SetBeepHandler(beep func()) {
	c.beep = beep
}

// SetTrace enables logging of every executed instruction at debug level.
func (c *Chip8) SetTrace(trace bool) {
	c.trace = trace
}
