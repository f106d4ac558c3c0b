package chip8

import (
	"fmt"

	"github.com/retroenv/retrogolib/log"
)

// execute decodes and executes one instruction word. Instructions that are
// not jump-like advance the program counter themselves at the end of their
// execution, jumps, calls and returns set it directly.
func (c *Chip8) execute(opcode uint16) error {
	x := byte(opcode >> 8 & 0x0F)
	y := byte(opcode >> 4 & 0x0F)
	n := byte(opcode & 0x000F)
	kk := byte(opcode)
	nnn := opcode & 0x0FFF

	switch opcode >> 12 {
	case 0x0:
		return c.executeSystem(opcode)

	case 0x1: // JP addr
		c.pc = nnn

	case 0x2: // CALL addr
		if err := c.push(c.pc); err != nil {
			return err
		}
		c.pc = nnn

	case 0x3: // SE Vx, byte
		c.advance()
		if c.v[x] == kk {
			c.advance()
		}

	case 0x4: // SNE Vx, byte
		c.advance()
		if c.v[x] != kk {
			c.advance()
		}

	case 0x5: // SE Vx, Vy
		if n != 0 {
			c.unknownOpcode(opcode)
			return nil
		}
		c.advance()
		if c.v[x] == c.v[y] {
			c.advance()
		}

	case 0x6: // LD Vx, byte
		c.v[x] = kk
		c.advance()

	case 0x7: // ADD Vx, byte
		c.v[x] += kk
		c.advance()

	case 0x8:
		return c.executeALU(opcode, x, y)

	case 0x9: // SNE Vx, Vy
		if n != 0 {
			c.unknownOpcode(opcode)
			return nil
		}
		c.advance()
		if c.v[x] != c.v[y] {
			c.advance()
		}

	case 0xA: // LD I, addr
		c.i = nnn
		c.advance()

	case 0xB: // JP V0, addr
		c.pc = nnn + uint16(c.v[0])

	case 0xC: // RND Vx, byte
		c.v[x] = byte(c.rand.Intn(256)) & kk
		c.advance()

	case 0xD: // DRW Vx, Vy, nibble
		if err := c.drawSprite(x, y, n); err != nil {
			return err
		}
		c.advance()

	case 0xE:
		c.executeKeySkip(opcode, x, kk)

	case 0xF:
		return c.executeMisc(opcode, x, kk)
	}
	return nil
}

// executeSystem handles the 0x0 instruction family.
func (c *Chip8) executeSystem(opcode uint16) error {
	switch opcode & 0x000F {
	case 0x0: // CLS
		c.pixels = [DisplayWidth * DisplayHeight]byte{}
		c.displayDirty = true
		c.advance()

	case 0xE: // RET
		address, err := c.pop()
		if err != nil {
			return err
		}
		// The call pushed the address of the call instruction itself,
		// advancing lands on the instruction after it.
		c.pc = address
		c.advance()

	default:
		c.unknownOpcode(opcode)
	}
	return nil
}

// executeALU handles the 0x8 instruction family of register-to-register
// operations. VF is overwritten as the carry/borrow flag by the arithmetic
// and shift instructions. The flag is written before the result, an
// instruction targeting VF itself ends up with the result, not the flag.
func (c *Chip8) executeALU(opcode uint16, x, y byte) error {
	vx, vy := c.v[x], c.v[y]

	switch opcode & 0x000F {
	case 0x0: // LD Vx, Vy
		c.v[x] = vy

	case 0x1: // OR Vx, Vy
		c.v[x] = vx | vy

	case 0x2: // AND Vx, Vy
		c.v[x] = vx & vy

	case 0x3: // XOR Vx, Vy
		c.v[x] = vx ^ vy

	case 0x4: // ADD Vx, Vy
		sum := uint16(vx) + uint16(vy)
		var carry byte
		if sum > 0xFF {
			carry = 1
		}
		c.setFlag(carry)
		c.v[x] = byte(sum)

	case 0x5: // SUB Vx, Vy
		var noBorrow byte
		if vx > vy {
			noBorrow = 1
		}
		c.setFlag(noBorrow)
		c.v[x] = vx - vy

	case 0x6: // SHR Vx
		c.setFlag(vx >> 7)
		c.v[x] = vx >> 1

	case 0x7: // SUBN Vx, Vy
		var noBorrow byte
		if vy > vx {
			noBorrow = 1
		}
		c.setFlag(noBorrow)
		c.v[x] = vy - vx

	case 0xE: // SHL Vx
		c.setFlag(vx & 0x01)
		c.v[x] = vx << 1

	default:
		c.unknownOpcode(opcode)
		return nil
	}
	c.advance()
	return nil
}

// executeKeySkip handles the 0xE instruction family of keypad skips.
func (c *Chip8) executeKeySkip(opcode uint16, x, kk byte) {
	pressed := c.v[x] < KeyCount && c.keys[c.v[x]]

	switch kk {
	case 0x9E: // SKP Vx
		c.advance()
		if pressed {
			c.advance()
		}

	case 0xA1: // SKNP Vx
		c.advance()
		if !pressed {
			c.advance()
		}

	default:
		c.unknownOpcode(opcode)
	}
}

// executeMisc handles the 0xF instruction family of timer, key wait, index
// register and bulk memory instructions.
func (c *Chip8) executeMisc(opcode uint16, x, kk byte) error {
	switch kk {
	case 0x07: // LD Vx, DT
		c.v[x] = c.delayTimer

	case 0x0A: // LD Vx, K
		// Suspend until ResolveKey writes the key into the target
		// register and advances past this instruction.
		c.status = statusWaitingForKey
		c.keyRegister = x
		return nil

	case 0x15: // LD DT, Vx
		c.delayTimer = c.v[x]

	case 0x18: // LD ST, Vx
		c.soundTimer = c.v[x]

	case 0x1E: // ADD I, Vx
		c.i += uint16(c.v[x])

	case 0x29: // LD F, Vx
		c.i = uint16(c.v[x]) * fontGlyphSize

	case 0x33: // LD B, Vx
		if int(c.i)+2 >= MemorySize {
			return fmt.Errorf("storing BCD digits at %04X: %w",
				c.i, ErrAddressOutOfRange)
		}
		c.memory[c.i] = c.v[x] / 100
		c.memory[c.i+1] = c.v[x] / 10 % 10
		c.memory[c.i+2] = c.v[x] % 10

	case 0x55: // LD [I], Vx
		if int(c.i)+int(x) >= MemorySize {
			return fmt.Errorf("storing registers at %04X: %w",
				c.i, ErrAddressOutOfRange)
		}
		copy(c.memory[c.i:], c.v[:x+1])

	case 0x65: // LD Vx, [I]
		if int(c.i)+int(x) >= MemorySize {
			return fmt.Errorf("loading registers at %04X: %w",
				c.i, ErrAddressOutOfRange)
		}
		copy(c.v[:x+1], c.memory[c.i:])

	default:
		c.unknownOpcode(opcode)
		return nil
	}
	c.advance()
	return nil
}

// drawSprite XORs an 8 pixel wide, n row sprite read from memory at the
// index register into the display buffer at coordinate (Vx, Vy).
// Pixels outside the display bounds are discarded, not wrapped.
// VF is set to 1 if any drawn pixel flips a set pixel back to unset.
func (c *Chip8) drawSprite(xReg, yReg, rows byte) error {
	if int(c.i)+int(rows) > MemorySize {
		return fmt.Errorf("reading sprite data at %04X: %w",
			c.i, ErrAddressOutOfRange)
	}

	originX := int(c.v[xReg])
	originY := int(c.v[yReg])
	c.setFlag(0)

	for row := range int(rows) {
		py := originY + row
		if py >= DisplayHeight {
			continue
		}
		bits := c.memory[c.i+uint16(row)]

		for bit := range 8 {
			if bits&(0x80>>bit) == 0 {
				continue
			}
			px := originX + bit
			if px >= DisplayWidth {
				continue
			}
			index := px + py*DisplayWidth
			if c.pixels[index] == 1 {
				c.setFlag(1)
			}
			c.pixels[index] ^= 1
		}
	}

	c.displayDirty = true
	return nil
}

// unknownOpcode reports an instruction word that does not decode to any
// known instruction and advances past it. A malformed ROM degrades
// gracefully instead of ending the session.
func (c *Chip8) unknownOpcode(opcode uint16) {
	c.logger.Warn("Unknown opcode, treating as no-op",
		log.Hex("pc", c.pc),
		log.Hex("opcode", opcode))
	c.advance()
}
