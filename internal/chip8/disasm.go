package chip8

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// disassemble renders an instruction word as mnemonic and parameters for
// trace logging and diagnostics. Words that do not decode to any known
// instruction render as a data word directive.
func disassemble(opcode uint16) string {
	ins, ok := lookupInstruction(opcode)
	if !ok {
		return fmt.Sprintf(".word $%04X", opcode)
	}

	params := formatParams(ins.Name, opcode)
	if params == "" {
		return ins.Name
	}
	return fmt.Sprintf("%s %s", ins.Name, params)
}

// lookupInstruction identifies the instruction of an opcode word by matching
// the mask and value information of the instruction table.
func lookupInstruction(opcode uint16) (*chip8.Instruction, bool) {
	firstNibble := int(opcode >> 12)
	for _, op := range chip8.Opcodes[firstNibble] {
		if op.Info.Mask&opcode == op.Info.Value {
			if op.Instruction == nil {
				return nil, false
			}
			return op.Instruction, true
		}
	}
	return nil, false
}

// formatParams formats the parameters of an instruction word.
// Returns an empty string for instructions without parameters.
func formatParams(name string, opcode uint16) string {
	x := opcode >> 8 & 0x0F
	y := opcode >> 4 & 0x0F

	switch name {
	case chip8.ClsInst.Name, chip8.RetInst.Name:
		return ""
	case chip8.JpInst.Name:
		if opcode&0xF000 == 0xB000 {
			return fmt.Sprintf("V0, $%03X", opcode&0x0FFF)
		}
		return fmt.Sprintf("$%03X", opcode&0x0FFF)
	case chip8.CallInst.Name:
		return fmt.Sprintf("$%03X", opcode&0x0FFF)
	case chip8.SeInst.Name, chip8.SneInst.Name:
		if opcode&0xF000 == 0x5000 || opcode&0xF000 == 0x9000 {
			return fmt.Sprintf("V%X, V%X", x, y)
		}
		return fmt.Sprintf("V%X, $%02X", x, opcode&0x00FF)
	case chip8.LdInst.Name:
		return formatLoadParams(opcode, x, y)
	case chip8.AddInst.Name:
		return formatAddParams(opcode, x, y)
	case chip8.OrInst.Name, chip8.AndInst.Name, chip8.XorInst.Name,
		chip8.SubInst.Name, chip8.SubnInst.Name:
		return fmt.Sprintf("V%X, V%X", x, y)
	case chip8.ShrInst.Name, chip8.ShlInst.Name, chip8.SkpInst.Name, chip8.SknpInst.Name:
		return fmt.Sprintf("V%X", x)
	case chip8.RndInst.Name:
		return fmt.Sprintf("V%X, $%02X", x, opcode&0x00FF)
	case chip8.DrwInst.Name:
		return fmt.Sprintf("V%X, V%X, $%X", x, y, opcode&0x000F)
	}
	return ""
}

// formatLoadParams formats the parameters of the many LD variants.
func formatLoadParams(opcode, x, y uint16) string {
	switch opcode & 0xF000 {
	case 0x6000:
		return fmt.Sprintf("V%X, $%02X", x, opcode&0x00FF)
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", x, y)
	case 0xA000:
		return fmt.Sprintf("I, $%03X", opcode&0x0FFF)
	case 0xF000:
		switch opcode & 0x00FF {
		case 0x07:
			return fmt.Sprintf("V%X, DT", x)
		case 0x0A:
			return fmt.Sprintf("V%X, K", x)
		case 0x15:
			return fmt.Sprintf("DT, V%X", x)
		case 0x18:
			return fmt.Sprintf("ST, V%X", x)
		case 0x29:
			return fmt.Sprintf("F, V%X", x)
		case 0x33:
			return fmt.Sprintf("B, V%X", x)
		case 0x55:
			return fmt.Sprintf("[I], V%X", x)
		case 0x65:
			return fmt.Sprintf("V%X, [I]", x)
		}
	}
	return ""
}

// formatAddParams formats the parameters of the ADD variants.
func formatAddParams(opcode, x, y uint16) string {
	switch opcode & 0xF000 {
	case 0x7000:
		return fmt.Sprintf("V%X, $%02X", x, opcode&0x00FF)
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", x, y)
	case 0xF000:
		return fmt.Sprintf("I, V%X", x)
	}
	return ""
}
