package chip8

import "fmt"

// Op identifies one of the 35 instructions
type Op byte

const (
	OpUnknown Op = iota
	OpSys        // 0NNN
	OpCls        // 00E0
	OpRet        // 00EE
	OpJp         // 1NNN
	OpCall       // 2NNN
	OpSeByte     // 3XNN
	OpSneByte    // 4XNN
	OpSeReg      // 5XY0
	OpLdByte     // 6XNN
	OpAddByte    // 7XNN
	OpLdReg      // 8XY0
	OpOr         // 8XY1
	OpAnd        // 8XY2
	OpXor        // 8XY3
	OpAddReg     // 8XY4
	OpSub        // 8XY5
	OpShr        // 8XY6
	OpSubn       // 8XY7
	OpShl        // 8XYE
	OpSneReg     // 9XY0
	OpLdI        // ANNN
	OpJpV0       // BNNN
	OpRnd        // CXNN
	OpDrw        // DXYN
	OpSkp        // EX9E
	OpSknp       // EXA1
	OpLdVxDt     // FX07
	OpLdVxK      // FX0A
	OpLdDtVx     // FX15
	OpLdStVx     // FX18
	OpAddI       // FX1E
	OpLdF        // FX29
	OpLdB        // FX33
	OpLdIVx      // FX55
	OpLdVxI      // FX65
)

var opNames = [...]string{
	OpUnknown: "???",
	OpSys:     "SYS",
	OpCls:     "CLS",
	OpRet:     "RET",
	OpJp:      "JP",
	OpCall:    "CALL",
	OpSeByte:  "SE",
	OpSneByte: "SNE",
	OpSeReg:   "SE",
	OpLdByte:  "LD",
	OpAddByte: "ADD",
	OpLdReg:   "LD",
	OpOr:      "OR",
	OpAnd:     "AND",
	OpXor:     "XOR",
	OpAddReg:  "ADD",
	OpSub:     "SUB",
	OpShr:     "SHR",
	OpSubn:    "SUBN",
	OpShl:     "SHL",
	OpSneReg:  "SNE",
	OpLdI:     "LD",
	OpJpV0:    "JP",
	OpRnd:     "RND",
	OpDrw:     "DRW",
	OpSkp:     "SKP",
	OpSknp:    "SKNP",
	OpLdVxDt:  "LD",
	OpLdVxK:   "LD",
	OpLdDtVx:  "LD",
	OpLdStVx:  "LD",
	OpAddI:    "ADD",
	OpLdF:     "LD",
	OpLdB:     "LD",
	OpLdIVx:   "LD",
	OpLdVxI:   "LD",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", byte(op))
}

// Instruction is a decoded opcode and its operand fields
type Instruction struct {
	Op     Op
	OpCode uint16

	X   byte
	Y   byte
	N   byte
	NN  byte
	NNN uint16
}

// Decode splits the opcode into its fields and identifies the instruction.
// Bit patterns outside the instruction set decode to OpUnknown.
func Decode(opCode uint16) Instruction {
	ins := Instruction{
		OpCode: opCode,
		X:      byte((opCode & 0x0F00) >> 8),
		Y:      byte((opCode & 0x00F0) >> 4),
		N:      byte(opCode & 0x000F),
		NN:     byte(opCode & 0x00FF),
		NNN:    opCode & 0x0FFF,
	}
	ins.Op = decodeOp(opCode)

	return ins
}

func decodeOp(opCode uint16) Op {
	switch opCode & 0xF000 {
	case 0x0000:
		switch opCode {
		case 0x00E0:
			return OpCls
		case 0x00EE:
			return OpRet
		default:
			return OpSys
		}

	case 0x1000:
		return OpJp

	case 0x2000:
		return OpCall

	case 0x3000:
		return OpSeByte

	case 0x4000:
		return OpSneByte

	case 0x5000:
		if opCode&0x000F == 0 {
			return OpSeReg
		}

	case 0x6000:
		return OpLdByte

	case 0x7000:
		return OpAddByte

	case 0x8000:
		switch opCode & 0x000F {
		case 0x0000:
			return OpLdReg
		case 0x0001:
			return OpOr
		case 0x0002:
			return OpAnd
		case 0x0003:
			return OpXor
		case 0x0004:
			return OpAddReg
		case 0x0005:
			return OpSub
		case 0x0006:
			return OpShr
		case 0x0007:
			return OpSubn
		case 0x000E:
			return OpShl
		}

	case 0x9000:
		if opCode&0x000F == 0 {
			return OpSneReg
		}

	case 0xA000:
		return OpLdI

	case 0xB000:
		return OpJpV0

	case 0xC000:
		return OpRnd

	case 0xD000:
		return OpDrw

	case 0xE000:
		switch opCode & 0x00FF {
		case 0x009E:
			return OpSkp
		case 0x00A1:
			return OpSknp
		}

	case 0xF000:
		switch opCode & 0x00FF {
		case 0x0007:
			return OpLdVxDt
		case 0x000A:
			return OpLdVxK
		case 0x0015:
			return OpLdDtVx
		case 0x0018:
			return OpLdStVx
		case 0x001E:
			return OpAddI
		case 0x0029:
			return OpLdF
		case 0x0033:
			return OpLdB
		case 0x0055:
			return OpLdIVx
		case 0x0065:
			return OpLdVxI
		}
	}

	return OpUnknown
}

// String returns the assembly form of the instruction, e.g. "ADD V3, V4"
func (ins Instruction) String() string {
	switch ins.Op {
	case OpCls, OpRet:
		return ins.Op.String()
	case OpSys, OpJp, OpCall:
		return fmt.Sprintf("%s %03X", ins.Op, ins.NNN)
	case OpSeByte, OpSneByte, OpLdByte, OpAddByte:
		return fmt.Sprintf("%s V%X, %02X", ins.Op, ins.X, ins.NN)
	case OpSeReg, OpSneReg, OpLdReg, OpOr, OpAnd, OpXor, OpAddReg, OpSub, OpShr, OpSubn, OpShl:
		return fmt.Sprintf("%s V%X, V%X", ins.Op, ins.X, ins.Y)
	case OpLdI:
		return fmt.Sprintf("LD I, %03X", ins.NNN)
	case OpJpV0:
		return fmt.Sprintf("JP V0, %03X", ins.NNN)
	case OpRnd:
		return fmt.Sprintf("RND V%X, %02X", ins.X, ins.NN)
	case OpDrw:
		return fmt.Sprintf("DRW V%X, V%X, %X", ins.X, ins.Y, ins.N)
	case OpSkp, OpSknp:
		return fmt.Sprintf("%s V%X", ins.Op, ins.X)
	case OpLdVxDt:
		return fmt.Sprintf("LD V%X, DT", ins.X)
	case OpLdVxK:
		return fmt.Sprintf("LD V%X, K", ins.X)
	case OpLdDtVx:
		return fmt.Sprintf("LD DT, V%X", ins.X)
	case OpLdStVx:
		return fmt.Sprintf("LD ST, V%X", ins.X)
	case OpAddI:
		return fmt.Sprintf("ADD I, V%X", ins.X)
	case OpLdF:
		return fmt.Sprintf("LD F, V%X", ins.X)
	case OpLdB:
		return fmt.Sprintf("LD B, V%X", ins.X)
	case OpLdIVx:
		return fmt.Sprintf("LD [I], V%X", ins.X)
	case OpLdVxI:
		return fmt.Sprintf("LD V%X, [I]", ins.X)
	}

	return fmt.Sprintf("%04X", ins.OpCode)
}
