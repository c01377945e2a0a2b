package chip8

import (
	"fmt"
	"log/slog"
)

type ErrOpCodeUnknown struct {
	OpCode uint16
	Pc     uint16
}

func (err ErrOpCodeUnknown) Error() string {
	return fmt.Sprintf("unknown opcode=%04X at PC=%03X", err.OpCode, err.Pc)
}

// MachineRoutineInterpreter runs SYS instructions. Without one they are skipped.
type MachineRoutineInterpreter func(opCode uint16, cpu *Cpu) error

// Effect is the observable side effect of one executed instruction
type Effect byte

const (
	EffectNone Effect = iota
	// EffectRedraw means the framebuffer was modified
	EffectRedraw
	// EffectKeyWait means LD Vx, K had to wait for the host.
	// If the wait was abandoned the PC still points to the instruction.
	EffectKeyWait
)

const flagRegister = 0xF

// addressMask keeps memory accesses inside the 12-bit address space
const addressMask = MemorySize - 1

// Chip-8 CPU
type Cpu struct {
	Memory *Memory
	// V 8-bit registers, VF doubles as the flag register
	V [16]byte
	// I 16-bit address register
	I uint16
	// Program counter
	Pc uint16
	// Last fetched opcode
	OpCode uint16
	Stack  CallStack
	Timers Timers
	// Input latch, replaced by the host before each cycle
	Keys KeyboardState

	screen *Framebuffer
	cycles uint

	random          RandomSource
	keyWait         KeyWaitProvider
	buzzer          Buzzer
	logger          *slog.Logger
	decoupledTimers bool

	MachineRoutineInterpreter MachineRoutineInterpreter

	// Hooks that run before every cycle
	beforeCycleHooks []Hook
	// Hooks that run after every cycle
	afterCycleHooks []Hook
}

type CpuConfig struct {
	Random          RandomSource
	KeyWait         KeyWaitProvider
	Buzzer          Buzzer
	Logger          *slog.Logger
	DecoupledTimers bool
}

type CpuOption func(config *CpuConfig)

func WithRandomSource(r RandomSource) CpuOption {
	return func(config *CpuConfig) {
		config.Random = r
	}
}

func WithKeyWaitProvider(p KeyWaitProvider) CpuOption {
	return func(config *CpuConfig) {
		config.KeyWait = p
	}
}

func WithBuzzer(b Buzzer) CpuOption {
	return func(config *CpuConfig) {
		config.Buzzer = b
	}
}

func WithLogger(l *slog.Logger) CpuOption {
	return func(config *CpuConfig) {
		config.Logger = l
	}
}

// WithDecoupledTimers stops the timers from ticking on every cycle.
// The host is then responsible for calling TickTimers.
func WithDecoupledTimers() CpuOption {
	return func(config *CpuConfig) {
		config.DecoupledTimers = true
	}
}

func NewCpu(options ...CpuOption) *Cpu {
	config := &CpuConfig{
		Random: nil,
		Logger: slog.Default(),
	}
	for _, cb := range options {
		cb(config)
	}
	if config.Random == nil {
		config.Random = NewSeededRandom(DefaultSeed)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Cpu{
		Memory: NewMemory(),
		Pc:     StartOfProgram,

		screen: NewFramebuffer(),

		random:          config.Random,
		keyWait:         config.KeyWait,
		buzzer:          config.Buzzer,
		logger:          config.Logger,
		decoupledTimers: config.DecoupledTimers,

		beforeCycleHooks: make([]Hook, 0),
		afterCycleHooks:  make([]Hook, 0),
	}
}

func (cpu *Cpu) Cycles() uint {
	return cpu.cycles
}

func (cpu *Cpu) Screen() *Framebuffer {
	return cpu.screen
}

func (cpu *Cpu) SetKeys(keys KeyboardState) {
	cpu.Keys = keys
}

// LoadRom copies the ROM at the start-of-program address.
// On error the machine state is left untouched.
func (cpu *Cpu) LoadRom(rom []byte) error {
	return cpu.Memory.LoadRom(rom)
}

// Reset restores the state of a freshly built CPU, including memory
func (cpu *Cpu) Reset() {
	cpu.Memory.Clear()
	cpu.V = [16]byte{}
	cpu.I = 0
	cpu.Pc = StartOfProgram
	cpu.OpCode = 0
	cpu.Stack = CallStack{}
	cpu.Timers = Timers{}
	cpu.Keys = KeyboardState{}
	cpu.cycles = 0
	cpu.screen.Clear()
}

// TickTimers decrements the timers once and beeps on the sound timer edge
func (cpu *Cpu) TickTimers() {
	if cpu.Timers.Tick() && cpu.buzzer != nil {
		cpu.buzzer.Beep()
	}
}

// Cycle fetches, decodes and executes one instruction, then ticks the timers.
// A stack fault aborts the cycle and leaves PC, registers and timers as they were.
func (cpu *Cpu) Cycle() error {
	_, err := cpu.Step()
	return err
}

// Step is Cycle that also reports the side effect of the executed instruction
func (cpu *Cpu) Step() (Effect, error) {
	cpu.runHooks(cpu.beforeCycleHooks)

	pc := cpu.Pc
	cpu.OpCode = cpu.fetch(pc)

	next, effect, err := cpu.execute(Decode(cpu.OpCode), pc)
	if err != nil {
		return EffectNone, fmt.Errorf("%w (opcode=%04X at PC=%03X)", err, cpu.OpCode, pc)
	}

	cpu.Pc = next & addressMask
	cpu.cycles++

	if !cpu.decoupledTimers {
		cpu.TickTimers()
	}

	cpu.runHooks(cpu.afterCycleHooks)

	return effect, nil
}

// fetch reads the big-endian opcode at pc, wrapping at the end of memory
func (cpu *Cpu) fetch(pc uint16) uint16 {
	return cpu.Memory.ReadWord(pc)
}

// execute runs the instruction fetched at pc and returns the address of the next one
func (cpu *Cpu) execute(ins Instruction, pc uint16) (uint16, Effect, error) {
	next := pc + 2
	x, y := ins.X, ins.Y

	switch ins.Op {
	case OpUnknown:
		cpu.logger.Warn("Skipping unknown opcode", slog.Any("error", ErrOpCodeUnknown{OpCode: ins.OpCode, Pc: pc}))

	case OpSys:
		// SYS addr :: Jump to a machine code routine at nnn.
		// Only meaningful on the COSMAC VIP, skipped unless the host provides an interpreter.
		if cpu.MachineRoutineInterpreter == nil {
			cpu.logger.Warn("Skipping machine routine", slog.Any("error", ErrOpCodeUnknown{OpCode: ins.OpCode, Pc: pc}))
			break
		}
		if err := cpu.MachineRoutineInterpreter(ins.OpCode, cpu); err != nil {
			return pc, EffectNone, err
		}

	case OpCls:
		// CLS :: Clear the display.
		cpu.screen.Clear()
		return next, EffectRedraw, nil

	case OpRet:
		// RET :: Return from a subroutine.
		addr, err := cpu.Stack.Pop()
		if err != nil {
			return pc, EffectNone, err
		}
		next = addr

	case OpJp:
		// JP addr :: Jump to location nnn.
		next = ins.NNN

	case OpCall:
		// CALL addr :: Call subroutine at nnn.
		if err := cpu.Stack.Push(next); err != nil {
			return pc, EffectNone, err
		}
		next = ins.NNN

	case OpSeByte:
		// SE Vx, byte :: Skip next instruction if Vx = kk.
		if cpu.V[x] == ins.NN {
			next += 2
		}

	case OpSneByte:
		// SNE Vx, byte :: Skip next instruction if Vx != kk.
		if cpu.V[x] != ins.NN {
			next += 2
		}

	case OpSeReg:
		// SE Vx, Vy :: Skip next instruction if Vx = Vy.
		if cpu.V[x] == cpu.V[y] {
			next += 2
		}

	case OpLdByte:
		// LD Vx, byte :: Set Vx = kk.
		cpu.V[x] = ins.NN

	case OpAddByte:
		// ADD Vx, byte :: Set Vx = Vx + kk. VF is untouched.
		cpu.V[x] += ins.NN

	case OpLdReg:
		// LD Vx, Vy :: Set Vx = Vy.
		cpu.V[x] = cpu.V[y]

	case OpOr:
		// OR Vx, Vy :: Set Vx = Vx OR Vy.
		cpu.V[x] |= cpu.V[y]

	case OpAnd:
		// AND Vx, Vy :: Set Vx = Vx AND Vy.
		cpu.V[x] &= cpu.V[y]

	case OpXor:
		// XOR Vx, Vy :: Set Vx = Vx XOR Vy.
		cpu.V[x] ^= cpu.V[y]

	case OpAddReg:
		// ADD Vx, Vy :: Set Vx = Vx + Vy, set VF = carry.
		r := uint16(cpu.V[x]) + uint16(cpu.V[y])
		cpu.V[x] = byte(r & 0x00FF)
		cpu.V[flagRegister] = byte(r >> 8)

	case OpSub:
		// SUB Vx, Vy :: Set Vx = Vx - Vy, set VF = NOT borrow.
		carry := cpu.V[x] >= cpu.V[y]
		cpu.V[x] = cpu.V[x] - cpu.V[y]
		cpu.V[flagRegister] = bool2byte(carry)

	case OpShr:
		// SHR Vx, Vy :: Set Vy = Vy SHR 1, Vx = Vy.
		// The source is Vy and both registers receive the result.
		carry := cpu.V[y] & 0b00000001
		cpu.V[y] = cpu.V[y] >> 1
		cpu.V[x] = cpu.V[y]
		cpu.V[flagRegister] = carry

	case OpSubn:
		// SUBN Vx, Vy :: Set Vx = Vy - Vx, set VF = NOT borrow.
		carry := cpu.V[y] >= cpu.V[x]
		cpu.V[x] = cpu.V[y] - cpu.V[x]
		cpu.V[flagRegister] = bool2byte(carry)

	case OpShl:
		// SHL Vx, Vy :: Set Vy = Vy SHL 1, Vx = Vy.
		carry := (cpu.V[y] & 0b10000000) >> 7
		cpu.V[y] = cpu.V[y] << 1
		cpu.V[x] = cpu.V[y]
		cpu.V[flagRegister] = carry

	case OpSneReg:
		// SNE Vx, Vy :: Skip next instruction if Vx != Vy.
		if cpu.V[x] != cpu.V[y] {
			next += 2
		}

	case OpLdI:
		// LD I, addr :: Set I = nnn.
		cpu.I = ins.NNN

	case OpJpV0:
		// JP V0, addr :: Jump to location nnn + V0.
		next = uint16(cpu.V[0]) + ins.NNN

	case OpRnd:
		// RND Vx, byte :: Set Vx = random byte AND kk.
		cpu.V[x] = cpu.random.RandomByte() & ins.NN

	case OpDrw:
		// DRW Vx, Vy, nibble :: Display n-byte sprite starting at memory location I at (Vx, Vy), set VF = collision.
		rows := make([]byte, ins.N)
		for i := range rows {
			rows[i] = cpu.Memory.ReadByte((cpu.I + uint16(i)) & addressMask)
		}
		collision := cpu.screen.DrawSprite(cpu.V[x], cpu.V[y], rows)
		cpu.V[flagRegister] = bool2byte(collision)
		return next, EffectRedraw, nil

	case OpSkp:
		// SKP Vx :: Skip next instruction if key with the value of Vx is pressed.
		if cpu.Keys.IsPressed(cpu.V[x]) {
			next += 2
		}

	case OpSknp:
		// SKNP Vx :: Skip next instruction if key with the value of Vx is not pressed.
		if !cpu.Keys.IsPressed(cpu.V[x]) {
			next += 2
		}

	case OpLdVxDt:
		// LD Vx, DT :: Set Vx = delay timer value.
		cpu.V[x] = cpu.Timers.Delay

	case OpLdVxK:
		// LD Vx, K :: Wait for a key press, store the value of the key in Vx.
		if k, pressed := cpu.Keys.FirstPressed(); pressed {
			cpu.V[x] = k
			break
		}
		if cpu.keyWait == nil {
			return pc, EffectKeyWait, nil
		}

		cpu.Keys = cpu.keyWait.WaitForKey()
		k, pressed := cpu.Keys.FirstPressed()
		if !pressed {
			return pc, EffectKeyWait, nil
		}
		cpu.V[x] = k
		return next, EffectKeyWait, nil

	case OpLdDtVx:
		// LD DT, Vx :: Set delay timer = Vx.
		cpu.Timers.Delay = cpu.V[x]

	case OpLdStVx:
		// LD ST, Vx :: Set sound timer = Vx.
		cpu.Timers.Sound = cpu.V[x]

	case OpAddI:
		// ADD I, Vx :: Set I = I + Vx.
		cpu.I += uint16(cpu.V[x])

	case OpLdF:
		// LD F, Vx :: Set I = location of sprite for digit Vx.
		cpu.I = FontAddress(cpu.V[x])

	case OpLdB:
		// LD B, Vx :: Store BCD representation of Vx in memory locations I, I+1, and I+2.
		v := cpu.V[x]
		cpu.Memory.WriteByte((cpu.I+0)&addressMask, v/100)
		cpu.Memory.WriteByte((cpu.I+1)&addressMask, (v/10)%10)
		cpu.Memory.WriteByte((cpu.I+2)&addressMask, v%10)

	case OpLdIVx:
		// LD [I], Vx :: Store all the registers in memory starting at location I. I is left past the last one.
		for i := range cpu.V {
			cpu.Memory.WriteByte(cpu.I&addressMask, cpu.V[i])
			cpu.I++
		}

	case OpLdVxI:
		// LD Vx, [I] :: Read all the registers from memory starting at location I. I is left past the last one.
		for i := range cpu.V {
			cpu.V[i] = cpu.Memory.ReadByte(cpu.I & addressMask)
			cpu.I++
		}

	default:
		panic(fmt.Sprintf("chip8: decoded %v has no executor", ins.Op))
	}

	return next, EffectNone, nil
}

func bool2byte(b bool) byte {
	if b {
		return 1
	}

	return 0
}
