package chip8

import (
	"fmt"
	"log/slog"
)

type Hook func(cpu *Cpu)

// AddBeforeCycleHook adds a hook that will run before every cycle of the CPU
func (cpu *Cpu) AddBeforeCycleHook(h Hook) int {
	cpu.beforeCycleHooks = append(cpu.beforeCycleHooks, h)

	return len(cpu.beforeCycleHooks)
}

// AddAfterCycleHook adds a hook that will run after every successful cycle of the CPU
func (cpu *Cpu) AddAfterCycleHook(h Hook) int {
	cpu.afterCycleHooks = append(cpu.afterCycleHooks, h)

	return len(cpu.afterCycleHooks)
}

func (cpu *Cpu) runHooks(hooks []Hook) {
	for _, h := range hooks {
		h(cpu)
	}
}

// TraceHook logs the instruction about to run at debug level
func TraceHook(logger *slog.Logger) Hook {
	return func(cpu *Cpu) {
		opCode := cpu.fetch(cpu.Pc)
		logger.Debug("exec",
			slog.String("pc", fmt.Sprintf("0x%03X", cpu.Pc)),
			slog.String("opcode", fmt.Sprintf("0x%04X", opCode)),
			slog.String("instr", Decode(opCode).String()),
		)
	}
}
