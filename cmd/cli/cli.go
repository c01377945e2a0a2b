/*
 *   Copyright (c) 2024 Gustavo Lopez <git.gustavolopez.xyz@gmail.com>
 *   All rights reserved.
 */
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/guslan/chip8"
)

func main() {
	speed := flag.Uint("speed", chip8.DefaultSpeed, fmt.Sprintf("The speed of the CPU in Hz, in the range [%d, %d].", chip8.MinSpeed, chip8.MaxSpeed))
	noTerm := flag.Bool("noterm", false, "turn off the terminal display of the emulator")
	trace := flag.Bool("trace", false, "log every instruction at debug level to stderr")
	realTimers := flag.Bool("realtimers", false, "tick the timers at 60 Hz instead of once per cycle")
	random := flag.Bool("random", false, "use crypto/rand for RND instead of the reproducible seeded source")
	flag.Parse()

	level := slog.LevelInfo
	if *trace {
		level = slog.LevelDebug
	}
	// The terminal display owns stdout
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if flag.NArg() < 1 {
		log.Fatalln("must provide the path to a rom as an argument")
	}

	program, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalln(err)
	}

	var d chip8.Display
	if *noTerm {
		d = chip8.NewInMemoryDisplay()
	} else {
		d = chip8.NewTerminalDisplay()
	}
	kb := chip8.NewTerminalKeyboard()
	kb.Logger = logger

	console := chip8.NewConsole(d, kb, func(config *chip8.ConsoleConfig) {
		config.Logger = logger
		config.DecoupledTimers = *realTimers
		if *random {
			config.Random = chip8.CryptoRandom{}
		}
	})
	kb.OnInterrupt = console.Close

	if *trace {
		console.Cpu.AddBeforeCycleHook(chip8.TraceHook(logger))
	}

	if err := console.LoadProgram(program); err != nil {
		log.Fatalln(err)
	}

	if err := console.Boot(); err != nil {
		log.Fatalln(err)
	}
	defer kb.Close()

	console.Start()
	if err := console.LoopAtSpeed(*speed); err != nil {
		kb.Close()
		log.Fatalln(err)
	}
}
