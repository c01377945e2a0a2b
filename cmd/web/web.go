/*
 *   Copyright (c) 2024 Gustavo Lopez <git.gustavolopez.xyz@gmail.com>
 *   All rights reserved.
 */
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/guslan/chip8"
	"github.com/guslan/chip8/web"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})))
}

func main() {
	port := flag.Int("port", 9999, "The port of the server (default = 9999)")
	speed := flag.Uint("speed", chip8.DefaultSpeed, "Speed in cycles per second")
	realTimers := flag.Bool("realtimers", false, "tick the timers at 60 Hz instead of once per cycle")
	random := flag.Bool("random", false, "use crypto/rand for RND instead of the reproducible seeded source")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatalln("must provide the path to a rom as an argument")
	}

	program, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalln(err)
	}

	server := web.NewServer(func(config *web.ServerConfig) {
		config.Speed = *speed
		config.DecoupledTimers = *realTimers
		if *random {
			config.Random = chip8.CryptoRandom{}
		}
	})

	if err := server.LoadProgram(program); err != nil {
		log.Fatalln(err)
	}
	if err := server.Listen(*port); err != nil {
		log.Fatalln(err)
	}
}
