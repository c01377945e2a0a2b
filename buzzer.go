package chip8

import "log/slog"

// Buzzer receives the beep emitted when the sound timer runs out
type Buzzer interface {
	Beep()
}

type DummyBuzzer struct {
	Beeps int
}

func NewDummyBuzzer() *DummyBuzzer {
	return &DummyBuzzer{}
}

// Beep implements Buzzer.
func (b *DummyBuzzer) Beep() {
	b.Beeps++
}

// LogBuzzer writes every beep to a logger
type LogBuzzer struct {
	Logger *slog.Logger
}

// Beep implements Buzzer.
func (b LogBuzzer) Beep() {
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Beep")
}
