package chip8

import "time"

// TimerRate is the nominal frequency of the delay and sound timers
const TimerRate = 60

// TimerPeriod is the wall-clock time between two timer ticks at TimerRate
const TimerPeriod = time.Second / TimerRate

// Timers are the delay and sound countdown registers
type Timers struct {
	Delay byte
	Sound byte
}

// Tick decrements both timers when nonzero.
// It returns true when the sound timer went from 1 to 0.
func (t *Timers) Tick() (beep bool) {
	if t.Sound > 0 {
		t.Sound--
		beep = t.Sound == 0
	}
	if t.Delay > 0 {
		t.Delay--
	}

	return beep
}

func (t Timers) IsSoundActive() bool {
	return t.Sound > 0
}

func (t Timers) IsDelayActive() bool {
	return t.Delay > 0
}
