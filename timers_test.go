package chip8_test

import (
	"testing"

	"github.com/guslan/chip8"
	"github.com/stretchr/testify/assert"
)

func TestTimersTick(t *testing.T) {
	timers := chip8.Timers{Delay: 1, Sound: 2}

	assert.False(t, timers.Tick())
	assert.Equal(t, chip8.Timers{Delay: 0, Sound: 1}, timers)
	assert.True(t, timers.IsSoundActive())
	assert.False(t, timers.IsDelayActive())

	assert.True(t, timers.Tick())
	assert.Equal(t, chip8.Timers{}, timers)

	assert.False(t, timers.Tick(), "idle timers never beep")
	assert.Equal(t, chip8.Timers{}, timers)
}
