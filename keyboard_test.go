package chip8_test

import (
	"testing"

	"github.com/guslan/chip8"
	"github.com/stretchr/testify/assert"
)

func TestKeyboardState(t *testing.T) {
	state := chip8.KeyboardState{}
	_, ok := state.FirstPressed()
	assert.False(t, ok)
	assert.False(t, state.AnyPressed())

	state[0xB] = true
	state[0x4] = true
	k, ok := state.FirstPressed()
	assert.True(t, ok)
	assert.Equal(t, byte(0x4), k)
	assert.True(t, state.IsPressed(0xB))
	assert.False(t, state.IsPressed(0xC))
	assert.False(t, state.IsPressed(0x1B), "values past F are never pressed")
}

func TestInMemoryKeyboard(t *testing.T) {
	kb := chip8.NewInMemoryKeyboard()
	assert.NoError(t, kb.Boot())

	kb.Press(0x3)
	kb.Press(0x20)
	assert.Equal(t, chip8.KeyboardState{0x3: true}, kb.State())

	kb.Release(0x3)
	assert.Equal(t, chip8.KeyboardState{}, kb.State())

	kb.Set(chip8.KeyboardState{0xF: true})
	assert.True(t, kb.State().IsPressed(0xF))
}

func TestKeyMapLookup(t *testing.T) {
	k, ok := chip8.DefaultKeyMap.Lookup('V')
	assert.True(t, ok)
	assert.Equal(t, byte(0xF), k)

	k, ok = chip8.DefaultKeyMap.Lookup('x')
	assert.True(t, ok)
	assert.Equal(t, byte(0x0), k)

	_, ok = chip8.DefaultKeyMap.Lookup('p')
	assert.False(t, ok)
}
