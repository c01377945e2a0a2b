package chip8

import "sync"

const KeyCount = 16

// KeyboardState is the pressed/released state of the 16 keys, indexed by key value
type KeyboardState [KeyCount]bool

// IsPressed reports whether k is pressed. Values past 0xF are never pressed.
func (s KeyboardState) IsPressed(k byte) bool {
	if k >= KeyCount {
		return false
	}
	return s[k]
}

// FirstPressed returns the lowest pressed key
func (s KeyboardState) FirstPressed() (byte, bool) {
	for k, pressed := range s {
		if pressed {
			return byte(k), true
		}
	}

	return 0, false
}

func (s KeyboardState) AnyPressed() bool {
	_, ok := s.FirstPressed()
	return ok
}

// KeyWaitProvider blocks until the host reports at least one pressed key.
// An empty state means the wait was abandoned and LD Vx, K is retried on the next cycle.
type KeyWaitProvider interface {
	WaitForKey() KeyboardState
}

// KeyWaitFunc adapts a function to KeyWaitProvider
type KeyWaitFunc func() KeyboardState

func (f KeyWaitFunc) WaitForKey() KeyboardState {
	return f()
}

// Keyboard is the host input source polled before every cycle
type Keyboard interface {
	// Boot initializes the component
	Boot() error
	State() KeyboardState
}

// InMemoryKeyboard is a Keyboard whose keys are pressed and released by the host.
// It is safe to use from several goroutines.
type InMemoryKeyboard struct {
	mu    sync.RWMutex
	state KeyboardState
}

func NewInMemoryKeyboard() *InMemoryKeyboard {
	return &InMemoryKeyboard{}
}

// Boot implements Keyboard.
func (kb *InMemoryKeyboard) Boot() error {
	return nil
}

// State implements Keyboard.
func (kb *InMemoryKeyboard) State() KeyboardState {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	return kb.state
}

func (kb *InMemoryKeyboard) Set(state KeyboardState) {
	kb.mu.Lock()
	kb.state = state
	kb.mu.Unlock()
}

func (kb *InMemoryKeyboard) Press(k byte) {
	kb.setKey(k, true)
}

func (kb *InMemoryKeyboard) Release(k byte) {
	kb.setKey(k, false)
}

func (kb *InMemoryKeyboard) setKey(k byte, pressed bool) {
	if k >= KeyCount {
		return
	}

	kb.mu.Lock()
	kb.state[k] = pressed
	kb.mu.Unlock()
}

// KeyMap maps host characters to key values
type KeyMap map[rune]byte

// DefaultKeyMap is the usual QWERTY layout of the hex keypad:
//
//	1 2 3 4     1 2 3 C
//	q w e r  →  4 5 6 D
//	a s d f     7 8 9 E
//	z x c v     A 0 B F
var DefaultKeyMap = KeyMap{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// Lookup returns the key for r, ignoring case
func (m KeyMap) Lookup(r rune) (byte, bool) {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	k, ok := m[r]

	return k, ok
}
