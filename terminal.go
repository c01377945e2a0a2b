package chip8

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/term"
)

// DefaultKeyHold is how long a key stays pressed after its character is read.
// Terminals only report key presses, so releases are simulated.
const DefaultKeyHold = 150 * time.Millisecond

// TerminalKeyboard reads the keys from a terminal in raw mode
type TerminalKeyboard struct {
	Device      string
	KeyMap      KeyMap
	Hold        time.Duration
	// OnInterrupt runs when Ctrl-C is read, since raw mode disables the signal
	OnInterrupt func()
	Logger      *slog.Logger

	tty *term.Term

	mu        sync.Mutex
	pressedAt [KeyCount]time.Time
	now       func() time.Time
}

func NewTerminalKeyboard() *TerminalKeyboard {
	return &TerminalKeyboard{
		Device: "/dev/tty",
		KeyMap: DefaultKeyMap,
		Hold:   DefaultKeyHold,
		Logger: slog.Default(),
		now:    time.Now,
	}
}

// Boot implements Keyboard.
// It puts the terminal in raw mode and starts reading keys in the background.
func (kb *TerminalKeyboard) Boot() error {
	tty, err := term.Open(kb.Device, term.RawMode)
	if err != nil {
		return err
	}
	kb.tty = tty

	go kb.readKeys(tty)

	return nil
}

// Close restores the terminal
func (kb *TerminalKeyboard) Close() error {
	if kb.tty == nil {
		return nil
	}
	if err := kb.tty.Restore(); err != nil {
		return err
	}

	return kb.tty.Close()
}

func (kb *TerminalKeyboard) readKeys(r io.Reader) {
	buf := make([]byte, 16)
	for {
		n, err := r.Read(buf)
		if err != nil {
			kb.Logger.Info("Stopped reading the terminal keyboard", slog.Any("error", err))
			return
		}

		for _, c := range buf[:n] {
			kb.HandleChar(rune(c))
		}
	}
}

// HandleChar presses the key mapped to r
func (kb *TerminalKeyboard) HandleChar(r rune) {
	// Ctrl-C
	if r == 0x03 {
		if kb.OnInterrupt != nil {
			kb.OnInterrupt()
		}
		return
	}

	k, ok := kb.KeyMap.Lookup(r)
	if !ok {
		return
	}

	kb.mu.Lock()
	kb.pressedAt[k] = kb.now()
	kb.mu.Unlock()
}

// State implements Keyboard.
func (kb *TerminalKeyboard) State() KeyboardState {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	now := kb.now()
	state := KeyboardState{}
	for k, at := range kb.pressedAt {
		state[k] = !at.IsZero() && now.Sub(at) < kb.Hold
	}

	return state
}
