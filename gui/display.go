package gui

import (
	"unicode"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/guslan/chip8"
)

var ScreenBgColor = rl.Gold
var ScreenPixelColor = rl.Yellow

// ScanCode is a raylib key code
type ScanCode = int32

// Boot implements chip8.Display.
func (app *App) Boot() error {
	return nil
}

// Render implements chip8.Display.
func (app *App) Render(fb *chip8.Framebuffer) error {
	rows := fb.Rows()

	app.frameMu.Lock()
	app.frame = rows
	app.frameMu.Unlock()

	return nil
}

// lookupMap converts a character layout into raylib key codes.
// raylib numbers letter and digit keys after their uppercase ASCII value.
func lookupMap(keyMap chip8.KeyMap) map[ScanCode]byte {
	m := make(map[ScanCode]byte, len(keyMap))
	for r, k := range keyMap {
		m[ScanCode(unicode.ToUpper(r))] = k
	}

	return m
}
