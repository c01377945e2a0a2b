package chip8

const (
	ScreenWidth  = 64
	ScreenHeight = 32
)

// Screen is the packed representation of a framebuffer.
// Pixels are row-major, 8 per byte, most significant bit first.
type Screen []byte

// Framebuffer is the 64x32 monochrome display of the machine
type Framebuffer struct {
	pixels [ScreenHeight][ScreenWidth]bool
	dirty  bool
}

func NewFramebuffer() *Framebuffer {
	return &Framebuffer{}
}

// Clear turns every pixel off and marks the framebuffer dirty
func (fb *Framebuffer) Clear() {
	fb.pixels = [ScreenHeight][ScreenWidth]bool{}
	fb.dirty = true
}

// Pixel reports whether the pixel at x, y is lit. Coordinates wrap around.
func (fb *Framebuffer) Pixel(x, y int) bool {
	return fb.pixels[wrap(y, ScreenHeight)][wrap(x, ScreenWidth)]
}

// Rows returns a copy of the grid
func (fb *Framebuffer) Rows() [ScreenHeight][ScreenWidth]bool {
	return fb.pixels
}

func (fb *Framebuffer) ShouldDraw() bool {
	return fb.dirty
}

func (fb *Framebuffer) ClearDraw() {
	fb.dirty = false
}

// DrawSprite XORs the sprite rows onto the framebuffer at x, y.
// Every pixel wraps around both axes independently.
// Returns whether any lit pixel was turned off.
func (fb *Framebuffer) DrawSprite(x, y byte, rows []byte) bool {
	collision := false

	for i, row := range rows {
		py := wrap(int(y)+i, ScreenHeight)
		for bitJ := 0; bitJ < 8; bitJ++ {
			if row&(0x80>>bitJ) == 0 {
				continue
			}

			px := wrap(int(x)+bitJ, ScreenWidth)
			if fb.pixels[py][px] {
				collision = true
			}
			fb.pixels[py][px] = !fb.pixels[py][px]
		}
	}

	fb.dirty = true

	return collision
}

// Pack returns the grid in the packed Screen format
func (fb *Framebuffer) Pack() Screen {
	screen := make(Screen, ScreenWidth*ScreenHeight/8)

	for y := 0; y < ScreenHeight; y++ {
		for x := 0; x < ScreenWidth; x++ {
			if fb.pixels[y][x] {
				t := y*ScreenWidth + x
				screen[t/8] |= 0x80 >> (t % 8)
			}
		}
	}

	return screen
}

func wrap(v, size int) int {
	v %= size
	if v < 0 {
		v += size
	}

	return v
}
