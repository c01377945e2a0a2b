package chip8

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var ErrConsoleNotBooted = errors.New("the console has not been booted properly")
var ErrNoProgramLoaded = errors.New("there is no program loaded")

const (
	DefaultSpeed uint = 500
	MaxSpeed     uint = 700
	MinSpeed     uint = 5

	DefaultKeyPollInterval = 5 * time.Millisecond
)

// Console drives a Cpu for a host: it polls the keyboard before every cycle,
// renders the framebuffer when it changed and paces the cycles at a speed in Hz.
// Start, Stop, LoopOnce and Reset may be called from other goroutines while Loop runs.
type Console struct {
	Cpu      *Cpu
	Display  Display
	Keyboard Keyboard

	mu sync.Mutex

	speedInHz atomic.Uint32
	isBooted   bool
	isPaused   atomic.Bool
	isClosed   atomic.Bool
	hasProgram atomic.Bool
	program    []byte
	lastError  error

	decoupledTimers bool
	lastTimerTick   time.Time
	keyPollInterval time.Duration

	logger *slog.Logger
}

type ConsoleConfig struct {
	Speed           uint
	Buzzer          Buzzer
	Random          RandomSource
	Logger          *slog.Logger
	DecoupledTimers bool
	KeyPollInterval time.Duration
}

type ConsoleConfigCb func(config *ConsoleConfig)

func NewConsole(display Display, keyboard Keyboard, configs ...ConsoleConfigCb) *Console {
	config := &ConsoleConfig{
		Speed:           DefaultSpeed,
		Buzzer:          LogBuzzer{},
		Random:          nil,
		Logger:          slog.Default(),
		DecoupledTimers: false,
		KeyPollInterval: DefaultKeyPollInterval,
	}
	for _, cb := range configs {
		cb(config)
	}

	c := &Console{
		Display:  display,
		Keyboard: keyboard,

		decoupledTimers: config.DecoupledTimers,
		keyPollInterval: config.KeyPollInterval,
		logger:          config.Logger,
	}

	// The console waits for keys itself, outside of the lock, so LD Vx, K retries
	options := []CpuOption{
		WithBuzzer(config.Buzzer),
		WithRandomSource(config.Random),
		WithLogger(config.Logger),
	}
	if config.DecoupledTimers {
		options = append(options, WithDecoupledTimers())
	}
	c.Cpu = NewCpu(options...)
	c.SetSpeedInHz(config.Speed)
	c.isPaused.Store(true)

	return c
}

func (c *Console) IsRunning() bool {
	return !c.isPaused.Load()
}

func (c *Console) Start() {
	c.isPaused.Store(false)
}

func (c *Console) Stop() {
	c.isPaused.Store(true)
}

// Close makes Loop return and abandons any pending key wait
func (c *Console) Close() {
	c.isClosed.Store(true)
	c.Stop()
}

func (c *Console) SpeedInHz() uint {
	return uint(c.speedInHz.Load())
}

// SetSpeedInHz sets the number of cycles per second, clamped to [MinSpeed, MaxSpeed]
func (c *Console) SetSpeedInHz(inHz uint) {
	c.speedInHz.Store(uint32(min(max(inHz, MinSpeed), MaxSpeed)))
}

func (c *Console) step() time.Duration {
	return time.Second / time.Duration(c.SpeedInHz())
}

func (c *Console) HasProgram() bool {
	return c.hasProgram.Load()
}

// Snapshot returns the current framebuffer in the packed format
func (c *Console) Snapshot() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.Cpu.Screen().Pack()
}

// LastError is the error that stopped the console, if any
func (c *Console) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastError
}

// Boot initializes all the components
// If the console was already booted, this method is a noop
func (c *Console) Boot() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isBooted {
		return nil
	}

	if err := c.Display.Boot(); err != nil {
		return err
	}

	if err := c.Keyboard.Boot(); err != nil {
		return err
	}

	c.isBooted = true

	return nil
}

// LoadProgram resets the machine and loads the program into memory.
// A program that does not fit is rejected before anything is reset.
func (c *Console) LoadProgram(program []byte) error {
	if len(program) > RomCapacity {
		return ErrRomTooLarge{Size: len(program)}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.program = append([]byte(nil), program...)
	c.hasProgram.Store(true)

	return c.reset()
}

// Reset restarts the loaded program from the beginning
func (c *Console) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.program == nil {
		return ErrNoProgramLoaded
	}

	return c.reset()
}

func (c *Console) reset() error {
	c.Cpu.Reset()
	c.lastError = nil
	c.lastTimerTick = time.Time{}

	if err := c.Cpu.LoadRom(c.program); err != nil {
		return err
	}

	return c.render()
}

// LoopAtSpeed sets the speed and starts the loop
func (c *Console) LoopAtSpeed(speedInHz uint) error {
	c.SetSpeedInHz(speedInHz)
	return c.Loop()
}

// Loop runs cycles at the current speed until Close is called or a cycle fails.
// While the console is stopped the loop idles.
func (c *Console) Loop() error {
	if !c.isBootedLocked() {
		return ErrConsoleNotBooted
	}

	var last time.Time

	for !c.isClosed.Load() {
		if err := c.runNextCycle(false); err != nil {
			return err
		}

		// Prevent the CPU from running faster than expected
		time.Sleep(max(c.step()-time.Since(last), 0))
		last = time.Now()
	}

	return nil
}

// LoopOnce runs a single cycle bypassing the pause state
func (c *Console) LoopOnce() error {
	if !c.isBootedLocked() {
		return ErrConsoleNotBooted
	}

	return c.runNextCycle(true)
}

func (c *Console) isBootedLocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.isBooted
}

// runNextCycle runs one cycle. When the program waits for a key and none is
// pressed, it blocks in WaitForKey after releasing the lock, so the host can
// still stop, reset or load programs.
func (c *Console) runNextCycle(force bool) error {
	waiting, err := c.cycle(force)
	if err != nil {
		return err
	}

	if waiting {
		c.WaitForKey()
	}

	return nil
}

func (c *Console) cycle(force bool) (waiting bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lastError != nil {
		return false, c.lastError
	}

	if c.program == nil || (c.isPaused.Load() && !force) {
		c.lastTimerTick = time.Time{}
		return false, nil
	}

	c.Cpu.SetKeys(c.Keyboard.State())
	effect, err := c.Cpu.Step()
	if err != nil {
		c.logger.Error("Cycle failed", slog.Any("error", err))
		c.lastError = err
		c.Stop()
		return false, err
	}

	if c.decoupledTimers {
		c.tickTimers(time.Now())
	}

	if c.Cpu.Screen().ShouldDraw() {
		if err := c.render(); err != nil {
			c.lastError = err
			c.Stop()
			return false, err
		}
	}

	// Without a provider the CPU only reports a key wait when no key was latched
	return effect == EffectKeyWait, nil
}

// tickTimers ticks the timers once per elapsed TimerPeriod since the last tick
func (c *Console) tickTimers(now time.Time) {
	if c.lastTimerTick.IsZero() {
		c.lastTimerTick = now
		return
	}

	for now.Sub(c.lastTimerTick) >= TimerPeriod {
		c.Cpu.TickTimers()
		c.lastTimerTick = c.lastTimerTick.Add(TimerPeriod)
	}
}

func (c *Console) render() error {
	if err := c.Display.Render(c.Cpu.Screen()); err != nil {
		return err
	}
	c.Cpu.Screen().ClearDraw()

	return nil
}

// WaitForKey implements KeyWaitProvider by polling the keyboard.
// It gives up with an empty state when the console is stopped or closed.
// It never takes the console lock.
func (c *Console) WaitForKey() KeyboardState {
	for {
		if c.isPaused.Load() || c.isClosed.Load() {
			return KeyboardState{}
		}

		if state := c.Keyboard.State(); state.AnyPressed() {
			return state
		}

		time.Sleep(c.keyPollInterval)
	}
}
