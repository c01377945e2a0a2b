package web

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/guslan/chip8"
)

//go:embed static
var staticFiles embed.FS

// ErrBadKeyMessage is returned for key messages that are not 2 bytes long
var ErrBadKeyMessage = errors.New("key messages must be 2 bytes")

var upgrader = websocket.Upgrader{} // use default options

var staticRoot = mustSub(staticFiles, "static")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(fmt.Sprintf("web: embedded %q: %v", dir, err))
	}

	return sub
}

// Server runs a console whose display and keyboard live in a browser.
// The framebuffer is pushed through /display and key states arrive through /keys.
type Server struct {
	*chip8.InMemoryKeyboard

	console *chip8.Console
	logger  *slog.Logger

	socket  *websocket.Conn
	wsMutex sync.Mutex
}

type ServerConfig struct {
	Speed           uint
	DecoupledTimers bool
	// Random feeds RND, nil keeps the seeded default
	Random          chip8.RandomSource
	Logger          *slog.Logger
}
type ServerConfigCb func(config *ServerConfig)

func NewServer(configs ...ServerConfigCb) *Server {
	config := &ServerConfig{
		Speed:  chip8.DefaultSpeed,
		Logger: slog.Default(),
	}
	for _, cb := range configs {
		cb(config)
	}

	s := &Server{
		InMemoryKeyboard: chip8.NewInMemoryKeyboard(),
		logger:           config.Logger,
	}

	s.console = chip8.NewConsole(s, s, func(c *chip8.ConsoleConfig) {
		c.Speed = config.Speed
		c.DecoupledTimers = config.DecoupledTimers
		c.Random = config.Random
		c.Logger = config.Logger
		c.Buzzer = chip8.LogBuzzer{Logger: config.Logger}
	})

	return s
}

func (server *Server) Console() *chip8.Console {
	return server.console
}

// LoadProgram loads the program into memory and sets the PC to the start-of-program address
func (server *Server) LoadProgram(program []byte) error {
	return server.console.LoadProgram(program)
}

// Handler returns the routes of the server
func (server *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/", http.FileServer(http.FS(staticRoot)))

	mux.HandleFunc("/start", server.control("Starting", func() error {
		server.console.Start()
		return nil
	}))
	mux.HandleFunc("/stop", server.control("Stopping", func() error {
		server.console.Stop()
		return nil
	}))
	mux.HandleFunc("/reset", server.control("Stopping and resetting", func() error {
		server.console.Stop()
		return server.console.Reset()
	}))
	mux.HandleFunc("/step", server.control("Single cycle", server.console.LoopOnce))

	mux.HandleFunc("/display", server.handleDisplay)
	mux.HandleFunc("/keys", server.handleKeys)

	return mux
}

func (server *Server) control(msg string, action func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Type")

		w.Header().Set("Cache-Control", "no-cache")

		server.logger.Info(msg)
		if err := action(); err != nil {
			server.logger.Error(msg+" failed", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusConflict)
		}
	}
}

func (server *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		server.logger.Error("upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	server.logger.Info("Connecting to display")
	server.setWs(conn)
	defer server.unsetWs(conn)

	// Send the current frame so a late client does not start blank
	server.writeFrame(server.console.Snapshot())

	// The display socket is write-only; reading detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			server.logger.Info("Disconnecting from display")
			return
		}
	}
}

func (server *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		server.logger.Error("upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	server.logger.Info("Connecting to keyboard")
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			server.logger.Info("Disconnecting from keyboard")
			server.InMemoryKeyboard.Set(chip8.KeyboardState{})
			return
		}

		state, err := DecodeKeys(msg)
		if err != nil {
			server.logger.Warn("Ignoring key message", slog.Any("error", err))
			continue
		}
		server.InMemoryKeyboard.Set(state)
	}
}

// DecodeKeys reads a big-endian 16 bit mask where bit k is key k
func DecodeKeys(msg []byte) (chip8.KeyboardState, error) {
	state := chip8.KeyboardState{}
	if len(msg) != 2 {
		return state, fmt.Errorf("%w, got %d", ErrBadKeyMessage, len(msg))
	}

	mask := uint16(msg[0])<<8 | uint16(msg[1])
	for k := range state {
		state[k] = mask&(1<<k) != 0
	}

	return state, nil
}

// EncodeKeys is the inverse of DecodeKeys
func EncodeKeys(state chip8.KeyboardState) []byte {
	var mask uint16
	for k, pressed := range state {
		if pressed {
			mask |= 1 << k
		}
	}

	return []byte{byte(mask >> 8), byte(mask)}
}

// Listen boots the console, starts the CPU loop on pause and serves the routes
func (server *Server) Listen(port int) error {
	if err := server.console.Boot(); err != nil {
		return err
	}

	go func() {
		if err := server.console.Loop(); err != nil {
			server.logger.Error("CPU loop stopped", slog.Any("error", err))
		}
	}()

	server.logger.Info("Listening on port", slog.Int("port", port))

	return http.ListenAndServe(fmt.Sprintf(":%d", port), server.Handler())
}
