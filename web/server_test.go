package web

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/guslan/chip8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	server := NewServer(func(config *ServerConfig) {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	})
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return server, ts
}

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestKeyMessages(t *testing.T) {
	state, err := DecodeKeys([]byte{0x80, 0x01})
	require.NoError(t, err)
	assert.Equal(t, chip8.KeyboardState{0x0: true, 0xF: true}, state)

	want := chip8.KeyboardState{0x1: true, 0x8: true, 0xA: true}
	got, err := DecodeKeys(EncodeKeys(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = DecodeKeys([]byte{0x01})
	assert.ErrorIs(t, err, ErrBadKeyMessage)
}

func TestKeysSocket(t *testing.T) {
	server, ts := newTestServer(t)
	conn := dial(t, ts, "/keys")

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, EncodeKeys(chip8.KeyboardState{0x4: true})))
	require.Eventually(t, func() bool {
		return server.State().IsPressed(0x4)
	}, time.Second, 5*time.Millisecond)

	// Malformed messages are ignored
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3}))
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, EncodeKeys(chip8.KeyboardState{0x9: true})))
	require.Eventually(t, func() bool {
		return server.State() == chip8.KeyboardState{0x9: true}
	}, time.Second, 5*time.Millisecond)

	// Disconnecting releases every key
	conn.Close()
	require.Eventually(t, func() bool {
		return !server.State().AnyPressed()
	}, time.Second, 5*time.Millisecond)
}

func TestDisplaySocket(t *testing.T) {
	server, ts := newTestServer(t)
	// DRW V0, V0, 5 draws the 0 glyph at the origin
	require.NoError(t, server.LoadProgram([]byte{0xD0, 0x05}))
	require.NoError(t, server.Console().Boot())

	conn := dial(t, ts, "/display")
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))

	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, make([]byte, chip8.ScreenWidth*chip8.ScreenHeight/8), frame)

	res, err := http.Get(ts.URL + "/step")
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	_, frame, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, byte(0xF0), frame[0])
	assert.Equal(t, byte(0x90), frame[chip8.ScreenWidth/8])
}

func TestControlRoutes(t *testing.T) {
	server, ts := newTestServer(t)

	get := func(path string) *http.Response {
		res, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		res.Body.Close()
		return res
	}

	assert.Equal(t, http.StatusConflict, get("/reset").StatusCode, "no program loaded")
	assert.Equal(t, http.StatusConflict, get("/step").StatusCode, "not booted")

	res := get("/start")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
	assert.True(t, server.Console().IsRunning())

	assert.Equal(t, http.StatusOK, get("/stop").StatusCode)
	assert.False(t, server.Console().IsRunning())

	require.NoError(t, server.LoadProgram([]byte{0x60, 0x01}))
	assert.Equal(t, http.StatusOK, get("/reset").StatusCode)
}

func TestStaticFiles(t *testing.T) {
	_, ts := newTestServer(t)

	res, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "<canvas")
}

func TestServerRandomSource(t *testing.T) {
	server := NewServer(func(config *ServerConfig) {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		config.Random = chip8.RandomFunc(func() byte { return 0x5A })
	})
	// RND V0, FF
	require.NoError(t, server.LoadProgram([]byte{0xC0, 0xFF}))
	require.NoError(t, server.Console().Boot())

	require.NoError(t, server.Console().LoopOnce())
	assert.Equal(t, byte(0x5A), server.Console().Cpu.V[0])
}

func TestEmbeddedStatic(t *testing.T) {
	assert.Panics(t, func() { mustSub(staticFiles, "../outside") })
	assert.NotPanics(t, func() { mustSub(staticFiles, "static") })
}
