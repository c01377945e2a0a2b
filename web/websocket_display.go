package web

import (
	"github.com/gorilla/websocket"
	"github.com/guslan/chip8"
)

// Boot implements chip8.Display.
func (server *Server) Boot() error {
	return nil
}

func (server *Server) setWs(conn *websocket.Conn) {
	server.wsMutex.Lock()
	defer server.wsMutex.Unlock()

	if server.socket != nil {
		server.socket.Close()
	}
	server.socket = conn
}

func (server *Server) unsetWs(conn *websocket.Conn) {
	server.wsMutex.Lock()
	defer server.wsMutex.Unlock()

	if server.socket == conn {
		server.socket = nil
	}
}

// Render implements chip8.Display.
// Frames rendered while no browser is connected are dropped.
func (server *Server) Render(fb *chip8.Framebuffer) error {
	return server.writeFrame(fb.Pack())
}

func (server *Server) writeFrame(screen chip8.Screen) error {
	server.wsMutex.Lock()
	defer server.wsMutex.Unlock()

	if server.socket == nil {
		return nil
	}

	if err := server.socket.WriteMessage(websocket.BinaryMessage, screen); err != nil {
		// A broken socket should not stop the console
		server.socket.Close()
		server.socket = nil
	}

	return nil
}
