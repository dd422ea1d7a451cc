package hub

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	// clientBuffer is the per-subscriber send buffer; events beyond it are
	// dropped by the hub's non-blocking send.
	clientBuffer = 32
)

// ServeWS bridges a websocket connection onto a session's event stream and
// blocks until the client disconnects.
func (h *Hub) ServeWS(conn *websocket.Conn, sessionID uint, userID uint) {
	client := make(Client, clientBuffer)
	h.Subscribe(sessionID, client)

	logCtx := logrus.WithFields(logrus.Fields{"session_id": sessionID, "user_id": userID})
	logCtx.Info("Websocket subscriber attached")

	// Reader: we never expect inbound frames, but reading drives the pong
	// handler and surfaces the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.Unsubscribe(sessionID, client)
		conn.Close()
		logCtx.Info("Websocket subscriber detached")
	}()

	for {
		select {
		case message, ok := <-client:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
