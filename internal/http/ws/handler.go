// README: Websocket game stream; one reader and one writer goroutine per client.
package ws

import (
	"context"
	"encoding/json"
	"log"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"mrx/internal/modules/game"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = pongWait * 9 / 10
	maxMessageBytes = 64 * 1024
)

func newUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}
}

type Handler struct {
	loop     *game.Loop
	upgrader websocket.Upgrader
}

func NewHandler(loop *game.Loop) *Handler {
	return &Handler{loop: loop, upgrader: newUpgrader()}
}

// Handle upgrades the request, registers the client and blocks until its socket fails.
func (h *Handler) Handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade failed from %s: %v", c.Request.RemoteAddr, err)
		return
	}
	id, snaps := h.loop.State().Connect()
	log.Printf("ws: client %d connected from %s", id, c.Request.RemoteAddr)

	go h.writeLoop(id, conn, snaps)
	h.readLoop(c.Request.Context(), id, conn)
}

func (h *Handler) readLoop(ctx context.Context, id uint64, conn *websocket.Conn) {
	defer h.disconnect(id)

	conn.SetReadLimit(maxMessageBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("ws: client %d: %v", id, err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		msg, err := game.DecodeClientMessage(payload)
		if err != nil {
			log.Printf("ws: discarding malformed message from %d: %v", id, err)
			continue
		}
		if err := h.loop.Enqueue(ctx, game.ClientInput{ConnID: id, Msg: msg}); err != nil {
			return
		}
	}
}

// writeLoop sends snapshots until the loop closes the stream or a write fails.
func (h *Handler) writeLoop(id uint64, conn *websocket.Conn, snaps <-chan game.Snapshot) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case snap, ok := <-snaps:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			data, err := json.Marshal(snap)
			if err != nil {
				log.Printf("ws: encode snapshot for %d: %v", id, err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.disconnect(id)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.disconnect(id)
				return
			}
		}
	}
}

// disconnect notifies the loop. Repeated notifications are harmless.
func (h *Handler) disconnect(id uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := h.loop.Enqueue(ctx, game.Disconnected{ConnID: id}); err != nil {
		log.Printf("ws: disconnect of %d not delivered: %v", id, err)
	}
}
