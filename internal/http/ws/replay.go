// README: Websocket replay stream; one engine per viewer, driven by playback commands.
package ws

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"mrx/internal/modules/replay"
)

const eventBuffer = 64

type ReplayHandler struct {
	files    replay.FileStore
	upgrader websocket.Upgrader
}

func NewReplayHandler(files replay.FileStore) *ReplayHandler {
	return &ReplayHandler{files: files, upgrader: newUpgrader()}
}

func (h *ReplayHandler) Handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("replay: upgrade failed from %s: %v", c.Request.RemoteAddr, err)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	events := make(chan replay.Event, eventBuffer)
	cmds := make(chan replay.Command, replay.CommandBuffer)
	engine := replay.NewEngine(h.files, func(ev replay.Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	})
	log.Printf("replay: session %s opened from %s", engine.Session(), c.Request.RemoteAddr)

	go engine.Run(ctx, cmds)
	go writeEvents(ctx, cancel, conn, events)

	conn.SetReadLimit(maxMessageBytes)
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			break
		}
		cmd, err := replay.DecodeCommand(payload)
		if err != nil {
			log.Printf("replay: discarding malformed command in %s: %v", engine.Session(), err)
			continue
		}
		select {
		case cmds <- cmd:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}

	select {
	case cmds <- replay.Disconnected{}:
	default:
	}
	log.Printf("replay: session %s closed", engine.Session())
}

func writeEvents(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, events <-chan replay.Event) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
		_ = conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			data, err := replay.EncodeEvent(ev)
			if err != nil {
				log.Printf("replay: %v", err)
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
