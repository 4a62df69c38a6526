// README: Replay file listing.
package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"mrx/internal/modules/replay"
)

type ReplayHandler struct {
	files replay.FileStore
}

func NewReplayHandler(files replay.FileStore) *ReplayHandler {
	return &ReplayHandler{files: files}
}

func (h *ReplayHandler) List(c *gin.Context) {
	names, err := h.files.List()
	if err != nil {
		log.Printf("replays: list: %v", err)
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(c, http.StatusOK, names)
}
