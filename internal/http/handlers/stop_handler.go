// README: Stop catalog handler.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mrx/internal/modules/stops"
)

type StopHandler struct {
	catalog *stops.Catalog
}

func NewStopHandler(catalog *stops.Catalog) *StopHandler {
	return &StopHandler{catalog: catalog}
}

func (h *StopHandler) List(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.catalog.All())
}
