// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mrx/internal/modules/team"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeTeamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, team.ErrInvalidName):
		writeError(c, http.StatusBadRequest, team.ErrInvalidName.Error())
	case errors.Is(err, team.ErrInvalidKind):
		writeError(c, http.StatusBadRequest, team.ErrInvalidKind.Error())
	case errors.Is(err, team.ErrNameAlreadyExists):
		writeError(c, http.StatusConflict, team.ErrNameAlreadyExists.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
