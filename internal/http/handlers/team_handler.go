// README: Team handlers for create/list.
package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"mrx/internal/http/middleware"
	"mrx/internal/modules/team"
)

// Roster is the part of the game state the admin API touches.
type Roster interface {
	CreateTeam(req team.CreateTeam) (team.Team, error)
	Teams() []team.Team
}

type TeamHandler struct {
	roster Roster
}

func NewTeamHandler(roster Roster) *TeamHandler {
	return &TeamHandler{roster: roster}
}

func (h *TeamHandler) Create(c *gin.Context) {
	var req team.CreateTeam
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, team.ErrInvalidKind) {
			writeTeamError(c, err)
			return
		}
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	created, err := h.roster.CreateTeam(req)
	if err != nil {
		writeTeamError(c, err)
		return
	}
	log.Printf("team %d %q (%s) created by %q", created.ID, created.Name, created.Kind, middleware.Caller(c))
	writeJSON(c, http.StatusOK, created)
}

func (h *TeamHandler) List(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.roster.Teams())
}
