package handler

import (
	"net/http"

	"github.com/mcoot/chessgame-go/internal/api/response"
	"github.com/mcoot/chessgame-go/internal/services/lobby"
)

// AdminHandler handles maintenance endpoints
type AdminHandler struct {
	lobbyController *lobby.Controller
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(lobbyController *lobby.Controller) *AdminHandler {
	return &AdminHandler{lobbyController: lobbyController}
}

// Clear handles DELETE /api/v1/db
func (h *AdminHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.lobbyController.Clear(r.Context()); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}
