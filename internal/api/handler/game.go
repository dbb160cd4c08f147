package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/chessgame-go/internal/api/middleware"
	"github.com/mcoot/chessgame-go/internal/api/request"
	"github.com/mcoot/chessgame-go/internal/api/response"
	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/services/lobby"
)

// GameHandler handles the lobby's game endpoints
type GameHandler struct {
	lobbyController *lobby.Controller
}

// NewGameHandler creates a new game handler
func NewGameHandler(lobbyController *lobby.Controller) *GameHandler {
	return &GameHandler{
		lobbyController: lobbyController,
	}
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.lobbyController.ListGames(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ListGamesFromModel(games))
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGameRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	game, err := h.lobbyController.CreateGame(r.Context(), req.GameName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.CreateGameResponse{GameID: game.ID})
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}

	game, err := h.lobbyController.GetGame(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(game))
}

// Join handles PUT /api/v1/games/{id}/players
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	id, ok := gameID(w, r)
	if !ok {
		return
	}

	var req request.JoinGameRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	game, err := h.lobbyController.JoinGame(r.Context(), session.Username, id, req.PlayerColor)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameSummaryFromModel(game))
}

// gameID parses the {id} path variable, writing a 400 if it is not a number
func gameID(w http.ResponseWriter, r *http.Request) (model.GameID, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		WriteError(w, NewInvalidRequestError("game id must be a positive integer"))
		return 0, false
	}
	return model.GameID(id), true
}
