package response

import (
	"github.com/mcoot/chessgame-go/internal/chess"
	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/services/auth"
)

// AuthResponse is the response for registration and login
type AuthResponse struct {
	Username  string `json:"username"`
	AuthToken string `json:"auth_token"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Username:  s.Username,
		AuthToken: s.Token,
	}
}

// GameSummary is a game as listed in the lobby. Open seats are omitted.
type GameSummary struct {
	GameID        model.GameID `json:"game_id"`
	GameName      string       `json:"game_name"`
	WhiteUsername string       `json:"white_username,omitempty"`
	BlackUsername string       `json:"black_username,omitempty"`
	GameOver      bool         `json:"game_over"`
}

// GameSummaryFromModel converts a model.Game
func GameSummaryFromModel(g *model.Game) GameSummary {
	return GameSummary{
		GameID:        g.ID,
		GameName:      g.Name,
		WhiteUsername: g.WhiteUsername,
		BlackUsername: g.BlackUsername,
		GameOver:      g.State.GameOver,
	}
}

// Game is a game summary plus its full state
type Game struct {
	GameSummary
	Game chess.State `json:"game"`
}

// GameFromModel converts a model.Game
func GameFromModel(g *model.Game) Game {
	return Game{
		GameSummary: GameSummaryFromModel(g),
		Game:        g.State,
	}
}

// ListGamesResponse is the response for listing games
type ListGamesResponse struct {
	Games []GameSummary `json:"games"`
}

// ListGamesFromModel converts a slice of games, never returning a nil list
func ListGamesFromModel(games []*model.Game) ListGamesResponse {
	summaries := make([]GameSummary, len(games))
	for i, g := range games {
		summaries[i] = GameSummaryFromModel(g)
	}
	return ListGamesResponse{Games: summaries}
}

// CreateGameResponse is the response after creating a game
type CreateGameResponse struct {
	GameID model.GameID `json:"game_id"`
}

// HealthResponse is the response for the health check
type HealthResponse struct {
	Status string `json:"status"`
}
