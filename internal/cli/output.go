package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mcoot/chessgame-go/internal/chess"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	out    io.Writer
	errOut io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, out, errOut io.Writer) *Output {
	return &Output{format: format, out: out, errOut: errOut}
}

// JSON reports whether output is machine readable
func (o *Output) JSON() bool {
	return o.format == "json"
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.JSON() {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.JSON() {
		data, _ := json.Marshal(map[string]any{
			"error": map[string]string{"message": err.Error()},
		})
		fmt.Fprintln(o.errOut, string(data))
	} else {
		fmt.Fprintf(o.errOut, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.JSON() {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.out, string(data))
	} else {
		fmt.Fprintln(o.out, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case AuthResult:
		fmt.Fprintf(o.out, "User: %s\n", v.Username)
		fmt.Fprintf(o.out, "Token: %s\n", v.AuthToken)
	case GameList:
		o.printGameList(v)
	case GameDetail:
		o.printGameSummary(v.GameSummary)
		fmt.Fprintf(o.out, "To move: %s\n\n", v.Game.Turn)
		fmt.Fprint(o.out, RenderBoard(v.Game, chess.White, nil))
	case GameSummary:
		o.printGameSummary(v)
	case CreateGameResult:
		fmt.Fprintf(o.out, "Created game %d\n", v.GameID)
	case HealthResult:
		fmt.Fprintf(o.out, "Status: %s\n", v.Status)
		fmt.Fprintf(o.out, "Server: %s (%dms)\n", v.Server, v.LatencyMS)
	default:
		o.printJSON(data)
	}
}

// AuthResult is the response from registration and login
type AuthResult struct {
	Username  string `json:"username"`
	AuthToken string `json:"auth_token"`
}

// GameSummary response type
type GameSummary struct {
	GameID        int    `json:"game_id"`
	GameName      string `json:"game_name"`
	WhiteUsername string `json:"white_username,omitempty"`
	BlackUsername string `json:"black_username,omitempty"`
	GameOver      bool   `json:"game_over"`
}

// GameList response type
type GameList struct {
	Games []GameSummary `json:"games"`
}

// GameDetail is a game summary with its full state
type GameDetail struct {
	GameSummary
	Game chess.State `json:"game"`
}

// CreateGameResult response type
type CreateGameResult struct {
	GameID int `json:"game_id"`
}

// HealthResult response type
type HealthResult struct {
	Status    string `json:"status"`
	Server    string `json:"server"`
	LatencyMS int64  `json:"latency_ms"`
}

func seat(username string) string {
	if username == "" {
		return "(open)"
	}
	return username
}

func (o *Output) printGameSummary(g GameSummary) {
	fmt.Fprintf(o.out, "Game %d: %s\n", g.GameID, g.GameName)
	fmt.Fprintf(o.out, "White: %s\n", seat(g.WhiteUsername))
	fmt.Fprintf(o.out, "Black: %s\n", seat(g.BlackUsername))
	if g.GameOver {
		fmt.Fprintln(o.out, "Status: over")
	}
}

func (o *Output) printGameList(l GameList) {
	if len(l.Games) == 0 {
		fmt.Fprintln(o.out, "No games")
		return
	}
	fmt.Fprintf(o.out, "%-5s %-20s %-12s %-12s %s\n", "ID", "NAME", "WHITE", "BLACK", "STATUS")
	for _, g := range l.Games {
		status := "open"
		if g.GameOver {
			status = "over"
		}
		fmt.Fprintf(o.out, "%-5d %-20s %-12s %-12s %s\n", g.GameID, g.GameName, seat(g.WhiteUsername), seat(g.BlackUsername), status)
	}
}
