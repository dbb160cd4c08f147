package model

import "github.com/mcoot/chessgame-go/internal/chess"

// CommandType identifies a client command on the game socket
type CommandType string

const (
	CommandConnect  CommandType = "CONNECT"
	CommandMakeMove CommandType = "MAKE_MOVE"
	CommandLeave    CommandType = "LEAVE"
	CommandResign   CommandType = "RESIGN"
)

// Command is one inbound message. Move is only set for MAKE_MOVE.
type Command struct {
	Type      CommandType `json:"commandType"`
	AuthToken string      `json:"authToken"`
	GameID    GameID      `json:"gameID"`
	Move      *chess.Move `json:"move,omitempty"`
}

// ServerMessageType identifies an outbound message
type ServerMessageType string

const (
	MessageLoadGame     ServerMessageType = "LOAD_GAME"
	MessageNotification ServerMessageType = "NOTIFICATION"
	MessageError        ServerMessageType = "ERROR"
)

// ServerMessage is one outbound message. Game is set for LOAD_GAME, Message otherwise.
type ServerMessage struct {
	Type    ServerMessageType `json:"serverMessageType"`
	Game    *chess.State      `json:"game,omitempty"`
	Message string            `json:"message,omitempty"`
}

// LoadGame builds a LOAD_GAME message carrying a snapshot of state
func LoadGame(state chess.State) ServerMessage {
	return ServerMessage{Type: MessageLoadGame, Game: &state}
}

// Notification builds a NOTIFICATION message
func Notification(text string) ServerMessage {
	return ServerMessage{Type: MessageNotification, Message: text}
}

// ErrorMessage builds an ERROR message
func ErrorMessage(text string) ServerMessage {
	return ServerMessage{Type: MessageError, Message: text}
}
