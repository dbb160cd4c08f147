package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/mcoot/chessgame-go/internal/chess"
	"github.com/mcoot/chessgame-go/internal/model"
)

const playHelp = `Commands:
  move <from> <to> [q|r|b|n]  make a move, e.g. "move e2 e4" or "move a7 a8 q"
  legal <square>              show the legal moves of the piece on a square
  board                       redraw the board
  resign                      resign the game
  leave                       leave the game and disconnect
  help                        show this help`

func newPlayCmd() *cobra.Command {
	var (
		as     string
		linger time.Duration
	)

	cmd := &cobra.Command{
		Use:   "play <id>",
		Short: "Connect to a game and play or observe it",
		Long: `Connect to a game over the game socket and print every server message.

Commands are read from stdin, one per line:

` + playHelp + `

"legal" and "board" are answered locally from the last board the server sent.
When stdin ends, messages are still printed for --linger before disconnecting.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGameID(args[0])
			if err != nil {
				return err
			}
			perspective, err := chess.ParseColor(as)
			if err != nil {
				return err
			}
			return runPlay(cmd, model.GameID(id), perspective, linger)
		},
	}

	cmd.Flags().StringVar(&as, "as", "WHITE", "Draw the board from this side")
	cmd.Flags().DurationVar(&linger, "linger", time.Second, "How long to keep reading after stdin ends")

	return cmd
}

func runPlay(cmd *cobra.Command, gameID model.GameID, perspective chess.Color, linger time.Duration) error {
	ctx := cmd.Context()

	token := client.Token()
	if token == "" {
		return errors.New("not logged in")
	}

	wsURL, err := client.WebSocketURL()
	if err != nil {
		return err
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, _, err := websocket.Dial(dialCtx, wsURL, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	cancel()
	if err != nil {
		return fmt.Errorf("connect to %s: %w", wsURL, err)
	}
	defer conn.CloseNow()

	session := newPlaySession(conn, token, gameID, perspective, cmd.OutOrStdout(), newOutput(cmd).JSON())
	if err := session.send(ctx, model.CommandConnect, nil); err != nil {
		return err
	}

	readErr := make(chan error, 1)
	go func() {
		readErr <- session.readLoop(ctx)
	}()
	go session.pingLoop(ctx, 30*time.Second)

	lines := make(chan string)
	go scanLines(ctx, cmd.InOrStdin(), lines)

	for {
		select {
		case <-ctx.Done():
			return session.close(readErr)
		case err := <-readErr:
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				session.note("Connection closed by server")
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)
		case line, ok := <-lines:
			if !ok {
				select {
				case <-time.After(linger):
				case <-ctx.Done():
				case err := <-readErr:
					readErr <- err
				}
				return session.close(readErr)
			}
			leaving, err := session.handle(ctx, line)
			if err != nil {
				return err
			}
			if leaving {
				return session.close(readErr)
			}
		}
	}
}

// scanLines feeds non-blank lines of r to lines and closes it at EOF
func scanLines(ctx context.Context, r io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		select {
		case lines <- line:
		case <-ctx.Done():
			return
		}
	}
}

// playSession is one socket conversation. Output from the socket reader and
// from local commands is serialized through mu.
type playSession struct {
	conn        *websocket.Conn
	token       string
	gameID      model.GameID
	perspective chess.Color
	jsonOut     bool

	mu    sync.Mutex
	w     io.Writer
	state *chess.State
}

func newPlaySession(conn *websocket.Conn, token string, gameID model.GameID, perspective chess.Color, w io.Writer, jsonOut bool) *playSession {
	return &playSession{
		conn:        conn,
		token:       token,
		gameID:      gameID,
		perspective: perspective,
		jsonOut:     jsonOut,
		w:           w,
	}
}

func (s *playSession) send(ctx context.Context, typ model.CommandType, move *chess.Move) error {
	cmd := model.Command{
		Type:      typ,
		AuthToken: s.token,
		GameID:    s.gameID,
		Move:      move,
	}
	if err := wsjson.Write(ctx, s.conn, cmd); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	return nil
}

func (s *playSession) readLoop(ctx context.Context) error {
	for {
		var msg model.ServerMessage
		if err := wsjson.Read(ctx, s.conn, &msg); err != nil {
			return err
		}
		s.show(msg)
	}
}

func (s *playSession) pingLoop(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := s.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// close does the closing handshake and waits briefly for the reader to finish
func (s *playSession) close(readErr <-chan error) error {
	_ = s.conn.Close(websocket.StatusNormalClosure, "")
	select {
	case <-readErr:
	case <-time.After(2 * time.Second):
	}
	return nil
}

// handle runs one line of user input. leaving is true once LEAVE was sent.
func (s *playSession) handle(ctx context.Context, line string) (leaving bool, err error) {
	in, err := parseInput(line)
	if err != nil {
		s.note(err.Error())
		return false, nil
	}

	switch in.kind {
	case inputMove:
		move := in.move
		return false, s.send(ctx, model.CommandMakeMove, &move)
	case inputLegal:
		s.showLegal(in.square)
	case inputBoard:
		s.showBoard()
	case inputResign:
		return false, s.send(ctx, model.CommandResign, nil)
	case inputLeave:
		return true, s.send(ctx, model.CommandLeave, nil)
	case inputHelp:
		s.note(playHelp)
	}
	return false, nil
}

// show prints a server message and remembers the latest board
func (s *playSession) show(msg model.ServerMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.Type == model.MessageLoadGame && msg.Game != nil {
		state := *msg.Game
		s.state = &state
	}

	if s.jsonOut {
		_ = json.NewEncoder(s.w).Encode(msg)
		return
	}

	switch msg.Type {
	case model.MessageLoadGame:
		if s.state != nil {
			s.writeBoard(nil)
		}
	default:
		fmt.Fprintln(s.w, msg.Message)
	}
}

func (s *playSession) showBoard() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		s.noteLocked("No board received yet")
		return
	}
	if s.jsonOut {
		_ = json.NewEncoder(s.w).Encode(map[string]any{"game": s.state})
		return
	}
	s.writeBoard(nil)
}

func (s *playSession) showLegal(sq chess.Square) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		s.noteLocked("No board received yet")
		return
	}

	moves := s.state.LegalMoves(sq)
	names := make([]string, len(moves))
	for i, m := range moves {
		names[i] = m.String()
	}

	if s.jsonOut {
		_ = json.NewEncoder(s.w).Encode(map[string]any{"square": sq.String(), "moves": names})
		return
	}

	s.writeBoard(&sq)
	if len(names) == 0 {
		fmt.Fprintf(s.w, "No legal moves from %s\n", sq)
		return
	}
	fmt.Fprintf(s.w, "Legal moves from %s: %s\n", sq, strings.Join(names, " "))
}

// writeBoard requires mu and a non-nil state
func (s *playSession) writeBoard(origin *chess.Square) {
	fmt.Fprint(s.w, RenderBoard(*s.state, s.perspective, origin))
	if s.state.GameOver {
		fmt.Fprintln(s.w, "Game over")
	} else {
		fmt.Fprintf(s.w, "%s to move\n", s.state.Turn)
	}
}

func (s *playSession) note(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noteLocked(text)
}

func (s *playSession) noteLocked(text string) {
	if s.jsonOut {
		_ = json.NewEncoder(s.w).Encode(map[string]string{"message": text})
		return
	}
	fmt.Fprintln(s.w, text)
}

type inputKind int

const (
	inputMove inputKind = iota + 1
	inputLegal
	inputBoard
	inputResign
	inputLeave
	inputHelp
)

type input struct {
	kind   inputKind
	move   chess.Move
	square chess.Square
}

// parseInput parses one command line typed at the play prompt
func parseInput(line string) (input, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return input{}, errors.New("empty command")
	}

	verb, args := fields[0], fields[1:]
	switch verb {
	case "move", "m":
		move, err := parseMoveArgs(args)
		if err != nil {
			return input{}, err
		}
		return input{kind: inputMove, move: move}, nil
	case "legal", "l":
		if len(args) != 1 {
			return input{}, errors.New("usage: legal <square>")
		}
		sq, err := chess.ParseSquare(args[0])
		if err != nil {
			return input{}, err
		}
		return input{kind: inputLegal, square: sq}, nil
	case "board", "b":
		return input{kind: inputBoard}, nil
	case "resign":
		return input{kind: inputResign}, nil
	case "leave", "quit", "exit":
		return input{kind: inputLeave}, nil
	case "help", "?":
		return input{kind: inputHelp}, nil
	default:
		return input{}, fmt.Errorf("unknown command %q (try \"help\")", verb)
	}
}

// parseMoveArgs accepts "e2 e4", "e2 e4 q" or the joined forms "e2e4" and "e7e8q"
func parseMoveArgs(args []string) (chess.Move, error) {
	joined := strings.Join(args, "")
	if len(args) == 0 || len(joined) < 4 || len(joined) > 5 {
		return chess.Move{}, errors.New("usage: move <from> <to> [q|r|b|n]")
	}
	move, err := chess.ParseMove(joined)
	if err != nil {
		return chess.Move{}, err
	}
	if move.Promotion == chess.King || move.Promotion == chess.Pawn {
		return chess.Move{}, fmt.Errorf("cannot promote to %s", strings.ToLower(move.Promotion.String()))
	}
	return move, nil
}
