package redis

import (
	"fmt"

	"github.com/mcoot/chessgame-go/internal/model"
)

// keyspace builds the keys written under one prefix
type keyspace struct {
	prefix string
}

func newKeyspace(prefix string) keyspace {
	if prefix == "" {
		prefix = DefaultConfig().KeyPrefix
	}
	return keyspace{prefix: prefix}
}

// user holds a JSON model.User
func (k keyspace) user(username string) string {
	return fmt.Sprintf("%s:user:%s", k.prefix, username)
}

// auth holds a JSON model.AuthData and expires with it
func (k keyspace) auth(token string) string {
	return fmt.Sprintf("%s:auth:%s", k.prefix, token)
}

// game holds a JSON model.Game
func (k keyspace) game(id model.GameID) string {
	return fmt.Sprintf("%s:game:%d", k.prefix, id)
}

// gamesIndex is a sorted set of game keys scored by id
func (k keyspace) gamesIndex() string {
	return k.prefix + ":idx:games"
}

// gameSeq is the game id counter. Clear leaves it alone.
func (k keyspace) gameSeq() string {
	return k.prefix + ":seq:game"
}

// all matches every key under the prefix
func (k keyspace) all() string {
	return k.prefix + ":*"
}
