package msgcat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTexts(t *testing.T) {
	c := Default()

	tests := []struct {
		name string
		key  string
		vars Vars
		want string
	}{
		{
			name: "player connects",
			key:  KeyConnectPlayer,
			vars: Vars{User: "alice", Color: "WHITE"},
			want: "alice is now playing as WHITE.",
		},
		{
			name: "observer connects",
			key:  KeyConnectObserver,
			vars: Vars{User: "carol"},
			want: "carol is now observing the game.",
		},
		{
			name: "plain move",
			key:  KeyMove,
			vars: Vars{User: "alice", From: "e2", To: "e4"},
			want: "alice moved e2 to e4.",
		},
		{
			name: "promotion",
			key:  KeyMove,
			vars: Vars{User: "alice", From: "a7", To: "a8", Promotion: "QUEEN"},
			want: "alice moved a7 to a8 and promoted to QUEEN.",
		},
		{
			name: "check",
			key:  KeyCheck,
			vars: Vars{User: "bob"},
			want: "bob is in check.",
		},
		{
			name: "checkmate",
			key:  KeyCheckmate,
			vars: Vars{User: "bob", Opponent: "alice"},
			want: "bob is in checkmate. alice wins!",
		},
		{
			name: "stalemate",
			key:  KeyStalemate,
			vars: Vars{User: "bob"},
			want: "bob is in stalemate. The game is a draw.",
		},
		{
			name: "leave",
			key:  KeyLeave,
			vars: Vars{User: "bob"},
			want: "bob left the game.",
		},
		{
			name: "resign",
			key:  KeyResign,
			vars: Vars{User: "bob", Opponent: "alice"},
			want: "bob resigned. alice wins!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Render(tt.key, tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrorTexts(t *testing.T) {
	c := Default()

	assert.Equal(t, "Error: unauthorized", c.Error(KeyErrorUnauthorized))
	assert.Equal(t, "Error: it is not your turn", c.Error(KeyErrorNotYourTurn))
	assert.Equal(t, "Error: game is over", c.Error(KeyErrorGameOver))
	assert.Equal(t, "Error: game not found", c.Error(KeyErrorGameNotFound))
	assert.Equal(t, "Error: something odd", c.ErrorText("something odd"))
}

func TestRenderUnknownKey(t *testing.T) {
	c := Default()

	_, err := c.Render("notify.nope", Vars{})
	require.Error(t, err)
	assert.Equal(t, "notify.nope", c.Text("notify.nope", Vars{}))
}

func TestRenderMissingMapKeyFails(t *testing.T) {
	c := Default()

	_, err := c.Render(KeyCheck, map[string]string{})
	require.Error(t, err)
}

func TestOverridesReplaceDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte(`
notify:
  check: "Check against {{.User}}!"
`), 0o644))

	c, err := New(dir)
	require.NoError(t, err)

	got, err := c.Render(KeyCheck, Vars{User: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "Check against bob!", got)

	// untouched keys keep their defaults
	got, err = c.Render(KeyLeave, Vars{User: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "bob left the game.", got)
}

func TestOverrideDuplicateKeysRejected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("notify:\n  leave: \"a\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte("notify:\n  leave: \"b\"\n"), 0o644))

	_, err := New(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate override key")
}

func TestOverrideBadTemplateRejected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("notify:\n  leave: \"{{.User\"\n"), 0o644))

	_, err := New(dir)
	require.Error(t, err)
}

func TestOverrideNonStringLeafRejected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("notify:\n  leave: 3\n"), 0o644))

	_, err := New(dir)
	require.Error(t, err)
}

func TestOverrideDirMissing(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestOverrideDirIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("not yaml: ["), 0o644))

	_, err := New(dir)
	require.NoError(t, err)
}
