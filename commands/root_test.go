package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd("test")

	want := map[string]bool{
		"pull": false, "sync": false, "chat": false, "sessions": false, "version": false,
	}
	for _, sub := range root.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		assert.True(t, found, "missing subcommand %q", name)
	}
}

func TestSessionsSubcommands(t *testing.T) {
	sessions := findCommand(t, NewRootCmd("test"), "sessions")

	names := make([]string, 0, 3)
	for _, sub := range sessions.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"list", "clear", "delete"}, names)
}

func findCommand(t *testing.T, root *cobra.Command, name string) *cobra.Command {
	t.Helper()
	for _, sub := range root.Commands() {
		if sub.Name() == name {
			return sub
		}
	}
	require.FailNow(t, "command not found", name)
	return nil
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactlyten", truncate("exactlyten", 10))
	assert.Equal(t, "a very ...", truncate("a very long problem title", 10))
}
