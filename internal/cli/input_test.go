package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/bastiangx/itemserve/pkg/suggest"
	"github.com/bastiangx/itemserve/pkg/trie"
	"github.com/stretchr/testify/require"
)

func newCompleter(t *testing.T) *suggest.Completer {
	t.Helper()
	data, err := trie.FromWords("Gold", "Goldfish", "Longsword", "Torch")
	require.NoError(t, err)
	return suggest.NewCompleter(trie.New(data))
}

func TestInputHandler(t *testing.T) {
	in := strings.NewReader("gol\n\nxyz\nT\nlongsword of doom\nTorch\n")
	var out bytes.Buffer

	h := NewInputHandler(newCompleter(t), 1, 10, 24, in, &out)
	require.NoError(t, h.Start(context.Background()))

	text := out.String()
	require.Contains(t, text, "Found 2 suggestions for prefix 'gol'")
	require.Contains(t, text, "1.")
	require.Contains(t, text, "Gold")
	require.Contains(t, text, "Goldfish")
	require.Contains(t, text, "No suggestions found for prefix: 'xyz'")
	require.Contains(t, text, "Found 1 suggestions for prefix 'T'")
	require.Contains(t, text, "query too long")
	require.Contains(t, text, "No suggestions found for prefix: 'Torch'")
}

func TestInputHandlerLimit(t *testing.T) {
	var out bytes.Buffer
	h := NewInputHandler(newCompleter(t), 0, 60, 1, strings.NewReader("g\n"), &out)
	require.NoError(t, h.Start(context.Background()))
	require.Contains(t, out.String(), "Found 1 suggestions for prefix 'g'")
	require.NotContains(t, out.String(), "Goldfish")
}

func TestInputHandlerTooShort(t *testing.T) {
	var out bytes.Buffer
	h := NewInputHandler(newCompleter(t), 3, 60, 10, strings.NewReader("go\n"), &out)
	require.NoError(t, h.Start(context.Background()))
	require.Contains(t, out.String(), "query too short")
}

func TestInputHandlerKeepsTrailingSpaces(t *testing.T) {
	data, err := trie.FromWords("Rope", "Rope, hempen (50 feet)", "Ropewalker Boots")
	require.NoError(t, err)
	completer := suggest.NewCompleter(trie.New(data))

	var out bytes.Buffer
	h := NewInputHandler(completer, 0, 60, 10, strings.NewReader("Rope, \r\n  \n"), &out)
	require.NoError(t, h.Start(context.Background()))

	text := out.String()
	require.Contains(t, text, "Found 1 suggestions for prefix 'Rope, '")
	require.Contains(t, text, "Rope, hempen (50 feet)")
	require.NotContains(t, text, "Ropewalker Boots")
}
