package suggest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bastiangx/itemserve/pkg/dictionary"
	"github.com/bastiangx/itemserve/pkg/trie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTree(t *testing.T, words ...string) *trie.Tree {
	t.Helper()
	data, err := trie.FromWords(words...)
	require.NoError(t, err)
	return trie.New(data)
}

func words(s []Suggestion) []string {
	out := make([]string, len(s))
	for i, sg := range s {
		out[i] = sg.Word
	}
	return out
}

func TestCompleterRanksInTrieOrder(t *testing.T) {
	c := NewCompleter(newTree(t, "Gold", "Goldfish", "Gong", "Longsword"))

	got := c.Complete("go", 0)
	require.Equal(t, []Suggestion{
		{Word: "Gold", Rank: 1},
		{Word: "Goldfish", Rank: 2},
		{Word: "Gong", Rank: 3},
	}, got)

	require.Equal(t, []string{"Gold", "Goldfish"}, words(c.Complete("go", 2)))
	require.Empty(t, c.Complete("x", 10))
	require.NotNil(t, c.Complete("x", 10))
}

func TestCompleterLimitClamp(t *testing.T) {
	items := make([]string, 150)
	for i := range items {
		items[i] = fmt.Sprintf("Arrow %03d", i)
	}
	tree := newTree(t, items...)
	c := NewCompleter(tree)

	testCases := []struct {
		limit    int
		expected int
	}{
		{0, 100},
		{-3, 100},
		{1, 1},
		{24, 24},
		{100, 100},
		{500, 100},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprint(tc.limit), func(t *testing.T) {
			got := c.Complete("arrow", tc.limit)
			require.Len(t, got, tc.expected)
			require.Equal(t, uint16(tc.expected), got[len(got)-1].Rank)
		})
	}

	capped := NewLazyCompleter(dictionary.NewStaticLoader("memory", tree), Options{MaxLimit: 10})
	require.Len(t, capped.Complete("arrow", 50), 10)
	require.Equal(t, 10, capped.MaxLimit())
}

func TestCompleterSuppressExact(t *testing.T) {
	tree := newTree(t, "Gold", "Goldfish", "Torch")

	c := NewCompleter(tree)
	require.Empty(t, c.Complete("Torch", 0))
	require.Equal(t, []string{"Torch"}, words(c.Complete("torch", 0)))
	require.Equal(t, []string{"Gold", "Goldfish"}, words(c.Complete("Gold", 0)))
	require.Equal(t, 1, c.Stats()["suppressed"])

	opts := DefaultOptions()
	opts.SuppressExact = false
	keep := NewLazyCompleter(dictionary.NewStaticLoader("memory", tree), opts)
	require.Equal(t, []string{"Torch"}, words(keep.Complete("Torch", 0)))
}

func TestCompleterCache(t *testing.T) {
	c := NewCompleter(newTree(t, "Gold", "Goldfish", "Gong"))

	first := c.Complete("go", 2)
	second := c.Complete("go", 0)
	require.Equal(t, words(first), words(second)[:2])
	require.Len(t, second, 3)

	stats := c.Stats()
	assert.Equal(t, 1, stats["cacheHits"])
	assert.Equal(t, 1, stats["cacheMisses"])
	assert.Equal(t, 1, stats["cacheEntries"])
	assert.Equal(t, 2, stats["queries"])
	assert.Equal(t, 1, stats["ready"])
	assert.Equal(t, 3, stats["entries"])

	opts := DefaultOptions()
	opts.CacheSize = 0
	uncached := NewLazyCompleter(dictionary.NewStaticLoader("memory", newTree(t, "Gold")), opts)
	require.Equal(t, []string{"Gold"}, words(uncached.Complete("g", 0)))
	require.Equal(t, 0, uncached.Stats()["cacheEntries"])
}

func TestLazyCompleter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.txt")
	require.NoError(t, os.WriteFile(path, []byte("Gold\nGoldfish\nLongsword\n"), 0644))

	c := NewLazyCompleter(dictionary.NewLoader(dictionary.FileSource{Path: path}), DefaultOptions())
	require.False(t, c.Ready())
	require.Empty(t, c.Complete("gold", 0))
	require.Equal(t, 1, c.Stats()["notReady"])

	require.NoError(t, c.Initialize())
	require.NoError(t, c.Wait(context.Background()))
	require.True(t, c.Ready())
	require.Equal(t, []string{"Gold", "Goldfish"}, words(c.Complete("gold", 0)))
}

func TestCompleterConcurrentUse(t *testing.T) {
	c := NewCompleter(newTree(t, "Gold", "Goldfish", "Gong", "Longsword", "Lantern"))
	expected := map[string][]string{
		"g": {"Gold", "Goldfish", "Gong"},
		"L": {"Lantern", "Longsword"},
		"z": {},
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for q, want := range expected {
				assert.Equal(t, want, words(c.Complete(q, 0)))
			}
		}()
	}
	wg.Wait()
}

type blockingSource struct {
	gate chan struct{}
	data []byte
	fail bool
}

func (s *blockingSource) Name() string { return "items.bin" }

func (s *blockingSource) Fetch(ctx context.Context) ([]byte, error) {
	select {
	case <-s.gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if s.fail {
		return nil, errors.New("boom")
	}
	return s.data, nil
}

func TestSessionLatestQueryWins(t *testing.T) {
	data, err := trie.FromWords("Gold", "Goldfish", "Longsword")
	require.NoError(t, err)
	src := &blockingSource{gate: make(chan struct{}), data: data}
	c := NewLazyCompleter(dictionary.NewLoader(src), DefaultOptions())
	s := NewSession(c)

	type answer struct {
		suggestions []Suggestion
		current     bool
	}
	first := make(chan answer, 1)
	go func() {
		sg, ok := s.Submit(context.Background(), "gold", 0)
		first <- answer{sg, ok}
	}()
	require.Eventually(t, func() bool { return s.Generation() == 1 }, time.Second, time.Millisecond)

	second := make(chan answer, 1)
	go func() {
		sg, ok := s.Submit(context.Background(), "long", 0)
		second <- answer{sg, ok}
	}()
	require.Eventually(t, func() bool { return s.Generation() == 2 }, time.Second, time.Millisecond)

	close(src.gate)

	a := <-first
	require.False(t, a.current)
	require.Empty(t, a.suggestions)

	b := <-second
	require.True(t, b.current)
	require.Equal(t, []string{"Longsword"}, words(b.suggestions))

	sg, ok := s.Submit(context.Background(), "Gold", 0)
	require.True(t, ok)
	require.Equal(t, []string{"Gold", "Goldfish"}, words(sg))
}

func TestSessionLoadFailure(t *testing.T) {
	src := &blockingSource{gate: make(chan struct{}), fail: true}
	close(src.gate)
	loader := dictionary.NewLoader(src, dictionary.WithRetries(0, 0))
	s := NewSession(NewLazyCompleter(loader, DefaultOptions()))

	sg, ok := s.Submit(context.Background(), "gold", 0)
	require.True(t, ok)
	require.Empty(t, sg)
	require.Error(t, loader.Err())
}

func TestSessionContextCancel(t *testing.T) {
	src := &blockingSource{gate: make(chan struct{})}
	s := NewSession(NewLazyCompleter(dictionary.NewLoader(src), DefaultOptions()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	sg, ok := s.Submit(ctx, "gold", 0)
	require.True(t, ok)
	require.Empty(t, sg)
}
