package suggest

import (
	"context"
	"sync/atomic"

	"github.com/bastiangx/itemserve/internal/utils"
	"github.com/bastiangx/itemserve/pkg/dictionary"
	"github.com/bastiangx/itemserve/pkg/trie"
	"github.com/charmbracelet/log"
)

// Suggestion is one completion with its 1-based position in trie order.
type Suggestion struct {
	Word string
	Rank uint16
}

// Options tune a Completer.
type Options struct {
	// MaxLimit caps the number of suggestions per request, at most trie.MaxResults.
	MaxLimit int
	// SuppressExact drops a result set that only repeats the query.
	SuppressExact bool
	// CacheSize is the number of queries kept in the hot cache, 0 disables it.
	CacheSize int
}

// DefaultOptions mirrors the defaults of the server config.
func DefaultOptions() Options {
	return Options{
		MaxLimit:      trie.MaxResults,
		SuppressExact: true,
		CacheSize:     512,
	}
}

// Completer answers completion requests against a dictionary loaded by a
// dictionary.Loader. It is safe for concurrent use.
type Completer struct {
	loader *dictionary.Loader
	cache  *HotCache
	opts   Options

	queries    atomic.Int64
	suppressed atomic.Int64
	notReady   atomic.Int64
}

// NewCompleter wraps an already loaded tree.
func NewCompleter(tree *trie.Tree) *Completer {
	return NewLazyCompleter(dictionary.NewStaticLoader("memory", tree), DefaultOptions())
}

// NewLazyCompleter serves completions from loader once it is done.
// Initialize starts the load.
func NewLazyCompleter(loader *dictionary.Loader, opts Options) *Completer {
	if opts.MaxLimit <= 0 || opts.MaxLimit > trie.MaxResults {
		opts.MaxLimit = trie.MaxResults
	}
	return &Completer{
		loader: loader,
		cache:  NewHotCache(opts.CacheSize),
		opts:   opts,
	}
}

// Initialize starts loading the dictionary in the background.
func (c *Completer) Initialize() error {
	c.InitializeContext(context.Background())
	return nil
}

// InitializeContext is Initialize with a context bounding the load.
func (c *Completer) InitializeContext(ctx context.Context) {
	c.loader.Start(ctx)
}

// Wait blocks until the dictionary is loaded, starting the load if needed.
func (c *Completer) Wait(ctx context.Context) error {
	c.loader.Start(context.Background())
	_, err := c.loader.Wait(ctx)
	return err
}

// Ready reports whether completions can be served.
func (c *Completer) Ready() bool {
	return c.loader.Ready()
}

// Loader returns the dictionary loader backing the completer.
func (c *Completer) Loader() *dictionary.Loader {
	return c.loader
}

// MaxLimit returns the effective per request cap.
func (c *Completer) MaxLimit() int {
	return c.opts.MaxLimit
}

// Complete returns up to limit suggestions for prefix. A limit outside
// 1..MaxLimit is treated as MaxLimit. While the dictionary is not loaded
// the result is empty.
func (c *Completer) Complete(prefix string, limit int) []Suggestion {
	c.queries.Add(1)

	tree := c.loader.Tree()
	if tree == nil {
		c.notReady.Add(1)
		log.Debugf("Dictionary not ready, no completions for '%s'", prefix)
		return []Suggestion{}
	}
	limit = utils.ClampLimit(limit, c.opts.MaxLimit)

	words, ok := c.cache.Get(prefix)
	if !ok {
		words = tree.CompleteN(prefix, trie.MaxResults)
		c.cache.Put(prefix, words)
	}

	if c.opts.SuppressExact && ShouldSuppress(prefix, words) {
		c.suppressed.Add(1)
		return []Suggestion{}
	}

	if len(words) > limit {
		words = words[:limit]
	}
	ranks := utils.CreateRankList(len(words))
	suggestions := make([]Suggestion, len(words))
	for i, w := range words {
		suggestions[i] = Suggestion{Word: w, Rank: ranks[i]}
	}
	return suggestions
}

func (c *Completer) Stats() map[string]int {
	ls := c.loader.Stats()
	stats := map[string]int{
		"entries":    ls.Entries,
		"nodes":      ls.Nodes,
		"bytes":      ls.Bytes,
		"maxDepth":   ls.MaxDepth,
		"queries":    int(c.queries.Load()),
		"suppressed": int(c.suppressed.Load()),
		"notReady":   int(c.notReady.Load()),
		"maxLimit":   c.opts.MaxLimit,
		"ready":      0,
	}
	if ls.Ready {
		stats["ready"] = 1
	}
	for k, v := range c.cache.Stats() {
		stats[k] = v
	}
	return stats
}
