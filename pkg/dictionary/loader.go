// Package dictionary fetches the completion trie asset once per process and
// hands out a read-only view of it.
package dictionary

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bastiangx/itemserve/pkg/trie"
	"github.com/charmbracelet/log"
)

// ErrNotLoaded is returned by Wait when the loader was never started.
var ErrNotLoaded = errors.New("dictionary loader not started")

// Loader loads a dictionary asset in the background exactly once. After the
// load finishes the tree never changes, so it can be shared freely.
type Loader struct {
	source     Source
	maxRetries int
	retryDelay time.Duration

	once    sync.Once
	started chan struct{}
	done    chan struct{}

	tree  *trie.Tree
	err   error
	stats LoaderStats
	mu    sync.RWMutex
}

// LoaderStats provides statistics about the loading process
type LoaderStats struct {
	Source    string
	Format    string
	Bytes     int
	Entries   int
	Nodes     int
	MaxDepth  int
	Attempts  int
	LoadTime  time.Duration
	IsLoading bool
	Ready     bool
	Error     string
}

// LoaderOption tweaks a Loader.
type LoaderOption func(*Loader)

// WithRetries retries failed fetches up to n extra times, waiting delay
// times the attempt number in between.
func WithRetries(n int, delay time.Duration) LoaderOption {
	return func(l *Loader) {
		l.maxRetries = n
		l.retryDelay = delay
	}
}

// NewLoader creates a loader for src. Nothing is fetched until Start.
func NewLoader(src Source, opts ...LoaderOption) *Loader {
	l := &Loader{
		source:     src,
		maxRetries: 2,
		retryDelay: time.Second,
		started:    make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.stats.Source = src.Name()
	return l
}

// NewStaticLoader returns a loader that is already done with tree.
func NewStaticLoader(name string, tree *trie.Tree) *Loader {
	l := NewLoader(FileSource{Path: name})
	l.once.Do(func() {
		close(l.started)
		l.finish(tree, nil, time.Now())
	})
	return l
}

// Start begins loading in a background goroutine. Calling it again has no effect.
func (l *Loader) Start(ctx context.Context) {
	l.once.Do(func() {
		close(l.started)
		l.mu.Lock()
		l.stats.IsLoading = true
		l.mu.Unlock()
		go l.run(ctx)
	})
}

// Wait blocks until the load finished or ctx is done.
func (l *Loader) Wait(ctx context.Context) (*trie.Tree, error) {
	select {
	case <-l.started:
	default:
		return nil, ErrNotLoaded
	}
	select {
	case <-l.done:
		l.mu.RLock()
		defer l.mu.RUnlock()
		return l.tree, l.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Load starts loading if needed and waits for the result.
func (l *Loader) Load(ctx context.Context) (*trie.Tree, error) {
	l.Start(ctx)
	return l.Wait(ctx)
}

// Done is closed once loading finished, successfully or not.
func (l *Loader) Done() <-chan struct{} {
	return l.done
}

// Ready reports whether a tree is available.
func (l *Loader) Ready() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tree != nil
}

// Tree returns the loaded tree, or nil while loading or after a failure.
func (l *Loader) Tree() *trie.Tree {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tree
}

// Err returns the load error, if any.
func (l *Loader) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// Stats returns a snapshot of the loader statistics.
func (l *Loader) Stats() LoaderStats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stats
}

// Source returns the asset source.
func (l *Loader) Source() Source {
	return l.source
}

func (l *Loader) run(ctx context.Context) {
	start := time.Now()
	var (
		raw []byte
		err error
	)
	for attempt := 0; attempt <= l.maxRetries; attempt++ {
		l.mu.Lock()
		l.stats.Attempts = attempt + 1
		l.mu.Unlock()

		raw, err = l.source.Fetch(ctx)
		if err == nil || ctx.Err() != nil || attempt == l.maxRetries {
			break
		}
		log.Warnf("Failed to fetch %s: %v. Retrying (attempt %d/%d)", l.source.Name(), err, attempt+2, l.maxRetries+1)
		select {
		case <-time.After(time.Duration(attempt+1) * l.retryDelay):
		case <-ctx.Done():
		}
	}
	if err != nil {
		l.finish(nil, fmt.Errorf("loading %s: %w", l.source.Name(), err), start)
		return
	}

	format := DetectFormat(l.source.Name())
	if format == FormatUnknown {
		log.Debugf("No known extension on %s, assuming a raw trie", l.source.Name())
		format = FormatTrie
	}
	data, err := Decode(format, raw)
	if err != nil {
		l.finish(nil, fmt.Errorf("decoding %s: %w", l.source.Name(), err), start)
		return
	}
	if err := ValidateTrie(data); err != nil {
		log.Warnf("Dictionary %s looks malformed: %v. Completions may be empty", l.source.Name(), err)
	}

	l.mu.Lock()
	l.stats.Format = format.String()
	l.mu.Unlock()
	l.finish(trie.New(data), nil, start)
}

func (l *Loader) finish(tree *trie.Tree, err error, start time.Time) {
	var st trie.Stats
	if tree != nil {
		var statErr error
		if st, statErr = tree.Stats(); statErr != nil {
			log.Warnf("Dictionary %s: %v", l.source.Name(), statErr)
		}
	}

	l.mu.Lock()
	l.tree = tree
	l.err = err
	l.stats.IsLoading = false
	l.stats.Ready = tree != nil
	l.stats.LoadTime = time.Since(start)
	l.stats.Bytes = tree.Len()
	l.stats.Entries = st.Terminals
	l.stats.Nodes = st.Nodes
	l.stats.MaxDepth = st.MaxDepth
	if err != nil {
		l.stats.Error = err.Error()
	}
	l.mu.Unlock()
	close(l.done)

	if err != nil {
		log.Errorf("Failed to load dictionary: %v", err)
		return
	}
	log.Debugf("Loaded %s: %d entries, %d nodes, %d bytes in %v",
		l.source.Name(), st.Terminals, st.Nodes, tree.Len(), l.stats.LoadTime)
}
