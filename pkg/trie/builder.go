package trie

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/tchap/go-patricia/v2/patricia"
)

var (
	ErrInvalidUTF8     = errors.New("trie: word is not valid UTF-8")
	ErrTooManyChildren = errors.New("trie: node has more children than a head word can count")
	ErrTooLarge        = errors.New("trie: child delta does not fit in 32 bits")
)

// Builder collects words and serializes them into the binary trie format.
// It is the offline counterpart of Tree and is not safe for concurrent use.
type Builder struct {
	words        *patricia.Trie
	count        int
	rootTerminal bool
}

type buildNode struct {
	cp       rune
	terminal bool
	children []int
	size     uint64 // in words
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{words: patricia.NewTrie()}
}

// FromWords builds a blob holding exactly the given words.
func FromWords(words ...string) ([]byte, error) {
	b := NewBuilder()
	for _, w := range words {
		if err := b.Add(w); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

// Add stages word. Adding a word twice is a no-op and the empty word marks
// the root as terminal.
func (b *Builder) Add(word string) error {
	if !utf8.ValidString(word) {
		return fmt.Errorf("%w: %q", ErrInvalidUTF8, word)
	}
	if word == "" {
		if !b.rootTerminal {
			b.rootTerminal = true
			b.count++
		}
		return nil
	}
	if b.words.Insert(patricia.Prefix(word), true) {
		b.count++
	}
	return nil
}

// AddFrom stages one word per line read from r. Trailing carriage returns
// are dropped and blank lines skipped. It returns the number of lines added.
func (b *Builder) AddFrom(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	added := 0
	line := 0
	for scanner.Scan() {
		line++
		word := strings.TrimSuffix(scanner.Text(), "\r")
		if word == "" {
			continue
		}
		if err := b.Add(word); err != nil {
			return added, fmt.Errorf("line %d: %w", line, err)
		}
		added++
	}
	if err := scanner.Err(); err != nil {
		return added, fmt.Errorf("reading word list: %w", err)
	}
	return added, nil
}

// Len returns the number of distinct words staged.
func (b *Builder) Len() int {
	return b.count
}

// Contains reports whether word has been staged.
func (b *Builder) Contains(word string) bool {
	if word == "" {
		return b.rootTerminal
	}
	return b.words.Match(patricia.Prefix(word))
}

// Build serializes the staged words.
func (b *Builder) Build() ([]byte, error) {
	// Visit walks in byte order, and byte order of valid UTF-8 is code
	// point order, so words arrive sorted for assemble.
	words := make([]string, 0, b.count)
	err := b.words.Visit(func(p patricia.Prefix, _ patricia.Item) error {
		words = append(words, string(p))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collecting words: %w", err)
	}

	nodes := assemble(words, b.rootTerminal)
	total, err := measure(nodes, 0)
	if err != nil {
		return nil, err
	}
	if total > math.MaxInt/WordSize {
		return nil, ErrTooLarge
	}
	out := make([]byte, total*WordSize)
	if _, err := write(nodes, 0, out, 0); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteTo builds the blob and writes it to w.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	data, err := b.Build()
	if err != nil {
		return 0, err
	}
	return io.Copy(w, bytes.NewReader(data))
}

// assemble turns sorted words into a node arena with the root at index 0.
// Because the input is sorted, a new child is always greater than its
// existing siblings and a shared prefix always continues through the last one.
func assemble(words []string, rootTerminal bool) []buildNode {
	nodes := []buildNode{{terminal: rootTerminal}}
	for _, word := range words {
		cur := 0
		for _, r := range word {
			kids := nodes[cur].children
			if n := len(kids); n > 0 && nodes[kids[n-1]].cp == r {
				cur = kids[n-1]
				continue
			}
			nodes = append(nodes, buildNode{cp: r})
			next := len(nodes) - 1
			nodes[cur].children = append(nodes[cur].children, next)
			cur = next
		}
		nodes[cur].terminal = true
	}
	return nodes
}

// measure fills in node sizes below i and returns the size of i in words.
func measure(nodes []buildNode, i int) (uint64, error) {
	n := &nodes[i]
	if len(n.children) > MaxChildren {
		return 0, fmt.Errorf("%w: %d children under %U", ErrTooManyChildren, len(n.children), n.cp)
	}
	size := uint64(1)
	if len(n.children) > 1 {
		size += uint64(len(n.children) - 1)
	}
	for _, c := range n.children {
		s, err := measure(nodes, c)
		if err != nil {
			return 0, err
		}
		size += s
	}
	nodes[i].size = size
	return size, nil
}

// write serializes node i at word offset off and returns the next free offset.
func write(nodes []buildNode, i int, out []byte, off uint64) (uint64, error) {
	n := nodes[i]
	put := func(at uint64, v uint32) {
		binary.BigEndian.PutUint32(out[at*WordSize:], v)
	}
	put(off, uint32(NewHead(n.cp, n.terminal, len(n.children))))
	off++

	var delta uint64
	for k, c := range n.children {
		if k > 0 {
			if delta > math.MaxUint32 {
				return 0, ErrTooLarge
			}
			put(off, uint32(delta))
			off++
		}
		delta += nodes[c].size
	}
	for _, c := range n.children {
		var err error
		if off, err = write(nodes, c, out, off); err != nil {
			return 0, err
		}
	}
	return off, nil
}
