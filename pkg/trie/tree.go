package trie

import (
	"encoding/binary"
	"errors"
)

// ErrMalformed is returned when an offset points outside the blob.
var ErrMalformed = errors.New("trie: offset out of range")

// Tree is a read-only view over a serialized trie. The backing slice must
// not be modified while the Tree is in use; a Tree is safe for concurrent
// use by multiple goroutines.
type Tree struct {
	data []byte
}

// Node is a position in a Tree: the byte offset of a node and its decoded
// head word. Nodes are plain values and are never allocated individually.
type Node struct {
	Offset uint64
	Head   Head
}

// New returns a Tree over data without copying it.
func New(data []byte) *Tree {
	return &Tree{data: data}
}

// Len returns the size of the blob in bytes.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.data)
}

// Bytes returns the backing blob.
func (t *Tree) Bytes() []byte {
	if t == nil {
		return nil
	}
	return t.data
}

func (t *Tree) word(off uint64) (uint32, bool) {
	if t == nil || off > uint64(len(t.data)) || uint64(len(t.data))-off < WordSize {
		return 0, false
	}
	return binary.BigEndian.Uint32(t.data[off:]), true
}

func (t *Tree) head(off uint64) (Head, bool) {
	w, ok := t.word(off)
	return Head(w), ok
}

// childOffset returns the byte offset of child i of the node at off, which
// has count children.
func (t *Tree) childOffset(off uint64, count, i int) (uint64, bool) {
	var delta uint32
	if i > 0 {
		var ok bool
		if delta, ok = t.word(off + uint64(i)*WordSize); !ok {
			return 0, false
		}
	}
	return off + (uint64(count)+uint64(delta))*WordSize, true
}

// Root returns the root node, or false when the blob is too short to hold one.
func (t *Tree) Root() (Node, bool) {
	return t.node(0)
}

func (t *Tree) node(off uint64) (Node, bool) {
	h, ok := t.head(off)
	if !ok {
		return Node{}, false
	}
	return Node{Offset: off, Head: h}, true
}

// Child returns child i of n.
func (t *Tree) Child(n Node, i int) (Node, bool) {
	count := n.Head.ChildCount()
	if i < 0 || i >= count {
		return Node{}, false
	}
	off, ok := t.childOffset(n.Offset, count, i)
	if !ok {
		return Node{}, false
	}
	return t.node(off)
}

// FindChild binary searches the children of n for code point cp.
func (t *Tree) FindChild(n Node, cp rune) (Node, bool) {
	low, high := 0, n.Head.ChildCount()
	for low < high {
		mid := int(uint(low+high) >> 1)
		child, ok := t.Child(n, mid)
		if !ok {
			return Node{}, false
		}
		c := child.Head.CodePoint()
		if uint32(cp) == uint32(c) {
			return child, true
		}
		if uint32(cp) < uint32(c) {
			high = mid
		} else {
			low = mid + 1
		}
	}
	return Node{}, false
}
