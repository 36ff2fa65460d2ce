package trie

import "fmt"

const (
	// WordSize is the width in bytes of every word in the blob.
	WordSize = 4

	codePointMask = 0x7fffff
	terminalBit   = 0x800000
	countShift    = 24

	// MaxCodePoint is the largest code point a head word can hold.
	MaxCodePoint = codePointMask
	// MaxChildren is the largest child count a head word can hold.
	MaxChildren = 0xff
)

// Head is a decoded node head word.
type Head uint32

// NewHead packs a head word. The caller keeps cp and children within range.
func NewHead(cp rune, terminal bool, children int) Head {
	h := uint32(children)<<countShift | uint32(cp)&codePointMask
	if terminal {
		h |= terminalBit
	}
	return Head(h)
}

// CodePoint returns the code point labelling the edge into the node.
func (h Head) CodePoint() rune {
	return rune(uint32(h) & codePointMask)
}

// IsTerminal reports whether the path to the node spells a full entry.
func (h Head) IsTerminal() bool {
	return uint32(h)&terminalBit != 0
}

// ChildCount returns the number of children of the node.
func (h Head) ChildCount() int {
	return int(uint32(h) >> countShift)
}

func (h Head) String() string {
	return fmt.Sprintf("head(cp=%U terminal=%t children=%d)", h.CodePoint(), h.IsTerminal(), h.ChildCount())
}
