package trie

import "unicode/utf8"

// MaxResults caps the number of completions returned for one query.
const MaxResults = 100

// Complete returns up to MaxResults entries of the trie in data that start
// with query, matching every query character either exactly or with its
// ASCII case swapped. The result is in ascending code point order and is
// empty, never nil, when nothing matches or data is malformed.
func Complete(data []byte, query string) []string {
	return New(data).Complete(query)
}

// Complete is the method form of the package level Complete.
func (t *Tree) Complete(query string) []string {
	return t.CompleteN(query, MaxResults)
}

// CompleteN is Complete with a cap of n results. Values of n outside
// 1..MaxResults select MaxResults.
func (t *Tree) CompleteN(query string, n int) []string {
	if n <= 0 || n > MaxResults {
		n = MaxResults
	}
	node, base, ok := t.descend(query)
	if !ok {
		return []string{}
	}
	results := make([]string, 0, 8)
	c := t.newCollector(base, func(word []byte) bool {
		results = append(results, string(word))
		return len(results) < n
	})
	if err := c.collect(node); err != nil {
		return []string{}
	}
	return results
}

// descend follows query from the root and returns the node it ends on and
// the path spelled with the code points stored in the trie.
func (t *Tree) descend(query string) (Node, []byte, bool) {
	node, ok := t.Root()
	if !ok {
		return Node{}, nil, false
	}
	base := make([]byte, 0, len(query)+16)
	for i := 0; i < len(query); {
		cp, width := utf8.DecodeRuneInString(query[i:])
		child, found := t.FindChild(node, cp)
		if !found {
			if swapped := swapCase(cp); swapped != cp {
				child, found = t.FindChild(node, swapped)
			}
		}
		if !found {
			return Node{}, nil, false
		}
		node = child
		i += width
		base = utf8.AppendRune(base, child.Head.CodePoint())
	}
	return node, base, true
}

// swapCase toggles the case of ASCII letters and returns everything else
// unchanged. Non-ASCII letters are left alone on purpose.
func swapCase(cp rune) rune {
	switch {
	case cp >= 0x40 && cp <= 0x5a:
		return cp | 0x20
	case cp >= 0x61 && cp <= 0x7a:
		return cp &^ 0x20
	}
	return cp
}

// collector enumerates terminal entries depth first in sibling order until
// emit asks it to stop.
type collector struct {
	tree   *Tree
	buf    []byte
	emit   func(word []byte) bool
	budget int
	done   bool
}

func (t *Tree) newCollector(base []byte, emit func([]byte) bool) *collector {
	return &collector{
		tree: t,
		buf:  base,
		emit: emit,
		// A well formed blob holds at most one node per word.
		budget: t.Len() / WordSize,
	}
}

func (c *collector) collect(n Node) error {
	if c.done {
		return nil
	}
	if c.budget--; c.budget < 0 {
		return ErrMalformed
	}
	if n.Head.IsTerminal() && !c.emit(c.buf) {
		c.done = true
		return nil
	}
	for i := 0; i < n.Head.ChildCount() && !c.done; i++ {
		child, ok := c.tree.Child(n, i)
		if !ok {
			return ErrMalformed
		}
		mark := len(c.buf)
		c.buf = utf8.AppendRune(c.buf, child.Head.CodePoint())
		if err := c.collect(child); err != nil {
			return err
		}
		c.buf = c.buf[:mark]
	}
	return nil
}
