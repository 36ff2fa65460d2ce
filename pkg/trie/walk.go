package trie

// Stats describes the shape of a Tree.
type Stats struct {
	Nodes     int
	Terminals int
	MaxDepth  int
	Bytes     int
}

// Walk calls fn for every entry of the trie in ascending order until fn
// returns false. Unlike Complete it has no cap and reports malformed blobs.
func (t *Tree) Walk(fn func(word string) bool) error {
	root, ok := t.Root()
	if !ok {
		if t.Len() == 0 {
			return nil
		}
		return ErrMalformed
	}
	c := t.newCollector(nil, func(word []byte) bool {
		return fn(string(word))
	})
	return c.collect(root)
}

// Contains reports whether word is an entry of the trie, comparing case
// sensitively.
func (t *Tree) Contains(word string) bool {
	node, ok := t.Root()
	if !ok {
		return false
	}
	for _, cp := range word {
		if node, ok = t.FindChild(node, cp); !ok {
			return false
		}
	}
	return node.Head.IsTerminal()
}

// Stats counts the nodes and entries of the trie.
func (t *Tree) Stats() (Stats, error) {
	st := Stats{Bytes: t.Len()}
	root, ok := t.Root()
	if !ok {
		if t.Len() == 0 {
			return st, nil
		}
		return st, ErrMalformed
	}

	type frame struct {
		node  Node
		depth int
	}
	budget := t.Len() / WordSize
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if st.Nodes++; st.Nodes > budget {
			return st, ErrMalformed
		}
		if f.node.Head.IsTerminal() {
			st.Terminals++
		}
		if f.depth > st.MaxDepth {
			st.MaxDepth = f.depth
		}
		for i := 0; i < f.node.Head.ChildCount(); i++ {
			child, ok := t.Child(f.node, i)
			if !ok {
				return st, ErrMalformed
			}
			stack = append(stack, frame{node: child, depth: f.depth + 1})
		}
	}
	return st, nil
}

