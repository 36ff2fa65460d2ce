/*
Package trie reads and builds the compact binary completion trie.

The trie is a single flat blob of 4-byte big-endian words. It is never
deserialized: a node is identified by its byte offset into the blob and all
navigation is offset arithmetic over the backing []byte.

# Layout

Every node starts with a head word:

	[8 bits child count][1 bit terminal][23 bits code point]

The code point labels the edge from the parent into the node (the root's is
unused). The terminal bit is set when the path from the root spells a full
entry. For a node with C children the head word is followed by C-1 delta
words. The children region begins right after those C words; child 0 sits at
its start and child i sits delta[i] words further along. Siblings are stored
in ascending code point order.

	"Gold" encodes to five words:

	01000000  root, 1 child
	01000047  'G', 1 child
	0100006f  'o', 1 child
	0100006c  'l', 1 child
	00800064  'd', terminal

# Completion

Complete walks the query one code point at a time. Each step binary searches
the children for the exact code point and, failing that, for the ASCII case
swapped one. Once the query is consumed it collects up to MaxResults terminal
entries below the reached node in ascending order. Every malformed offset
degrades to an empty result.

	tree := trie.New(data)
	items := tree.Complete("longs") // ["Longship", "Longsword", ...]

Builder produces blobs in this format from a word list.
*/
package trie
