package trie

import (
	"encoding/binary"
	"fmt"
	"sort"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

// encode lays out raw words as a blob.
func encode(words ...uint32) []byte {
	out := make([]byte, len(words)*WordSize)
	for i, w := range words {
		binary.BigEndian.PutUint32(out[i*WordSize:], w)
	}
	return out
}

func mustBuild(t *testing.T, words ...string) []byte {
	t.Helper()
	data, err := FromWords(words...)
	require.NoError(t, err)
	return data
}

// goldBlob is "Gold" encoded by hand.
var goldBlob = encode(0x01000000, 0x01000047, 0x0100006f, 0x0100006c, 0x00800064)

func TestCompleteScenarios(t *testing.T) {
	goldfish := mustBuild(t, "Gold", "Goldfish")

	testCases := []struct {
		description string
		data        []byte
		query       string
		expected    []string
	}{
		{"lower case query", goldBlob, "go", []string{"Gold"}},
		{"upper case query", goldBlob, "GO", []string{"Gold"}},
		{"mixed case query", goldBlob, "gO", []string{"Gold"}},
		{"exact entry", goldBlob, "Gold", []string{"Gold"}},
		{"query longer than entry", goldBlob, "Golden", []string{}},
		{"entry and its extension", goldfish, "Gold", []string{"Gold", "Goldfish"}},
		{"inside the extension", goldfish, "goldF", []string{"Goldfish"}},
		{"no match at first character", goldBlob, "Silver", []string{}},
		{"no match later", goldBlob, "Gola", []string{}},
		{"empty query", goldfish, "", []string{"Gold", "Goldfish"}},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			require.Equal(t, tc.expected, Complete(tc.data, tc.query))
		})
	}
}

func TestCompleteCap(t *testing.T) {
	words := make([]string, 0, 150)
	for i := 0; i < 150; i++ {
		words = append(words, fmt.Sprintf("A%03d", i))
	}
	data := mustBuild(t, words...)

	got := Complete(data, "A")
	require.Len(t, got, MaxResults)
	require.Equal(t, words[:MaxResults], got)

	got = Complete(data, "a")
	require.Len(t, got, MaxResults)
	require.True(t, sort.StringsAreSorted(got))

	require.Equal(t, words[:5], New(data).CompleteN("A", 5))
	require.Len(t, New(data).CompleteN("A", 0), MaxResults)
	require.Len(t, New(data).CompleteN("A", 1000), MaxResults)
}

func TestCompleteEmptyQueryReturnsEverything(t *testing.T) {
	words := []string{"Arrow", "Bolt", "Candle", "Dagger", "Ember", "arrowhead"}
	data := mustBuild(t, words...)

	got := Complete(data, "")
	expected := append([]string(nil), words...)
	sort.Strings(expected)
	require.Equal(t, expected, got)
}

func TestCompleteEmptyWordAtRoot(t *testing.T) {
	data := mustBuild(t, "", "Axe")
	require.Equal(t, []string{"", "Axe"}, Complete(data, ""))
	require.Equal(t, []string{"Axe"}, Complete(data, "a"))
}

func TestCaseFallbackIsPerCharacter(t *testing.T) {
	data := mustBuild(t, "Sword", "Shield", "Spear")

	require.Equal(t, []string{"Sword"}, Complete(data, "sWORd"))
	require.Equal(t, []string{"Sword"}, Complete(data, "SWORD"))
	require.Equal(t, []string{"Shield", "Spear", "Sword"}, Complete(data, "s"))
	require.Empty(t, Complete(data, "sW0Rd"))
	require.Empty(t, Complete(data, "Sword!"))
}

func TestExactCaseBranchWins(t *testing.T) {
	// Descent is greedy: once the exact branch is taken the swapped sibling
	// is never revisited.
	data := mustBuild(t, "aB", "Ab")

	require.Equal(t, []string{"aB"}, Complete(data, "ab"))
	require.Equal(t, []string{"Ab"}, Complete(data, "AB"))
	require.Equal(t, []string{"Ab", "aB"}, Complete(data, ""))
}

func TestCaseSwapIsASCIIOnly(t *testing.T) {
	data := mustBuild(t, "Élan Blade", "Über Helm")

	require.Equal(t, []string{"Élan Blade"}, Complete(data, "Élan"))
	require.Equal(t, []string{"Élan Blade"}, Complete(data, "Élan b"))
	require.Empty(t, Complete(data, "élan"))
	require.Empty(t, Complete(data, "über"))

	for _, cp := range []rune{'[', '`', '{', '0', 'é', 'É'} {
		require.Equal(t, cp, swapCase(cp), "code point %U", cp)
	}
	// 0x40 sits inside the swapped range.
	require.Equal(t, '`', swapCase('@'))
	require.Equal(t, 'a', swapCase('A'))
	require.Equal(t, 'Z', swapCase('z'))
}

func TestCompleteMultiByteCodePoints(t *testing.T) {
	data := mustBuild(t, "🐉 Dragon Scale", "🐉 drake", "Dragon")

	require.Equal(t, []string{"🐉 Dragon Scale", "🐉 drake"}, Complete(data, "🐉"))
	require.Equal(t, []string{"🐉 Dragon Scale"}, Complete(data, "🐉 DR"))
	require.Equal(t, []string{"🐉 drake"}, Complete(data, "🐉 dR"))
	require.Equal(t, []string{"Dragon"}, Complete(data, "d"))
}

func TestCompleteMalformed(t *testing.T) {
	testCases := []struct {
		description string
		data        []byte
		query       string
	}{
		{"nil buffer", nil, ""},
		{"empty buffer", []byte{}, "a"},
		{"undersized buffer", []byte{0x01, 0x00}, ""},
		{"truncated root children", encode(0x02000000, 0x00000001), ""},
		{"delta past the end", encode(0x02000000, 0x0000ffff, 0x00800061), "b"},
		{"truncated leaf", goldBlob[:len(goldBlob)-2], "go"},
		{"missing leaf", goldBlob[:len(goldBlob)-WordSize], ""},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			require.NotPanics(t, func() {
				got := Complete(tc.data, tc.query)
				require.NotNil(t, got)
				require.Empty(t, got)
			})
		})
	}
}

func TestCollectionStopsAtCap(t *testing.T) {
	words := make([]string, 0, MaxResults+1)
	for i := 0; i <= MaxResults; i++ {
		words = append(words, fmt.Sprintf("A%03d", i))
	}
	data := mustBuild(t, words...)

	// The last word of the blob belongs to the entry past the cap. Dropping
	// it only matters if collection keeps going after the cap is reached.
	truncated := data[:len(data)-WordSize]
	require.Equal(t, words[:MaxResults], Complete(truncated, "A"))
	require.Empty(t, Complete(truncated, "A1"))
}

func TestCompleteProperties(t *testing.T) {
	words := []string{
		"Abacus", "Acid (vial)", "Adamantine Armor", "Alchemist's Fire", "Amulet",
		"Antitoxin", "Arrow", "Arrows (20)", "Backpack", "Ball Bearings",
		"Bag of Holding", "Bedroll", "Bell", "Blanket", "Block and Tackle",
		"Book", "Bottle, glass", "Bucket", "Caltrops", "Candle", "Crowbar",
		"Dagger", "Dart", "Longbow", "Longsword", "Mace", "Morningstar",
		"Potion of Healing", "Quarterstaff", "Rapier", "Rope, hempen (50 feet)",
		"Shield", "Shortbow", "Shortsword", "Sickle", "Sling", "Spear", "Sword",
		"Torch", "Trident", "Warhammer", "Whip", "abacus", "arrowhead",
	}
	data := mustBuild(t, words...)
	tree := New(data)

	queries := []string{"", "a", "A", "aR", "b", "BO", "long", "LONGS", "s", "sh", "sHoRt", "x", "rope, H"}
	for _, q := range queries {
		got := tree.Complete(q)

		require.LessOrEqual(t, len(got), MaxResults, "cap for %q", q)
		require.True(t, sort.StringsAreSorted(got), "order for %q: %v", q, got)
		for _, s := range got {
			require.True(t, tree.Contains(s), "terminal-only for %q: %q", q, s)
			require.True(t, hasFoldedPrefix(s, q), "prefix for %q: %q", q, s)
		}
		require.Equal(t, got, tree.Complete(q), "determinism for %q", q)
	}
}

// hasFoldedPrefix reports whether s starts with q when each code point may
// differ by ASCII case.
func hasFoldedPrefix(s, q string) bool {
	for _, qc := range q {
		sc, width := utf8.DecodeRuneInString(s)
		if width == 0 || (sc != qc && sc != swapCase(qc)) {
			return false
		}
		s = s[width:]
	}
	return true
}

func TestCompleteConcurrent(t *testing.T) {
	data := mustBuild(t, "Gold", "Goldfish", "Golem Heart", "Gong")
	tree := New(data)
	expected := tree.Complete("go")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if got := tree.Complete("go"); len(got) != len(expected) {
					t.Errorf("got %v, want %v", got, expected)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestHeadAccessors(t *testing.T) {
	h := Head(0x03800047)
	require.Equal(t, 'G', h.CodePoint())
	require.True(t, h.IsTerminal())
	require.Equal(t, 3, h.ChildCount())

	require.Equal(t, h, NewHead('G', true, 3))
	require.Equal(t, Head(0xff7fffff), NewHead(MaxCodePoint, false, MaxChildren))
	require.Equal(t, "head(cp=U+0047 terminal=true children=3)", h.String())
}
