package trie_test

import (
	"testing"

	"github.com/fschiettecatte/mpscore/trie"
	"github.com/stretchr/testify/require"
)

func TestAddAndLookup(t *testing.T) {
	tr := trie.New[int](4)
	keys := []string{"apple", "apricot", "banana", "a", "ban"}
	for i, k := range keys {
		v, created := tr.Add([]byte(k))
		require.True(t, created)
		*v = i
	}
	require.Equal(t, len(keys), tr.Len())

	for i, k := range keys {
		v, ok := tr.Lookup([]byte(k))
		require.True(t, ok)
		require.Equal(t, i, *v)
	}

	_, ok := tr.Lookup([]byte("nonexistent"))
	require.False(t, ok)
}

func TestAddIsIdempotent(t *testing.T) {
	tr := trie.New[int](4)
	v1, created := tr.Add([]byte("term"))
	require.True(t, created)
	*v1 = 7

	v2, created := tr.Add([]byte("term"))
	require.False(t, created)
	require.Equal(t, 7, *v2)
	require.Equal(t, 1, tr.Len())
}

func TestAddAccumulatesInPlace(t *testing.T) {
	tr := trie.New[[]int](4)
	for _, p := range []int{3, 1, 4, 1, 5} {
		v, _ := tr.Add([]byte("pi"))
		*v = append(*v, p)
	}
	v, ok := tr.Lookup([]byte("pi"))
	require.True(t, ok)
	require.Equal(t, []int{3, 1, 4, 1, 5}, *v)
}

func TestWalkVisitsKeysInOrder(t *testing.T) {
	tr := trie.New[int](4)
	keys := []string{"banana", "apple", "apricot", "a", "cherry", "ban"}
	for i, k := range keys {
		v, _ := tr.Add([]byte(k))
		*v = i
	}

	var got []string
	tr.Walk(func(key []byte, value *int) bool {
		got = append(got, string(key))
		return true
	})
	require.Equal(t, []string{"a", "apple", "apricot", "ban", "banana", "cherry"}, got)
}

func TestWalkStopsEarly(t *testing.T) {
	tr := trie.New[int](4)
	for _, k := range []string{"a", "b", "c", "d"} {
		tr.Add([]byte(k))
	}
	var got []string
	tr.Walk(func(key []byte, value *int) bool {
		got = append(got, string(key))
		return len(got) < 2
	})
	require.Equal(t, []string{"a", "b"}, got)
}

func TestScanFromStartKey(t *testing.T) {
	tr := trie.New[int](4)
	keys := []string{"banana", "apple", "apricot", "a", "cherry", "ban"}
	for i, k := range keys {
		v, _ := tr.Add([]byte(k))
		*v = i
	}

	var got []string
	tr.Scan([]byte("ban"), func(key []byte, value *int) bool {
		got = append(got, string(key))
		return true
	})
	require.Equal(t, []string{"ban", "banana", "cherry"}, got)
}

func TestScanEmptyStartKeyMatchesWalk(t *testing.T) {
	tr := trie.New[int](4)
	for i, k := range []string{"banana", "apple", "apricot", "a", "cherry", "ban"} {
		v, _ := tr.Add([]byte(k))
		*v = i
	}

	var walked, scanned []string
	tr.Walk(func(key []byte, value *int) bool {
		walked = append(walked, string(key))
		return true
	})
	tr.Scan(nil, func(key []byte, value *int) bool {
		scanned = append(scanned, string(key))
		return true
	})
	require.Equal(t, walked, scanned)
}

func TestScanStopsEarly(t *testing.T) {
	tr := trie.New[int](4)
	for _, k := range []string{"a", "b", "c", "d"} {
		tr.Add([]byte(k))
	}
	var got []string
	tr.Scan([]byte("b"), func(key []byte, value *int) bool {
		got = append(got, string(key))
		return len(got) < 2
	})
	require.Equal(t, []string{"b", "c"}, got)
}

func TestEmptyKeyPanics(t *testing.T) {
	tr := trie.New[int](4)
	require.Panics(t, func() { tr.Add(nil) })
}

func TestArenaGrowthAcrossBlocks(t *testing.T) {
	tr := trie.New[int](2)
	keys := make([][]byte, 100)
	for i := 0; i < 100; i++ {
		key := []byte{byte('a' + i%26), byte('0' + i/26)}
		keys[i] = key
		v, _ := tr.Add(key)
		*v = i
	}
	require.Equal(t, 100, tr.Len())

	// Every key must remain reachable even though many Add calls grafted
	// two brand-new nodes in one call, straddling an arena block boundary
	// (blockSize 2): a pointer-aliasing bug here would silently orphan a
	// grafted subtree while still incrementing Len.
	for i, key := range keys {
		v, ok := tr.Lookup(key)
		require.True(t, ok, "key %q not found", key)
		require.Equal(t, i, *v)
	}
}
