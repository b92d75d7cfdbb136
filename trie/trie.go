// Package trie implements the in-memory key-set used during index
// construction: a ternary search tree (Bentley & Sedgewick, "Ternary Search
// Trees", Dr. Dobb's Journal, April 1998) over arena-allocated, index-based
// nodes, per the redesign note in spec.md §9 ("children are array indices,
// not raw pointers"). Grounded on
// _examples/original_source/src/utils/trie.c: iUtlTrieAddKeyToTrie's
// low/equal/high descent and its trick of storing the datum in the
// terminal node's would-be equal-child slot is reproduced here as node's
// terminal flag and valueIdx, and the block-at-a-time node allocator
// (UTL_TRIE_NODE_ENTRY_COUNT per block) becomes the arena's blockSize.
package trie

const none = int32(-1)

const defaultBlockSize = 10000

// node is one ternary search tree node: a split byte with three children.
// Go keys carry no terminating NUL, so the node holding a key's last byte
// is marked terminal and stores the key's value index in valueIdx; it keeps
// its equal-child, through which longer keys sharing that prefix continue.
type node struct {
	split        byte
	less, eq, gr int32
	terminal     bool
	valueIdx     int32
}

// Trie is a ternary search tree mapping byte-string keys to values of type
// V, arena-allocated in fixed-size node blocks that are never individually
// freed — only released together when the Trie is discarded. Not safe for
// concurrent use; the single-threaded inverter holds one Trie at a time and
// replaces it with a fresh one after each spill.
type Trie[V any] struct {
	blockSize int
	nodes     []node
	root      int32
	values    []V
	count     int
}

// New creates an empty trie. blockSize controls the arena growth chunk
// size; 0 selects the default of 10,000 nodes, matching
// UTL_TRIE_NODE_ENTRY_COUNT in trie.c.
func New[V any](blockSize int) *Trie[V] {
	if blockSize <= 0 {
		blockSize = defaultBlockSize
	}
	return &Trie[V]{blockSize: blockSize, root: none}
}

// Len returns the number of distinct keys added.
func (t *Trie[V]) Len() int { return t.count }

func (t *Trie[V]) allocNode(split byte) int32 {
	if len(t.nodes) == cap(t.nodes) {
		grown := make([]node, len(t.nodes), len(t.nodes)+t.blockSize)
		copy(grown, t.nodes)
		t.nodes = grown
	}
	t.nodes = append(t.nodes, node{split: split, less: none, eq: none, gr: none})
	return int32(len(t.nodes) - 1)
}

// childSlot names which of a node's three child links — or the trie's
// root — is currently being descended into. Add and Lookup track this as
// a (parent index, slot) pair rather than a raw pointer into t.nodes,
// since t.nodes is a slice that allocNode may reallocate mid-insertion;
// a pointer captured before such a reallocation would silently write to
// the orphaned backing array instead of the live one.
type childSlot int

const (
	slotRoot childSlot = iota
	slotLess
	slotEq
	slotGr
)

func (t *Trie[V]) getChild(parent int32, slot childSlot) int32 {
	if slot == slotRoot {
		return t.root
	}
	n := &t.nodes[parent]
	switch slot {
	case slotLess:
		return n.less
	case slotGr:
		return n.gr
	default:
		return n.eq
	}
}

func (t *Trie[V]) setChild(parent int32, slot childSlot, child int32) {
	if slot == slotRoot {
		t.root = child
		return
	}
	n := &t.nodes[parent]
	switch slot {
	case slotLess:
		n.less = child
	case slotGr:
		n.gr = child
	default:
		n.eq = child
	}
}

// Add inserts key if absent and returns a pointer into the trie's value
// arena for the caller to read or mutate in place — the Go equivalent of
// trie.c's `void ***pppvDatum` out-parameter, which hands back the address
// of the slot rather than a copy so the inverter can accumulate posting
// data across repeated Add calls for the same term. created reports
// whether key was not already present.
func (t *Trie[V]) Add(key []byte) (value *V, created bool) {
	if len(key) == 0 {
		panic("trie: empty key")
	}

	var parent int32 = none
	slot := slotRoot
	i := 0
	for {
		cur := t.getChild(parent, slot)
		if cur == none {
			break
		}
		n := &t.nodes[cur]
		c := key[i]
		switch {
		case c == n.split:
			if i == len(key)-1 {
				if !n.terminal {
					n.terminal = true
					n.valueIdx = int32(len(t.values))
					var zero V
					t.values = append(t.values, zero)
					t.count++
					return &t.values[n.valueIdx], true
				}
				return &t.values[n.valueIdx], false
			}
			i++
			parent, slot = cur, slotEq
		case c < n.split:
			parent, slot = cur, slotLess
		default:
			parent, slot = cur, slotGr
		}
	}

	// Ran off the tree: graft the remainder of key as a fresh chain of
	// single-child nodes, exactly as iUtlTrieAddKeyToTrie's second loop
	// does once it falls through the first while. Each new node is
	// linked into its parent by index via setChild immediately after
	// allocation, so a reallocation inside the next iteration's
	// allocNode call can never invalidate an already-applied link.
	for {
		idx := t.allocNode(key[i])
		t.setChild(parent, slot, idx)
		if i == len(key)-1 {
			n := &t.nodes[idx]
			n.terminal = true
			n.valueIdx = int32(len(t.values))
			var zero V
			t.values = append(t.values, zero)
			t.count++
			return &t.values[n.valueIdx], true
		}
		i++
		parent, slot = idx, slotEq
	}
}

// Lookup returns the value stored for key, or false if key was never added.
func (t *Trie[V]) Lookup(key []byte) (value *V, ok bool) {
	if len(key) == 0 {
		return nil, false
	}
	cur := t.root
	i := 0
	for cur != none {
		n := &t.nodes[cur]
		c := key[i]
		switch {
		case c == n.split:
			if i == len(key)-1 {
				if !n.terminal {
					return nil, false
				}
				return &t.values[n.valueIdx], true
			}
			i++
			cur = n.eq
		case c < n.split:
			cur = n.less
		default:
			cur = n.gr
		}
	}
	return nil, false
}

// WalkFunc is invoked once per key in ascending lexicographic order; a
// false return stops the walk early.
type WalkFunc[V any] func(key []byte, value *V) bool

// Walk visits every key in the trie in ascending order, grounded on
// trie.c's iUtlTrieLoopOverKeysInTrieNode: an in-order traversal of the
// less/equal/greater children with the key reconstructed in a scratch
// buffer as the recursion descends through equal-children.
func (t *Trie[V]) Walk(fn WalkFunc[V]) {
	if t.root == none {
		return
	}
	buf := make([]byte, 0, 256)
	t.walk(t.root, buf, fn)
}

func (t *Trie[V]) walk(idx int32, prefix []byte, fn WalkFunc[V]) bool {
	if idx == none {
		return true
	}
	n := &t.nodes[idx]
	if !t.walk(n.less, prefix, fn) {
		return false
	}
	key := append(append([]byte(nil), prefix...), n.split)
	if n.terminal {
		if !fn(key, &t.values[n.valueIdx]) {
			return false
		}
	}
	if !t.walk(n.eq, key, fn) {
		return false
	}
	return t.walk(n.gr, prefix, fn)
}

// Scan visits every key >= startKey in ascending order, or every key if
// startKey is empty, per spec.md §4.3 ("scan(optional start_key, cb)").
// Unlike Walk, descent into the less/equal subtree at each node is pruned
// once the reconstructed prefix is known to fall strictly below startKey
// ("descent prunes subtrees whose reconstructed prefix is lexicographically
// less than start_key"), grounded on trie.c's
// iUtlTrieLoopOverKeysInTrieNode start-key variant.
func (t *Trie[V]) Scan(startKey []byte, fn WalkFunc[V]) {
	if len(startKey) == 0 {
		t.Walk(fn)
		return
	}
	t.scan(t.root, make([]byte, 0, 256), startKey, fn)
}

// scan descends with start-key pruning active. depth is implied by
// len(prefix); once it reaches len(start) the remaining path is known to
// be lexicographically >= start (every byte along it matched start
// exactly), so the call hands off to the unpruned walk.
func (t *Trie[V]) scan(idx int32, prefix, start []byte, fn WalkFunc[V]) bool {
	if idx == none {
		return true
	}
	if len(prefix) >= len(start) {
		return t.walk(idx, prefix, fn)
	}
	n := &t.nodes[idx]
	sc := start[len(prefix)]
	switch {
	case n.split < sc:
		// This node's split byte, and therefore everything reachable via
		// its less/equal children (which share this same byte position),
		// sorts strictly below start; so does its less child (whose split
		// bytes are themselves < n.split < sc). Only the greater child can
		// still hold keys >= start, compared at the same byte position.
		return t.scan(n.gr, prefix, start, fn)
	case n.split == sc:
		// The less child is excluded for the same reason as above. This
		// node's own key (if terminal) only qualifies when it is exactly
		// as long as start, since a shorter string sharing start's prefix
		// sorts below it.
		key := append(append([]byte(nil), prefix...), n.split)
		if n.terminal && len(key) == len(start) {
			if !fn(key, &t.values[n.valueIdx]) {
				return false
			}
		}
		if !t.scan(n.eq, key, start, fn) {
			return false
		}
		return t.walk(n.gr, prefix, fn)
	default:
		// n.split > sc: this node's own key and its entire equal subtree
		// sort above start already, so they're visited unpruned. The less
		// child's split bytes are unbounded below n.split, so it still
		// needs pruning at this same byte position.
		if !t.scan(n.less, prefix, start, fn) {
			return false
		}
		key := append(append([]byte(nil), prefix...), n.split)
		if n.terminal {
			if !fn(key, &t.values[n.valueIdx]) {
				return false
			}
		}
		if !t.walk(n.eq, key, fn) {
			return false
		}
		return t.walk(n.gr, prefix, fn)
	}
}
