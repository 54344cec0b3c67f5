// Package slots: SlotMap — finite slot→slot functions with composition.
package slots

import (
	"errors"
	"strings"
)

// Sentinel errors for SlotMap operations.
var (
	// ErrNotBijective indicates Inverse was called on a non-injective map.
	ErrNotBijective = errors.New("slots: map is not a bijection")

	// ErrComposeMismatch indicates Compose found a value with no key in the
	// other map.
	ErrComposeMismatch = errors.New("slots: compose image is not a key of the other map")
)

// SlotMap is a finite function from Slot to Slot. The zero value is the
// empty map. SlotMaps are immutable by convention: operations return new
// maps and never mutate the receiver or their arguments.
type SlotMap struct {
	m map[Slot]Slot
}

// NewSlotMap returns the empty map.
func NewSlotMap() SlotMap { return SlotMap{} }

// FromPairs builds a map from key/value pairs. Later duplicates win.
// Complexity: O(n)
func FromPairs(pairs ...[2]Slot) SlotMap {
	m := make(map[Slot]Slot, len(pairs))
	for _, p := range pairs {
		m[p[0]] = p[1]
	}
	return SlotMap{m: m}
}

// Identity returns the identity map on the given slots.
func Identity(ss []Slot) SlotMap {
	m := make(map[Slot]Slot, len(ss))
	for _, s := range ss {
		m[s] = s
	}
	return SlotMap{m: m}
}

// With returns a copy of sm with k→v inserted (overwriting any previous k).
// Complexity: O(n)
func (sm SlotMap) With(k, v Slot) SlotMap {
	m := make(map[Slot]Slot, len(sm.m)+1)
	for a, b := range sm.m {
		m[a] = b
	}
	m[k] = v
	return SlotMap{m: m}
}

// Apply returns the image of s, or s itself when s is not a key.
// Complexity: O(1)
func (sm SlotMap) Apply(s Slot) Slot {
	if v, ok := sm.m[s]; ok {
		return v
	}
	return s
}

// Get returns the image of s and whether s is a key.
func (sm SlotMap) Get(s Slot) (Slot, bool) {
	v, ok := sm.m[s]
	return v, ok
}

// Len returns the number of entries.
func (sm SlotMap) Len() int { return len(sm.m) }

// Keys returns the keys in sorted slot order.
// Complexity: O(n log n)
func (sm SlotMap) Keys() []Slot {
	keys := make([]Slot, 0, len(sm.m))
	for k := range sm.m {
		keys = append(keys, k)
	}
	SortSlots(keys)
	return keys
}

// Values returns the values in key-sorted order (may contain duplicates
// when the map is not injective).
func (sm SlotMap) Values() []Slot {
	keys := sm.Keys()
	vals := make([]Slot, len(keys))
	for i, k := range keys {
		vals[i] = sm.m[k]
	}
	return vals
}

// Pairs returns the entries in key-sorted order.
func (sm SlotMap) Pairs() [][2]Slot {
	keys := sm.Keys()
	out := make([][2]Slot, len(keys))
	for i, k := range keys {
		out[i] = [2]Slot{k, sm.m[k]}
	}
	return out
}

// Inverse swaps keys and values. Defined only for bijections; otherwise
// ErrNotBijective.
// Complexity: O(n)
func (sm SlotMap) Inverse() (SlotMap, error) {
	m := make(map[Slot]Slot, len(sm.m))
	for k, v := range sm.m {
		if _, dup := m[v]; dup {
			return SlotMap{}, ErrNotBijective
		}
		m[v] = k
	}
	return SlotMap{m: m}, nil
}

// IsBijection reports whether no two keys share an image.
func (sm SlotMap) IsBijection() bool {
	seen := make(map[Slot]struct{}, len(sm.m))
	for _, v := range sm.m {
		if _, dup := seen[v]; dup {
			return false
		}
		seen[v] = struct{}{}
	}
	return true
}

// IsIdentity reports whether every entry maps a slot to itself.
func (sm SlotMap) IsIdentity() bool {
	for k, v := range sm.m {
		if k != v {
			return false
		}
	}
	return true
}

// IsPermutation reports whether sm is a bijection of the given slot set
// onto itself covering every element.
func (sm SlotMap) IsPermutation(set []Slot) bool {
	if len(sm.m) != len(set) {
		return false
	}
	in := make(map[Slot]struct{}, len(set))
	for _, s := range set {
		in[s] = struct{}{}
	}
	seen := make(map[Slot]struct{}, len(set))
	for _, s := range set {
		v, ok := sm.m[s]
		if !ok {
			return false
		}
		if _, member := in[v]; !member {
			return false
		}
		if _, dup := seen[v]; dup {
			return false
		}
		seen[v] = struct{}{}
	}
	return true
}

// Compose maps a→c whenever a→b here and b→c in other. Every value of sm
// must be a key of other; otherwise ErrComposeMismatch.
// Complexity: O(n)
func (sm SlotMap) Compose(other SlotMap) (SlotMap, error) {
	m := make(map[Slot]Slot, len(sm.m))
	for a, b := range sm.m {
		c, ok := other.m[b]
		if !ok {
			return SlotMap{}, ErrComposeMismatch
		}
		m[a] = c
	}
	return SlotMap{m: m}, nil
}

// ComposePartial is Compose, dropping entries whose image is not a key of
// other.
func (sm SlotMap) ComposePartial(other SlotMap) SlotMap {
	m := make(map[Slot]Slot, len(sm.m))
	for a, b := range sm.m {
		if c, ok := other.m[b]; ok {
			m[a] = c
		}
	}
	return SlotMap{m: m}
}

// ComposeRetain is Compose, keeping the original image when it is not a
// key of other.
func (sm SlotMap) ComposeRetain(other SlotMap) SlotMap {
	m := make(map[Slot]Slot, len(sm.m))
	for a, b := range sm.m {
		if c, ok := other.m[b]; ok {
			m[a] = c
		} else {
			m[a] = b
		}
	}
	return SlotMap{m: m}
}

// ComposeFresh is Compose, substituting a fresh slot when the image is not
// a key of other. Each missing image gets one fresh slot, shared by every
// entry pointing at it.
func (sm SlotMap) ComposeFresh(other SlotMap) SlotMap {
	m := make(map[Slot]Slot, len(sm.m))
	var fresh map[Slot]Slot
	// deterministic fresh allocation: walk entries key-sorted.
	for _, k := range sm.Keys() {
		b := sm.m[k]
		if c, ok := other.m[b]; ok {
			m[k] = c
			continue
		}
		if fresh == nil {
			fresh = make(map[Slot]Slot)
		}
		f, ok := fresh[b]
		if !ok {
			f = Fresh()
			fresh[b] = f
		}
		m[k] = f
	}
	return SlotMap{m: m}
}

// Restrict returns the submap whose keys are members of set.
func (sm SlotMap) Restrict(set []Slot) SlotMap {
	m := make(map[Slot]Slot, len(set))
	for _, s := range set {
		if v, ok := sm.m[s]; ok {
			m[s] = v
		}
	}
	return SlotMap{m: m}
}

// Equal reports structural equality.
func (sm SlotMap) Equal(other SlotMap) bool {
	if len(sm.m) != len(other.m) {
		return false
	}
	for k, v := range sm.m {
		if w, ok := other.m[k]; !ok || w != v {
			return false
		}
	}
	return true
}

// String renders the map key-sorted, e.g. "{$0→$1, $1→$0}".
func (sm SlotMap) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, p := range sm.Pairs() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p[0].String())
		b.WriteString("→")
		b.WriteString(p[1].String())
	}
	b.WriteByte('}')
	return b.String()
}

// sortSlotSet sorts and deduplicates a slot slice, returning a fresh slice.
func sortSlotSet(ss []Slot) []Slot {
	out := make([]Slot, len(ss))
	copy(out, ss)
	SortSlots(out)
	out = dedupSorted(out)
	return out
}

func dedupSorted(ss []Slot) []Slot {
	if len(ss) < 2 {
		return ss
	}
	w := 1
	for i := 1; i < len(ss); i++ {
		if ss[i] != ss[i-1] {
			ss[w] = ss[i]
			w++
		}
	}
	return ss[:w]
}

// SortedSet returns ss sorted and deduplicated, leaving ss untouched.
func SortedSet(ss []Slot) []Slot { return sortSlotSet(ss) }
