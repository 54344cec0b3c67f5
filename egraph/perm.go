// Package egraph: permutation groups of class slot symmetries.
package egraph

import (
	"sort"

	"github.com/katalvlaran/foresight/slots"
)

// permGroup is the group of parameter-slot bijections a class satisfies,
// stored fully enumerated. Classes have few parameter slots in practice,
// so exhaustive enumeration stays small; the identity is always a member.
type permGroup struct {
	perms map[string]slots.SlotMap // encoding → permutation
}

func newPermGroup(params []slots.Slot) *permGroup {
	id := slots.Identity(params)
	return &permGroup{perms: map[string]slots.SlotMap{permKey(id): id}}
}

func permKey(p slots.SlotMap) string { return p.String() }

func (pg *permGroup) clone() *permGroup {
	out := &permGroup{perms: make(map[string]slots.SlotMap, len(pg.perms))}
	for k, v := range pg.perms {
		out.perms[k] = v
	}
	return out
}

// contains reports group membership.
func (pg *permGroup) contains(p slots.SlotMap) bool {
	_, ok := pg.perms[permKey(p)]
	return ok
}

// size returns the group order.
func (pg *permGroup) size() int { return len(pg.perms) }

// all returns the permutations in deterministic (encoding-sorted) order.
func (pg *permGroup) all() []slots.SlotMap {
	keys := make([]string, 0, len(pg.perms))
	for k := range pg.perms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]slots.SlotMap, len(keys))
	for i, k := range keys {
		out[i] = pg.perms[k]
	}
	return out
}

// add inserts a generator and closes the group under composition.
// Reports whether the group grew.
//
// Steps:
//  1. Insert p unless already a member.
//  2. Repeatedly compose every pair until no new permutation appears
//     (the group of a k-slot class is bounded by k!).
//
// Complexity: O(|G|² · k) per closure round.
func (pg *permGroup) add(p slots.SlotMap) bool {
	if pg.contains(p) {
		return false
	}
	pg.perms[permKey(p)] = p
	for {
		grew := false
		members := pg.all()
		for _, a := range members {
			for _, b := range members {
				// a then b: k → b(a(k)); params are closed, so plain
				// composition is total here.
				c := a.ComposeRetain(b)
				if !pg.contains(c) {
					pg.perms[permKey(c)] = c
					grew = true
				}
			}
		}
		if !grew {
			return true
		}
	}
}

// restrict returns the group induced on the parameter subset keep:
// permutations that map keep onto keep survive (restricted); others are
// dropped.
func (pg *permGroup) restrict(keep []slots.Slot) *permGroup {
	out := newPermGroup(keep)
	for _, p := range pg.perms {
		r := p.Restrict(keep)
		if r.IsPermutation(keep) {
			out.perms[permKey(r)] = r
		}
	}
	return out
}
