// Package egraph: union, congruence closure and upward merging.
package egraph

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/foresight/core"
	"github.com/katalvlaran/foresight/parallel"
	"github.com/katalvlaran/foresight/slots"
)

// Union merges two classes, returning the merge groups and new snapshot.
// Equivalent to UnionMany with a single pair and a sequential map.
func (g *EGraph) Union(a, b core.EClassCall) ([][]core.EClassCall, *EGraph, error) {
	return g.UnionMany([][2]core.EClassCall{{a, b}}, parallel.Sequential())
}

// UnionMany applies a batch of union pairs and drains every union they
// induce via upward merging. It returns the merge groups (each group is
// the set of previously distinct canonical calls now unified), plus the
// new snapshot. The snapshot equals the receiver when nothing changed.
//
// Steps:
//  1. Canonicalize the input pairs (parallel, read-only); drop pairs that
//     are already equal.
//  2. Drain the work-list: uniting a class with itself absorbs the
//     implied slot automorphism into its permutation group; uniting two
//     classes merges the smaller into the larger (ties toward the lower
//     id), unifying parameter slots through the bijection implied by the
//     two argument maps.
//  3. After every merge, re-canonicalize each node that mentions an
//     affected class; nodes whose shapes collide in the hash-cons index
//     queue their classes for further union.
//
// Complexity: proportional to the touched region of the graph; every
// class merges O(log C) times across the graph's lifetime.
func (g *EGraph) UnionMany(pairs [][2]core.EClassCall, pm parallel.Map) ([][]core.EClassCall, *EGraph, error) {
	if len(pairs) == 0 {
		return nil, g, nil
	}
	// 1) canonicalize inputs against the immutable snapshot
	canon, err := parallel.Apply(pm.Child("canonicalize"), pairs, func(p [2]core.EClassCall) ([2]core.EClassCall, error) {
		a, err := g.Canonicalize(p[0])
		if err != nil {
			return [2]core.EClassCall{}, err
		}
		b, err := g.Canonicalize(p[1])
		if err != nil {
			return [2]core.EClassCall{}, err
		}
		return [2]core.EClassCall{a, b}, nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("egraph: union canonicalization: %w", err)
	}

	rb := &rebuilder{editor: g.beginEdit()}
	for _, p := range canon {
		rb.push(p[0], p[1])
	}

	// 2) + 3) drain, then compress
	if err := rb.drain(); err != nil {
		return nil, nil, err
	}
	if len(rb.log) == 0 {
		return nil, g, nil
	}
	rb.compressLeaders()
	return rb.groups(), rb.g, nil
}

// rebuilder drives one UnionMany: the snapshot editor plus the union
// work-list and merge log.
type rebuilder struct {
	*editor
	work []unionPair
	log  [][2]core.EClassCall
}

type unionPair struct {
	a, b core.EClassCall
}

func (rb *rebuilder) push(a, b core.EClassCall) {
	rb.work = append(rb.work, unionPair{a: a, b: b})
}

// drain processes the work-list FIFO until empty.
func (rb *rebuilder) drain() error {
	for len(rb.work) > 0 {
		p := rb.work[0]
		rb.work = rb.work[1:]
		// re-canonicalize now: earlier merges may have moved either side
		a, err := rb.g.Canonicalize(p.a)
		if err != nil {
			return err
		}
		b, err := rb.g.Canonicalize(p.b)
		if err != nil {
			return err
		}
		if a.Ref == b.Ref {
			if err := rb.absorbPerm(a.Ref.ID(), a.Args, b.Args); err != nil {
				return err
			}
			continue
		}
		if err := rb.merge(a, b); err != nil {
			return err
		}
	}
	return nil
}

// absorbPerm handles uniting a class with itself under two argument maps:
// the disagreement between the maps is an automorphism the class must
// absorb. Parameters the two maps cannot relate consistently carry no
// information and become redundant internal slots.
func (rb *rebuilder) absorbPerm(id uint32, m1, m2 slots.SlotMap) error {
	if m1.Equal(m2) {
		return nil
	}
	m2inv, err := m2.Inverse()
	if err != nil {
		return fmt.Errorf("egraph: non-injective argument map: %w", err)
	}
	c := rb.class(id)
	// p sends k to the parameter m2 binds to the same context slot as m1(k)
	p := m1.ComposePartial(m2inv)

	// close the kept set: a parameter survives only if p is defined on it
	// and maps it to another survivor
	keep := p.Keys()
	for {
		kept := make(map[slots.Slot]struct{}, len(keep))
		for _, s := range keep {
			kept[s] = struct{}{}
		}
		next := keep[:0]
		for _, s := range keep {
			if v, ok := p.Get(s); ok {
				if _, in := kept[v]; in {
					next = append(next, s)
					continue
				}
			}
		}
		if len(next) == len(keep) {
			break
		}
		keep = append([]slots.Slot(nil), next...)
	}

	changed := false
	if len(keep) != len(c.params) {
		rb.shrinkParams(id, keep)
		changed = true
	}
	p = p.Restrict(keep)
	if !p.IsIdentity() && p.IsPermutation(keep) {
		if rb.mut(id).group.add(p) {
			changed = true
		}
	}
	if changed {
		rb.log = append(rb.log, [2]core.EClassCall{
			core.Call(core.NewEClassRef(id), m1),
			core.Call(core.NewEClassRef(id), m2),
		})
		rb.recanonUsers(id)
	}
	return nil
}

// merge unites two distinct canonical classes.
func (rb *rebuilder) merge(a, b core.EClassCall) error {
	// tie-break: larger shape set absorbs; ties toward the lower id
	win, lose := a, b
	cw, cl := rb.class(win.Ref.ID()), rb.class(lose.Ref.ID())
	if len(cl.shapes) > len(cw.shapes) ||
		(len(cl.shapes) == len(cw.shapes) && lose.Ref.ID() < win.Ref.ID()) {
		win, lose = lose, win
		cw, cl = cl, cw
	}
	wid, lid := win.Ref.ID(), lose.Ref.ID()

	mwInv, err := win.Args.Inverse()
	if err != nil {
		return fmt.Errorf("egraph: non-injective argument map: %w", err)
	}
	// β relates loser parameters to winner parameters through the shared
	// caller context; parameters without a correspondent become redundant.
	beta := lose.Args.ComposePartial(mwInv)
	newParams := slots.SortedSet(beta.Values())
	if len(newParams) != len(cw.params) {
		rb.shrinkParams(wid, newParams)
	}
	betaInv, err := beta.Inverse()
	if err != nil {
		return fmt.Errorf("egraph: parameter bijection: %w", err)
	}

	// ext maps the whole loser slot space into the winner's: related
	// parameters through β, everything else onto fresh internal slots.
	ext := make(map[slots.Slot]slots.Slot)
	for _, pr := range beta.Pairs() {
		ext[pr[0]] = pr[1]
	}
	extApply := func(s slots.Slot) slots.Slot {
		if v, ok := ext[s]; ok {
			return v
		}
		f := slots.Fresh()
		ext[s] = f
		return f
	}

	mw := rb.mut(wid)

	// move shapes (sorted for determinism)
	keys := make([]string, 0, len(cl.shapes))
	for k := range cl.shapes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		entry := cl.shapes[key]
		moved := shapeEntry{shape: entry.shape, renaming: remapValues(entry.renaming, extApply)}
		if existing, dup := mw.shapes[key]; dup {
			// the same shape from both sides: the two renamings imply a
			// self-union of the merged class
			rb.consSet(entry.shape.Fingerprint(), key, wid)
			rb.pushSelfPair(wid, existing.renaming, moved.renaming)
			continue
		}
		mw.shapes[key] = moved
		rb.consSet(entry.shape.Fingerprint(), key, wid)
	}

	// move the permutation group through β
	for _, p := range cl.group.all() {
		moved := betaInv.ComposePartial(p).ComposePartial(beta)
		if moved.IsPermutation(rb.class(wid).params) && !moved.IsIdentity() {
			mw.group.add(moved)
		}
	}

	// merge user sets
	for k, v := range cl.users {
		mw.users[k] = v
	}

	// analysis facts join through the slot extension
	rb.joinFacts(wid, lid, ext)

	// union-find edge and class retirement
	rb.g.leaders[lid] = core.Call(core.NewEClassRef(wid), betaInv)
	delete(rb.g.classes, lid)
	delete(rb.owned, lid)
	delete(rb.g.facts, core.NewEClassRef(lid))

	rb.log = append(rb.log, [2]core.EClassCall{a, b})
	rb.recanonUsers(wid)
	return nil
}

// joinFacts folds the loser's analysis fact into the winner's.
func (rb *rebuilder) joinFacts(wid, lid uint32, ext map[slots.Slot]slots.Slot) {
	if rb.g.sem == nil {
		return
	}
	fl, ok := rb.g.facts[core.NewEClassRef(lid)]
	if !ok {
		return
	}
	pairs := make([][2]slots.Slot, 0, len(ext))
	for k, v := range ext {
		pairs = append(pairs, [2]slots.Slot{k, v})
	}
	moved := rb.g.sem.Rename(fl, slots.FromPairs(pairs...))
	if fw, ok := rb.g.facts[core.NewEClassRef(wid)]; ok {
		moved = rb.g.sem.Join(fw, moved)
	}
	rb.g.facts[core.NewEClassRef(wid)] = moved
}

// shrinkParams drops parameters not in keep: they stay valid internal
// slots of the class space but leave the public interface. Users are NOT
// queued here; callers queue recanonUsers after the surrounding edit.
func (rb *rebuilder) shrinkParams(id uint32, keep []slots.Slot) {
	c := rb.mut(id)
	c.params = slots.SortedSet(keep)
	c.group = c.group.restrict(c.params)
}

// recanonUsers re-canonicalizes every node referencing class id. Nodes
// whose shapes change move under their new keys; collisions with other
// classes queue further unions (upward merging).
func (rb *rebuilder) recanonUsers(id uint32) {
	c := rb.class(id)
	if c == nil {
		return
	}
	keys := make([]string, 0, len(c.users))
	for k := range c.users {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ref, ok := rb.class(id).users[k]
		if !ok {
			continue
		}
		rb.recanonUser(id, k, ref)
	}
}

// recanonUser refreshes one user node.
func (rb *rebuilder) recanonUser(subject uint32, ukey string, ref userRef) {
	owner, ok := rb.g.canonicalID(ref.class)
	if !ok {
		delete(rb.mut(subject).users, ukey)
		return
	}
	entry, ok := rb.class(owner).shapes[ref.key]
	if !ok {
		// stale: the node moved or was re-keyed already
		delete(rb.mut(subject).users, ukey)
		return
	}

	node := entry.shape.Node().Rename(entry.renaming)
	sc, err := rb.g.CanonicalizeNode(node)
	if err != nil {
		// args reference only live classes; unreachable on a consistent store
		return
	}
	newKey := sc.Shape.Key()
	if newKey == ref.key && owner == ref.class {
		return
	}

	mo := rb.mut(owner)
	delete(mo.shapes, ref.key)
	rb.consRemove(entry.shape.Fingerprint(), ref.key)
	delete(rb.mut(subject).users, ukey)

	newEntry := shapeEntry{shape: sc.Shape, renaming: sc.Renaming}
	if otherID, found := rb.g.consLookup(sc.Shape.Fingerprint(), newKey); found {
		other, _ := rb.g.canonicalID(otherID)
		switch {
		case other == owner:
			if existing, dup := mo.shapes[newKey]; dup {
				// congruent with a sibling node in the same class
				rb.pushSelfPair(owner, existing.renaming, sc.Renaming)
			} else {
				mo.shapes[newKey] = newEntry
				rb.consSet(sc.Shape.Fingerprint(), newKey, owner)
			}
		default:
			// congruent with a node of another class: upward merge
			mo.shapes[newKey] = newEntry
			rb.pushCrossPair(owner, sc.Renaming, other, newKey)
		}
	} else {
		mo.shapes[newKey] = newEntry
		rb.consInsert(sc.Shape.Fingerprint(), newKey, owner)
	}

	// refresh reverse edges for the new node form
	for _, a := range sc.Shape.Node().Args {
		child := rb.mut(a.Ref.ID())
		child.users[userKey(owner, newKey)] = userRef{class: owner, key: newKey}
	}
}

// pushSelfPair queues a self-union of class id implied by two renamings of
// one shape into the class's slot space (context: the shape's own slots).
func (rb *rebuilder) pushSelfPair(id uint32, r1, r2 slots.SlotMap) {
	params := rb.class(id).params
	m1, err1 := r1.Inverse()
	m2, err2 := r2.Inverse()
	if err1 != nil || err2 != nil {
		return
	}
	rb.push(
		core.Call(core.NewEClassRef(id), m1.Restrict(params)),
		core.Call(core.NewEClassRef(id), m2.Restrict(params)),
	)
}

// pushCrossPair queues a union between owner and other implied by both
// holding the same shape (context: the shape's own slots).
func (rb *rebuilder) pushCrossPair(owner uint32, renOwner slots.SlotMap, other uint32, key string) {
	otherEntry, ok := rb.class(other).shapes[key]
	if !ok {
		return
	}
	m1, err1 := renOwner.Inverse()
	m2, err2 := otherEntry.renaming.Inverse()
	if err1 != nil || err2 != nil {
		return
	}
	rb.push(
		core.Call(core.NewEClassRef(owner), m1.Restrict(rb.class(owner).params)),
		core.Call(core.NewEClassRef(other), m2.Restrict(rb.class(other).params)),
	)
}

// groups buckets the merge log by final representative.
func (rb *rebuilder) groups() [][]core.EClassCall {
	byRep := make(map[uint32][]core.EClassCall)
	seen := make(map[string]struct{})
	reps := make([]uint32, 0, 4)
	for _, pair := range rb.log {
		for _, call := range pair {
			rep, ok := rb.g.canonicalID(call.Ref.ID())
			if !ok {
				continue
			}
			if _, dup := seen[call.Key()]; dup {
				continue
			}
			seen[call.Key()] = struct{}{}
			if _, have := byRep[rep]; !have {
				reps = append(reps, rep)
			}
			byRep[rep] = append(byRep[rep], call)
		}
	}
	sort.Slice(reps, func(i, j int) bool { return reps[i] < reps[j] })
	out := make([][]core.EClassCall, len(reps))
	for i, rep := range reps {
		out[i] = byRep[rep]
	}
	return out
}

// remapValues rewrites every value of m through f, keeping keys.
func remapValues(m slots.SlotMap, f func(slots.Slot) slots.Slot) slots.SlotMap {
	pairs := m.Pairs()
	for i := range pairs {
		pairs[i][1] = f(pairs[i][1])
	}
	return slots.FromPairs(pairs...)
}
