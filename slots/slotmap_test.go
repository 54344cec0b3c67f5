package slots

import (
	"errors"
	"testing"
)

func pair(a, b Slot) [2]Slot { return [2]Slot{a, b} }

func TestApplyDefaultsToSelf(t *testing.T) {
	m := FromPairs(pair(Numeric(0), Numeric(1)))
	if got := m.Apply(Numeric(0)); got != Numeric(1) {
		t.Errorf("Apply($0) = %v; want $1", got)
	}
	if got := m.Apply(Numeric(9)); got != Numeric(9) {
		t.Errorf("Apply($9) = %v; want $9 (absent keys map to themselves)", got)
	}
}

func TestIdentityComposeLaw(t *testing.T) {
	// Identity(keys(m)).Compose(m) == m for every m.
	m := FromPairs(pair(Numeric(0), Numeric(2)), pair(Numeric(1), Numeric(3)))
	id := Identity(m.Keys())
	got, err := id.Compose(m)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if !got.Equal(m) {
		t.Errorf("Identity∘m = %v; want %v", got, m)
	}
}

func TestInverseInvolution(t *testing.T) {
	m := FromPairs(pair(Numeric(0), Numeric(5)), pair(Numeric(1), Numeric(4)))
	inv, err := m.Inverse()
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	back, err := inv.Inverse()
	if err != nil {
		t.Fatalf("Inverse²: %v", err)
	}
	if !back.Equal(m) {
		t.Errorf("m.Inverse().Inverse() = %v; want %v", back, m)
	}
}

func TestInverseNonBijective(t *testing.T) {
	m := FromPairs(pair(Numeric(0), Numeric(2)), pair(Numeric(1), Numeric(2)))
	if _, err := m.Inverse(); !errors.Is(err, ErrNotBijective) {
		t.Errorf("Inverse on non-bijection: err = %v; want ErrNotBijective", err)
	}
}

func TestComposeMismatch(t *testing.T) {
	a := FromPairs(pair(Numeric(0), Numeric(1)))
	b := FromPairs(pair(Numeric(2), Numeric(3)))
	if _, err := a.Compose(b); !errors.Is(err, ErrComposeMismatch) {
		t.Errorf("Compose: err = %v; want ErrComposeMismatch", err)
	}
}

func TestComposeVariants(t *testing.T) {
	a := FromPairs(pair(Numeric(0), Numeric(1)), pair(Numeric(2), Numeric(3)))
	b := FromPairs(pair(Numeric(1), Numeric(9)))

	partial := a.ComposePartial(b)
	if partial.Len() != 1 || partial.Apply(Numeric(0)) != Numeric(9) {
		t.Errorf("ComposePartial = %v; want {$0→$9}", partial)
	}

	retain := a.ComposeRetain(b)
	if retain.Apply(Numeric(0)) != Numeric(9) || retain.Apply(Numeric(2)) != Numeric(3) {
		t.Errorf("ComposeRetain = %v; want {$0→$9, $2→$3}", retain)
	}

	freshed := a.ComposeFresh(b)
	if freshed.Apply(Numeric(0)) != Numeric(9) {
		t.Errorf("ComposeFresh kept image = %v; want $9", freshed.Apply(Numeric(0)))
	}
	if v, ok := freshed.Get(Numeric(2)); !ok || !v.IsFresh() {
		t.Errorf("ComposeFresh missing image = %v; want a fresh slot", v)
	}
}

func TestComposeFreshSharesFreshPerImage(t *testing.T) {
	// Two keys pointing at the same missing image must share one fresh slot.
	a := FromPairs(pair(Numeric(0), Numeric(7)), pair(Numeric(1), Numeric(7)))
	out := a.ComposeFresh(NewSlotMap())
	v0, _ := out.Get(Numeric(0))
	v1, _ := out.Get(Numeric(1))
	if v0 != v1 {
		t.Errorf("shared missing image mapped to %v and %v; want one fresh slot", v0, v1)
	}
}

func TestKeySortedIteration(t *testing.T) {
	f := Fresh()
	m := FromPairs(pair(f, Numeric(0)), pair(Numeric(3), Numeric(1)), pair(Numeric(1), Numeric(2)))
	keys := m.Keys()
	want := []Slot{Numeric(1), Numeric(3), f}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("Keys() = %v; want %v", keys, want)
		}
	}
}

func TestIsPermutation(t *testing.T) {
	set := []Slot{Numeric(0), Numeric(1)}
	swap := FromPairs(pair(Numeric(0), Numeric(1)), pair(Numeric(1), Numeric(0)))
	if !swap.IsPermutation(set) {
		t.Error("swap must be a permutation of {$0,$1}")
	}
	proj := FromPairs(pair(Numeric(0), Numeric(0)), pair(Numeric(1), Numeric(0)))
	if proj.IsPermutation(set) {
		t.Error("non-injective map must not be a permutation")
	}
}

func TestWithDoesNotMutate(t *testing.T) {
	m := FromPairs(pair(Numeric(0), Numeric(1)))
	_ = m.With(Numeric(2), Numeric(3))
	if m.Len() != 1 {
		t.Errorf("With mutated the receiver: %v", m)
	}
}
