package egraph

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/foresight/core"
	"github.com/katalvlaran/foresight/parallel"
)

// Snapshots are immutable values: readers on an old snapshot must see a
// frozen graph while writers derive new ones concurrently.
func TestSnapshotIsolation(t *testing.T) {
	g := New()
	a, g1, err := g.AddTree(core.NewTree("add", core.NewTree("const:1"), core.NewTree("const:2")))
	require.NoError(t, err)
	b, g2, err := g1.AddTree(core.NewTree("add", core.NewTree("const:2"), core.NewTree("const:1")))
	require.NoError(t, err)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// readers hammer the pre-union snapshot
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if g2.AreSame(a, b) {
					t.Error("the old snapshot must never observe the union")
					return
				}
				if g2.ClassCount() != 4 {
					t.Error("the old snapshot changed size")
					return
				}
			}
		}()
	}

	// writer derives new snapshots meanwhile
	cur := g2
	for i := 0; i < 50; i++ {
		_, ng, err := cur.Union(a, b)
		require.NoError(t, err)
		cur = ng
	}
	close(stop)
	wg.Wait()

	assert.True(t, cur.AreSame(a, b))
	assert.False(t, g2.AreSame(a, b))
}

// Concurrent TryAddMany on one snapshot: hash-consing stays unique in
// every derived snapshot, whatever the interleaving.
func TestConcurrentDerivedAdds(t *testing.T) {
	base := New()
	nodes := []core.ENode{
		core.NewENode("const:1", nil, nil, nil),
		core.NewENode("const:2", nil, nil, nil),
		core.NewENode("const:1", nil, nil, nil), // duplicate on purpose
	}

	var wg sync.WaitGroup
	results := make([]*EGraph, 8)
	for w := range results {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			_, ng, err := base.TryAddMany(nodes, parallel.Fixed(2))
			if err != nil {
				t.Error(err)
				return
			}
			results[w] = ng
		}(w)
	}
	wg.Wait()

	for _, ng := range results {
		require.NotNil(t, ng)
		assert.Equal(t, 2, ng.ClassCount(), "duplicates must hash-cons in every derivation")
	}
	assert.Equal(t, 0, base.ClassCount())
}
