package parallel

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPreservesOrder(t *testing.T) {
	for _, m := range []Map{Sequential(), Fixed(4), Default()} {
		in := make([]int, 100)
		for i := range in {
			in[i] = i
		}
		out, err := Apply(m, in, func(v int) (int, error) { return v * 2, nil })
		require.NoError(t, err)
		for i, v := range out {
			require.Equal(t, i*2, v, "output order must match input order")
		}
	}
}

func TestRunPropagatesError(t *testing.T) {
	sentinel := errors.New("boom")
	err := Fixed(2).Run(10, func(i int) error {
		if i == 3 {
			return sentinel
		}
		return nil
	})
	assert.ErrorIs(t, err, sentinel)
}

func TestCancelableAborts(t *testing.T) {
	tok := NewToken()
	tok.Trip()
	var ran atomic.Int32
	err := Sequential().Cancelable(tok).Run(5, func(i int) error {
		ran.Add(1)
		return nil
	})
	assert.ErrorIs(t, err, ErrCanceled)
	assert.Equal(t, int32(0), ran.Load(), "tripped token must stop the run before the first item")
}

func TestCancelMidRun(t *testing.T) {
	tok := NewToken()
	err := Sequential().Cancelable(tok).Run(10, func(i int) error {
		if i == 4 {
			tok.Trip()
		}
		return nil
	})
	assert.ErrorIs(t, err, ErrCanceled)
}

func TestTimeoutToken(t *testing.T) {
	tok := NewTimeoutToken(10 * time.Millisecond)
	defer tok.Stop()
	assert.False(t, tok.Tripped(), "fresh timeout token must start untripped")
	assert.Eventually(t, tok.Tripped, time.Second, 2*time.Millisecond)
	assert.ErrorIs(t, tok.Poll(), ErrCanceled)
}

func TestChildKeepsToken(t *testing.T) {
	tok := NewToken()
	tok.Trip()
	child := Fixed(2).Cancelable(tok).Child("stage")
	err := child.Run(3, func(i int) error { return nil })
	assert.ErrorIs(t, err, ErrCanceled, "Child must inherit cancellation")
}

func TestParallelRunsConcurrently(t *testing.T) {
	var peak, cur atomic.Int32
	err := Fixed(4).Run(8, func(i int) error {
		n := cur.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		cur.Add(-1)
		return nil
	})
	require.NoError(t, err)
	assert.Greater(t, peak.Load(), int32(1), "Fixed(4) should overlap work")
}
