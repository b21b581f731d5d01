package dice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRollStaysInRange(t *testing.T) {
	r := New(&Config{Seed: 42})
	for _, sides := range []int{1, 50, 100, 200} {
		for i := 0; i < 1000; i++ {
			v := r.Roll(sides)
			assert.GreaterOrEqual(t, v, 1)
			assert.LessOrEqual(t, v, sides)
		}
	}
}

func TestRollClampsSides(t *testing.T) {
	r := New(nil)
	assert.Equal(t, 1, r.Roll(0))
	assert.Equal(t, 1, r.Roll(-5))
}

func TestSeedIsDeterministic(t *testing.T) {
	a := New(&Config{Seed: 7})
	b := New(&Config{Seed: 7})
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Roll(100), b.Roll(100))
	}
}

func TestRollCoversWholeRange(t *testing.T) {
	r := New(&Config{Seed: 1})
	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		seen[r.Roll(10)] = true
	}
	assert.Len(t, seen, 10)
}
