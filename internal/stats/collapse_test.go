package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollapseTailTenCategoriesCapEight(t *testing.T) {
	items := make([]CategoryTotal, 0, 10)
	for i, total := range []float64{100, 90, 80, 70, 60, 50, 40, 30, 20, 10} {
		items = append(items, CategoryTotal{Label: string(rune('A' + i)), Total: total, Count: 1})
	}

	out := CollapseTail(items, 8)
	require.Len(t, out, 9)

	for i, want := range []float64{100, 90, 80, 70, 60, 50, 40, 30} {
		assert.Equal(t, want, out[i].Total)
	}
	assert.Equal(t, OtherLabel, out[8].Label)
	assert.Equal(t, 30.0, out[8].Total) // 20 + 10
	assert.Equal(t, int64(2), out[8].Count)
}

func TestCollapseTailWithinCapUnchanged(t *testing.T) {
	items := []CategoryTotal{
		{Label: "Dining", Total: 100, Count: 3},
		{Label: "Housing", Total: 50, Count: 1},
	}

	out := CollapseTail(items, 8)
	assert.Equal(t, items, out)
}

func TestCollapseTailExactCapUnchanged(t *testing.T) {
	items := make([]CategoryTotal, 8)
	for i := range items {
		items[i] = CategoryTotal{Label: string(rune('A' + i)), Total: float64(80 - 10*i), Count: 1}
	}

	out := CollapseTail(items, 8)
	assert.Equal(t, items, out)
}

func TestCollapseTailNoCap(t *testing.T) {
	items := []CategoryTotal{
		{Label: "Dining", Total: 100},
		{Label: "Housing", Total: 50},
	}

	assert.Equal(t, items, CollapseTail(items, 0))
	assert.Equal(t, items, CollapseTail(items, -1))
}

func TestCollapseTailEmpty(t *testing.T) {
	assert.Empty(t, CollapseTail(nil, 8))
}
