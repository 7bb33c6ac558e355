package routing

import (
	"testing"

	da "github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchStateRelaxRequeuesCheaperLabel(t *testing.T) {
	s := NewSearchState(4)
	s.init(0, 0)

	u, ok := s.next()
	require.True(t, ok)
	assert.Equal(t, da.Index(0), u)

	assert.True(t, s.relax(2, 0, 50, 50))
	assert.True(t, s.relax(1, 0, 40, 40))
	// cheaper label for a queued vertex moves it ahead
	assert.True(t, s.relax(2, 1, 30, 30))
	assert.False(t, s.relax(2, 0, 35, 35))

	u, ok = s.next()
	require.True(t, ok)
	assert.Equal(t, da.Index(2), u)
	assert.Equal(t, 30.0, s.GetCost(2))
	assert.Equal(t, da.Index(1), s.GetParent(2))

	// settled vertices keep their label
	assert.False(t, s.relax(2, 0, 1, 1))

	u, ok = s.next()
	require.True(t, ok)
	assert.Equal(t, da.Index(1), u)

	_, ok = s.next()
	assert.False(t, ok)
	assert.Equal(t, 3, s.NumSettledNodes())
}
