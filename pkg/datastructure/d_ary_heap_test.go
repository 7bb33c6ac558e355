package datastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinHeapExtractOrder(t *testing.T) {
	pq := NewFourAryHeap[QueryKey]()

	ranks := []float64{5, 3, 9, 3, 1, 7, 3}
	for i, r := range ranks {
		pq.Insert(NewPriorityQueueNode(r, NewQueryKey(Index(i))))
	}

	expected := []Index{4, 1, 3, 6, 0, 5, 2}
	for _, e := range expected {
		node, err := pq.ExtractMin()
		require.NoError(t, err)
		assert.Equal(t, e, node.GetItem().GetNode())
	}
	assert.True(t, pq.IsEmpty())

	_, err := pq.ExtractMin()
	assert.Error(t, err)
}

func TestMinHeapDecreaseKey(t *testing.T) {
	pq := NewdAryHeap[QueryKey](2)
	nodes := make([]*PriorityQueueNode[QueryKey], 0)
	for i, r := range []float64{10, 20, 30} {
		n := NewPriorityQueueNode(r, NewQueryKey(Index(i)))
		nodes = append(nodes, n)
		pq.Insert(n)
	}

	require.NoError(t, pq.DecreaseKey(nodes[2], 5))
	assert.Equal(t, 5.0, nodes[2].GetRank())

	// increasing a key is rejected
	assert.Error(t, pq.DecreaseKey(nodes[1], 50))

	min, err := pq.ExtractMin()
	require.NoError(t, err)
	assert.Equal(t, Index(2), min.GetItem().GetNode())

	// extracted node is no longer in the heap
	assert.Error(t, pq.DecreaseKey(min, 1))
}
