package routing

import (
	da "github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
)

type undirectedEdge struct {
	a, b da.Index
}

func newUndirectedEdge(u, v da.Index) undirectedEdge {
	if u > v {
		u, v = v, u
	}
	return undirectedEdge{a: u, b: v}
}

// BlockedEdges. edges excluded from a search. blocking (u,v) also blocks (v,u).
type BlockedEdges struct {
	edges map[undirectedEdge]struct{}
}

func NewBlockedEdges() *BlockedEdges {
	return &BlockedEdges{edges: make(map[undirectedEdge]struct{})}
}

func (b *BlockedEdges) Block(u, v da.Index) {
	b.edges[newUndirectedEdge(u, v)] = struct{}{}
}

func (b *BlockedEdges) BlockPath(path []da.Index) {
	for i := 1; i < len(path); i++ {
		b.Block(path[i-1], path[i])
	}
}

func (b *BlockedEdges) IsBlocked(u, v da.Index) bool {
	if b == nil {
		return false
	}
	_, ok := b.edges[newUndirectedEdge(u, v)]
	return ok
}

func (b *BlockedEdges) Len() int {
	return len(b.edges)
}
