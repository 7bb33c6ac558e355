package routing

import (
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg"
	da "github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/util"
)

// SearchState. labels of one search invocation, indexed by vertex. never shared between searches.
type SearchState struct {
	cost      []float64
	parent    []da.Index
	settled   []bool
	heapNodes []*da.PriorityQueueNode[da.QueryKey]

	pq *da.MinHeap[da.QueryKey]

	numSettledNodes int
}

func NewSearchState(numberOfVertices int) *SearchState {
	s := &SearchState{
		cost:      make([]float64, numberOfVertices),
		parent:    make([]da.Index, numberOfVertices),
		settled:   make([]bool, numberOfVertices),
		heapNodes: make([]*da.PriorityQueueNode[da.QueryKey], numberOfVertices),
		pq:        da.NewFourAryHeap[da.QueryKey](),
	}
	for i := range s.cost {
		s.cost[i] = pkg.INF_WEIGHT
		s.parent[i] = da.INVALID_VERTEX_ID
	}
	s.pq.Preallocate(numberOfVertices)
	return s
}

func (s *SearchState) GetCost(u da.Index) float64 {
	return s.cost[u]
}

func (s *SearchState) GetParent(u da.Index) da.Index {
	return s.parent[u]
}

func (s *SearchState) IsSettled(u da.Index) bool {
	return s.settled[u]
}

func (s *SearchState) NumSettledNodes() int {
	return s.numSettledNodes
}

// init. label the source with cost 0 and queue it with priority rank
func (s *SearchState) init(source da.Index, rank float64) {
	s.cost[source] = 0
	node := da.NewPriorityQueueNode(rank, da.NewQueryKey(source))
	s.heapNodes[source] = node
	s.pq.Insert(node)
}

// next. extract and settle the queued vertex with the lowest rank, lowest index first on ties
func (s *SearchState) next() (da.Index, bool) {
	if s.pq.IsEmpty() {
		return da.INVALID_VERTEX_ID, false
	}
	node, _ := s.pq.ExtractMin()
	u := node.GetItem().GetNode()
	s.settled[u] = true
	s.heapNodes[u] = nil
	s.numSettledNodes++
	return u, true
}

// relax. label v with cost through parent if that improves it. rank is the queue priority of v for that cost.
func (s *SearchState) relax(v, parent da.Index, cost, rank float64) bool {
	if s.settled[v] || cost >= s.cost[v] {
		return false
	}

	s.cost[v] = cost
	s.parent[v] = parent

	if node := s.heapNodes[v]; node != nil {
		// node is still queued and cost only decreases, rank = cost + a fixed per-vertex bound
		_ = s.pq.DecreaseKey(node, rank)
		return true
	}
	node := da.NewPriorityQueueNode(rank, da.NewQueryKey(v))
	s.heapNodes[v] = node
	s.pq.Insert(node)
	return true
}

// path. vertices from source to target following the parent labels
func (s *SearchState) path(source, target da.Index) ([]da.Index, bool) {
	path := make([]da.Index, 0)
	for u := target; ; u = s.parent[u] {
		path = append(path, u)
		if u == source {
			break
		}
		if s.parent[u] == da.INVALID_VERTEX_ID || len(path) > len(s.parent) {
			return nil, false
		}
	}
	return util.ReverseG(path), true
}
