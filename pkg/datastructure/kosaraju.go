package datastructure

import (
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/util"
)

// Components. strongly connected components of the intersection graph
type Components struct {
	sccs  []int // component id of every vertex
	sizes []int
}

func (c *Components) NumberOfComponents() int {
	return len(c.sizes)
}

func (c *Components) ComponentOf(u Index) int {
	return c.sccs[u]
}

func (c *Components) SameComponent(u, v Index) bool {
	return c.sccs[u] == c.sccs[v]
}

// LargestComponentSize. number of vertices in the biggest component
func (c *Components) LargestComponentSize() int {
	largest := 0
	for _, size := range c.sizes {
		largest = max(largest, size)
	}
	return largest
}

// RunKosaraju. runs kosaraju's algorithm to find strongly connected components (SCCs) of the intersection graph.
// ids are assigned in the order components are discovered on the reversed graph.
func (g *Graph) RunKosaraju() *Components {
	n := Index(g.NumberOfVertices())

	order := make([]Index, 0, n)
	visited := make([]bool, n)
	for v := Index(0); v < n; v++ {
		if !visited[v] {
			g.dfs(v, &order, visited, g.outNeighbors)
		}
	}

	order = util.ReverseG[Index](order)

	reversed := g.reversedAdjacency()
	inNeighbors := func(v Index) []Index { return reversed[v] }

	// reset visited
	visited = make([]bool, n)
	c := &Components{sccs: make([]int, n)}

	for _, v := range order {
		if visited[v] {
			continue
		}
		component := make([]Index, 0, 10)
		g.dfs(v, &component, visited, inNeighbors)
		for _, u := range component {
			c.sccs[u] = len(c.sizes)
		}
		c.sizes = append(c.sizes, len(component))
	}
	return c
}

func (g *Graph) outNeighbors(v Index) []Index {
	return g.vertices[v].neighbors
}

func (g *Graph) reversedAdjacency() [][]Index {
	in := make([][]Index, g.NumberOfVertices())
	for u, v := range g.vertices {
		for _, w := range v.neighbors {
			in[w] = append(in[w], Index(u))
		}
	}
	return in
}

func (g *Graph) dfs(v Index, output *[]Index, visited []bool, neighbors func(v Index) []Index) {
	visited[v] = true

	for _, w := range neighbors(v) {
		if !visited[w] {
			g.dfs(w, output, visited, neighbors)
		}
	}

	*output = append(*output, v)
}
