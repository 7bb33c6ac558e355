package datastructure

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/geo"
	"go.uber.org/zap"
)

// Index. dense vertex index of an intersection inside a Graph
type Index uint32

// SiteID. SCATS site number of an intersection
type SiteID int64

const (
	INVALID_VERTEX_ID Index = ^Index(0)
	NUM_DIRECTIONS          = 8
)

var (
	ErrMalformedGraph = errors.New("malformed graph")
)

// DanglingPolicy. what to do with a neighbor id that has no row in the neighbor table
type DanglingPolicy uint8

const (
	DANGLING_REJECT DanglingPolicy = iota
	DANGLING_DROP
)

func ParseDanglingPolicy(s string) (DanglingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject", "strict":
		return DANGLING_REJECT, nil
	case "drop", "lenient":
		return DANGLING_DROP, nil
	default:
		return DANGLING_REJECT, fmt.Errorf("unknown dangling neighbor policy %q", s)
	}
}

// NeighborRow. one row of the neighbor table. a neighbor <= 0 means no neighbor in that direction
type NeighborRow struct {
	Site      SiteID
	Lat       float64
	Lon       float64
	Neighbors [NUM_DIRECTIONS]SiteID
}

type Intersection struct {
	site      SiteID
	lat       float64
	lon       float64
	neighbors []Index
}

func (v *Intersection) GetSite() SiteID {
	return v.site
}

func (v *Intersection) GetLat() float64 {
	return v.lat
}

func (v *Intersection) GetLon() float64 {
	return v.lon
}

func (v *Intersection) GetCoordinate() geo.Coordinate {
	return geo.NewCoordinate(v.lat, v.lon)
}

func (v *Intersection) GetNeighbors() []Index {
	return v.neighbors
}

// Graph. immutable intersection graph. vertices are sorted by site number, so a lower index means a lower site number.
type Graph struct {
	vertices    []*Intersection
	siteToIndex map[SiteID]Index
	numEdges    int
}

// NewGraph. build the routing graph from the neighbor table.
func NewGraph(rows []NeighborRow, policy DanglingPolicy, log *zap.Logger) (*Graph, error) {
	sorted := make([]NeighborRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Site < sorted[j].Site
	})

	g := &Graph{
		vertices:    make([]*Intersection, len(sorted)),
		siteToIndex: make(map[SiteID]Index, len(sorted)),
	}

	for i, row := range sorted {
		if row.Site <= 0 {
			return nil, fmt.Errorf("%w: invalid site number %d", ErrMalformedGraph, row.Site)
		}
		if _, exists := g.siteToIndex[row.Site]; exists {
			return nil, fmt.Errorf("%w: duplicate site number %d", ErrMalformedGraph, row.Site)
		}
		if !geo.ValidCoordinate(row.Lat, row.Lon) {
			return nil, fmt.Errorf("%w: site %d has invalid coordinate (%f, %f)", ErrMalformedGraph, row.Site, row.Lat, row.Lon)
		}
		g.siteToIndex[row.Site] = Index(i)
		g.vertices[i] = &Intersection{
			site: row.Site,
			lat:  row.Lat,
			lon:  row.Lon,
		}
	}

	for i, row := range sorted {
		v := g.vertices[i]
		seen := make(map[Index]struct{}, NUM_DIRECTIONS)
		for _, neighbor := range row.Neighbors {
			if neighbor <= 0 {
				continue
			}

			nIdx, ok := g.siteToIndex[neighbor]
			if !ok {
				if policy == DANGLING_REJECT {
					return nil, fmt.Errorf("%w: site %d references unknown neighbor %d", ErrMalformedGraph, row.Site, neighbor)
				}
				log.Warn("dropping neighbor absent from the neighbor table",
					zap.Int64("site", int64(row.Site)), zap.Int64("neighbor", int64(neighbor)))
				continue
			}

			if nIdx == Index(i) {
				log.Warn("dropping self loop", zap.Int64("site", int64(row.Site)))
				continue
			}

			if _, dup := seen[nIdx]; dup {
				continue
			}
			seen[nIdx] = struct{}{}
			v.neighbors = append(v.neighbors, nIdx)
			g.numEdges++
		}
	}

	return g, nil
}

func (g *Graph) NumberOfVertices() int {
	return len(g.vertices)
}

func (g *Graph) NumberOfEdges() int {
	return g.numEdges
}

func (g *Graph) GetVertex(u Index) *Intersection {
	return g.vertices[u]
}

func (g *Graph) GetIndex(site SiteID) (Index, bool) {
	u, ok := g.siteToIndex[site]
	return u, ok
}

func (g *Graph) GetSite(u Index) SiteID {
	return g.vertices[u].site
}

func (g *Graph) GetVertexCoordinates(u Index) (float64, float64) {
	return g.vertices[u].lat, g.vertices[u].lon
}

// GetDistance. great-circle distance from u to v in km
func (g *Graph) GetDistance(u, v Index) float64 {
	uu, vv := g.vertices[u], g.vertices[v]
	return geo.GreatCircleDistance(uu.lat, uu.lon, vv.lat, vv.lon)
}

func (g *Graph) HasEdge(u, v Index) bool {
	for _, w := range g.vertices[u].neighbors {
		if w == v {
			return true
		}
	}
	return false
}

// ForOutEdgesOf. iterate the neighbors of u in neighbor table order
func (g *Graph) ForOutEdgesOf(u Index, handle func(v Index)) {
	for _, v := range g.vertices[u].neighbors {
		handle(v)
	}
}

func (g *Graph) ForVertices(handle func(u Index, v *Intersection)) {
	for i, v := range g.vertices {
		handle(Index(i), v)
	}
}

func (g *Graph) Sites(path []Index) []SiteID {
	sites := make([]SiteID, len(path))
	for i, u := range path {
		sites[i] = g.vertices[u].site
	}
	return sites
}

func (g *Graph) Coordinates(path []Index) []geo.Coordinate {
	coords := make([]geo.Coordinate, len(path))
	for i, u := range path {
		coords[i] = g.vertices[u].GetCoordinate()
	}
	return coords
}
