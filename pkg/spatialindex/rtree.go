package spatialindex

import (
	"math"
	"sort"

	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/geo"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

const (
	maxSearchRadiusKm = 50.0
)

type Rtree struct {
	tr *rtree.RTreeG[datastructure.Index]
}

type Candidate struct {
	vertex   datastructure.Index
	distance float64 // km
}

func (c Candidate) GetVertex() datastructure.Index {
	return c.vertex
}

func (c Candidate) GetDistance() float64 {
	return c.distance
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[datastructure.Index]
	return &Rtree{
		tr: &tr,
	}
}

// Build. index every intersection of graph as a point
func (rt *Rtree) Build(graph *datastructure.Graph, log *zap.Logger) {
	log.Info("Building R-tree spatial index...")
	graph.ForVertices(func(u datastructure.Index, v *datastructure.Intersection) {
		p := [2]float64{v.GetLon(), v.GetLat()}
		rt.tr.Insert(p, p, u)
	})
	log.Info("R-tree spatial index built.", zap.Int("intersections", rt.tr.Len()))
}

// SearchWithinRadius. intersections within radius (in km) of (qLat, qLon), nearest first
func (rt *Rtree) SearchWithinRadius(qLat, qLon, radius float64) []Candidate {
	lowerLat, lowerLon := geo.GetDestinationPoint(qLat, qLon, 225, radius*math.Sqrt2)
	upperLat, upperLon := geo.GetDestinationPoint(qLat, qLon, 45, radius*math.Sqrt2)

	results := make([]Candidate, 0, 10)
	rt.tr.Search([2]float64{lowerLon, lowerLat}, [2]float64{upperLon, upperLat},
		func(min, max [2]float64, u datastructure.Index) bool {
			d := geo.GreatCircleDistance(qLat, qLon, min[1], min[0])
			if d <= radius {
				results = append(results, Candidate{vertex: u, distance: d})
			}
			return true
		})

	sortCandidates(results)
	return results
}

// NearestIntersection. closest intersection to (qLat, qLon), widening the search from radius up to 50 km
func (rt *Rtree) NearestIntersection(qLat, qLon, radius float64) (Candidate, bool) {
	if radius <= 0 {
		radius = 0.5
	}
	for ; radius <= maxSearchRadiusKm; radius *= 2 {
		if found := rt.SearchWithinRadius(qLat, qLon, radius); len(found) > 0 {
			return found[0], true
		}
	}
	return Candidate{}, false
}

// sortCandidates. nearest first, ties by lowest vertex index
func sortCandidates(c []Candidate) {
	sort.Slice(c, func(i, j int) bool {
		if c[i].distance != c[j].distance {
			return c[i].distance < c[j].distance
		}
		return c[i].vertex < c[j].vertex
	})
}
