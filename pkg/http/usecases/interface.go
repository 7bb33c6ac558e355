package usecases

import (
	"context"
	"time"

	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/engine/routing"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/spatialindex"
)

type RoutingEngine interface {
	ShortestPath(ctx context.Context, start, target datastructure.SiteID, departure time.Time) (*routing.Route, error)
	AlternativeRoutes(ctx context.Context, start, target datastructure.SiteID, k int,
		departure time.Time) ([]*routing.Route, error)
	GetGraph() *datastructure.Graph
}

type SpatialIndex interface {
	NearestIntersection(qLat, qLon, radius float64) (spatialindex.Candidate, bool)
}
