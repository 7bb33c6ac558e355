package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/engine/routing"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/estimator"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/geo"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/util"
	"go.uber.org/zap"
)

type RoutingService struct {
	log          *zap.Logger
	engine       RoutingEngine
	spatialIndex SpatialIndex
	searchRadius float64
}

func NewRoutingService(log *zap.Logger, engine RoutingEngine, spatialIndex SpatialIndex,
	searchRadius float64) *RoutingService {
	return &RoutingService{
		log:          log,
		engine:       engine,
		spatialIndex: spatialIndex,
		searchRadius: searchRadius,
	}
}

func (rs *RoutingService) ShortestPath(ctx context.Context, start, target datastructure.SiteID,
	departure time.Time) (*routing.Route, error) {
	route, err := rs.engine.ShortestPath(ctx, start, target, departure)
	if err != nil {
		return nil, rs.wrapRoutingError(err, start, target)
	}
	return route, nil
}

func (rs *RoutingService) AlternativeRoutes(ctx context.Context, start, target datastructure.SiteID, k int,
	departure time.Time) ([]*routing.Route, error) {
	routes, err := rs.engine.AlternativeRoutes(ctx, start, target, k, departure)
	if err != nil {
		return nil, rs.wrapRoutingError(err, start, target)
	}
	return routes, nil
}

// NearestSite. scats site closest to (lat, lon)
func (rs *RoutingService) NearestSite(lat, lon float64) (datastructure.SiteID, error) {
	if !geo.ValidCoordinate(lat, lon) {
		return 0, util.WrapErrorf(nil, util.ErrBadParamInput, "invalid coordinate %f,%f", lat, lon)
	}
	c, ok := rs.spatialIndex.NearestIntersection(lat, lon, rs.searchRadius)
	if !ok {
		return 0, util.WrapErrorf(nil, util.ErrNotFound, "no intersection near %f,%f", lat, lon)
	}
	return rs.engine.GetGraph().GetSite(c.GetVertex()), nil
}

// Intersection. intersection with the site numbers of its out-neighbors
func (rs *RoutingService) Intersection(site datastructure.SiteID) (*datastructure.Intersection,
	[]datastructure.SiteID, error) {
	graph := rs.engine.GetGraph()
	u, ok := graph.GetIndex(site)
	if !ok {
		return nil, nil, util.WrapErrorf(nil, util.ErrNotFound, "unknown intersection %d", site)
	}
	v := graph.GetVertex(u)
	return v, graph.Sites(v.GetNeighbors()), nil
}

func (rs *RoutingService) wrapRoutingError(err error, start, target datastructure.SiteID) error {
	switch {
	case errors.Is(err, routing.ErrInvalidRequest):
		return util.WrapErrorf(err, util.ErrBadParamInput, "invalid route request from %d to %d", start, target)
	case errors.Is(err, routing.ErrUnreachable):
		return util.WrapErrorf(err, util.ErrNotFound, "no path found from %d to %d", start, target)
	case errors.Is(err, estimator.ErrEstimatorUnavailable), errors.Is(err, estimator.ErrEmptyLagVector):
		return util.WrapErrorf(err, util.ErrServiceUnavailable, "flow estimate unavailable for route from %d to %d",
			start, target)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return util.WrapErrorf(err, util.ErrServiceUnavailable, "route search from %d to %d interrupted", start, target)
	default:
		rs.log.Error("route search failed", zap.Int64("start", int64(start)), zap.Int64("target", int64(target)),
			zap.Error(err))
		return util.WrapErrorf(err, util.ErrInternalServerError, "%s", util.MessageInternalServerError)
	}
}
