package routing

import (
	"context"
	"errors"
	"fmt"
	"time"

	da "github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
	"go.uber.org/zap"
)

/*
AlternativeRouteSearch. block-and-retry alternatives: each round runs A* on the graph minus the edges of every route
found so far. rounds stop at k routes or at the first round without a route.

later routes are edge-disjoint from earlier ones but are not the k shortest loopless paths: a route sharing a single
edge with a previous one is never found.
*/
type AlternativeRouteSearch struct {
	engine  *RoutingEngine
	blocked *BlockedEdges
}

func NewAlternativeRouteSearch(engine *RoutingEngine) *AlternativeRouteSearch {
	return &AlternativeRouteSearch{
		engine:  engine,
		blocked: NewBlockedEdges(),
	}
}

func (ar *AlternativeRouteSearch) FindAlternativeRoutes(ctx context.Context, s, t da.Index, k int,
	departure time.Time) ([]*Route, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: number of routes must be positive, got %d", ErrInvalidRequest, k)
	}

	routes := make([]*Route, 0, k)
	for len(routes) < k {
		route, err := NewAStar(ar.engine, ar.blocked).ShortestPath(ctx, s, t, departure)
		if errors.Is(err, ErrUnreachable) {
			break
		}
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)

		if route.NumberOfEdges() == 0 {
			// start == target, there is nothing to block
			break
		}

		path := make([]da.Index, len(route.GetPath()))
		for i, site := range route.GetPath() {
			path[i], _ = ar.engine.graph.GetIndex(site)
		}
		ar.blocked.BlockPath(path)
	}

	if len(routes) == 0 {
		return nil, fmt.Errorf("%w: %d -> %d", ErrUnreachable, ar.engine.graph.GetSite(s), ar.engine.graph.GetSite(t))
	}

	ar.engine.logger.Debug("alternative routes found", zap.Int("requested", k), zap.Int("found", len(routes)),
		zap.Int("blockedEdges", ar.blocked.Len()))
	return routes, nil
}
