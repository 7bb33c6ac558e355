package routing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/RdZ0101/Traffic-Flow-prediction/pkg"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/costfunction"
	da "github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
	met "github.com/RdZ0101/Traffic-Flow-prediction/pkg/metrics"
	"go.uber.org/zap"
)

var (
	ErrUnreachable    = errors.New("target is unreachable from start")
	ErrInvalidRequest = errors.New("invalid routing request")
)

// FailurePolicy. what a search does with an edge whose cost cannot be estimated
type FailurePolicy uint8

const (
	SKIP_EDGE FailurePolicy = iota
	ABORT_SEARCH
)

func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "", "skip":
		return SKIP_EDGE, nil
	case "abort":
		return ABORT_SEARCH, nil
	default:
		return SKIP_EDGE, fmt.Errorf("unknown estimator failure policy %q", s)
	}
}

func (p FailurePolicy) String() string {
	if p == ABORT_SEARCH {
		return "abort"
	}
	return "skip"
}

type RoutingEngine struct {
	graph        *da.Graph
	costFunction costfunction.CostFunction
	policy       FailurePolicy
	metrics      *met.Metrics
	logger       *zap.Logger
}

func NewRoutingEngine(graph *da.Graph, costFunction costfunction.CostFunction, policy FailurePolicy,
	metrics *met.Metrics, logger *zap.Logger) *RoutingEngine {
	return &RoutingEngine{
		graph:        graph,
		costFunction: costFunction,
		policy:       policy,
		metrics:      metrics,
		logger:       logger,
	}
}

func (re *RoutingEngine) GetGraph() *da.Graph {
	return re.graph
}

func (re *RoutingEngine) GetFailurePolicy() FailurePolicy {
	return re.policy
}

func (re *RoutingEngine) resolve(start, target da.SiteID) (da.Index, da.Index, error) {
	s, ok := re.graph.GetIndex(start)
	if !ok {
		return 0, 0, fmt.Errorf("%w: unknown start intersection %d", ErrInvalidRequest, start)
	}
	t, ok := re.graph.GetIndex(target)
	if !ok {
		return 0, 0, fmt.Errorf("%w: unknown target intersection %d", ErrInvalidRequest, target)
	}
	return s, t, nil
}

/*
edgeCost. travel time of (u,v) entered elapsedSeconds after departure.

ok is false when the edge must be left out of the search. an error aborts the search: context errors, any
estimator failure under ABORT_SEARCH, and estimator failures on edges into the target, which cannot be priced
any other way.
*/
func (re *RoutingEngine) edgeCost(ctx context.Context, u, v, target da.Index, departure time.Time,
	elapsedSeconds float64) (float64, bool, error) {
	w, err := re.costFunction.GetWeightAtTime(ctx, u, v, departure, elapsedSeconds)
	if err != nil {
		if ctx.Err() != nil {
			return 0, false, ctx.Err()
		}
		if re.policy == ABORT_SEARCH || v == target {
			return 0, false, err
		}
		re.metrics.SkippedEdge()
		re.logger.Warn("skipping edge without flow estimate",
			zap.Int64("from", int64(re.graph.GetSite(u))), zap.Int64("to", int64(re.graph.GetSite(v))),
			zap.Error(err))
		return 0, false, nil
	}
	if math.IsNaN(w) || w < 0 || w >= pkg.INF_WEIGHT {
		return 0, false, nil
	}
	return w, true, nil
}

// PathCost. cost in seconds of travelling path, each edge priced at its arrival time
func (re *RoutingEngine) PathCost(ctx context.Context, path []da.SiteID, departure time.Time) (float64, error) {
	if len(path) == 0 {
		return 0, fmt.Errorf("%w: empty path", ErrInvalidRequest)
	}

	indices := make([]da.Index, len(path))
	for i, site := range path {
		u, ok := re.graph.GetIndex(site)
		if !ok {
			return 0, fmt.Errorf("%w: unknown intersection %d", ErrInvalidRequest, site)
		}
		indices[i] = u
	}

	cost := 0.0
	for i := 1; i < len(indices); i++ {
		u, v := indices[i-1], indices[i]
		if !re.graph.HasEdge(u, v) {
			return 0, fmt.Errorf("%w: no edge %d -> %d", ErrInvalidRequest, path[i-1], path[i])
		}
		w, err := re.costFunction.GetWeightAtTime(ctx, u, v, departure, cost)
		if err != nil {
			return 0, err
		}
		cost += w
	}
	return cost, nil
}

// ShortestPath. fastest route from start to target leaving at departure
func (re *RoutingEngine) ShortestPath(ctx context.Context, start, target da.SiteID, departure time.Time) (*Route, error) {
	s, t, err := re.resolve(start, target)
	if err != nil {
		return nil, err
	}
	return NewDijkstra(re).ShortestPath(ctx, s, t, departure)
}

// AlternativeRoutes. up to k routes from start to target, see FindAlternativeRoutes
func (re *RoutingEngine) AlternativeRoutes(ctx context.Context, start, target da.SiteID, k int,
	departure time.Time) ([]*Route, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: number of routes must be positive, got %d", ErrInvalidRequest, k)
	}
	s, t, err := re.resolve(start, target)
	if err != nil {
		return nil, err
	}
	return NewAlternativeRouteSearch(re).FindAlternativeRoutes(ctx, s, t, k, departure)
}

func (re *RoutingEngine) newRoute(cost float64, path []da.Index) *Route {
	dist := 0.0
	for i := 1; i < len(path); i++ {
		dist += re.graph.GetDistance(path[i-1], path[i])
	}
	return NewRoute(cost, dist, re.graph.Sites(path), re.graph.Coordinates(path))
}
