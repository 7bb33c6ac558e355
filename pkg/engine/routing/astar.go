package routing

import (
	"context"
	"fmt"
	"time"

	da "github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/util"
)

/*
AStar. Dijkstra guided by a lower bound of the remaining travel time, skipping blocked edges.

h(v) = greatCircle(v, t) / speedLimit * 3600. every edge costs at least its great-circle length at the speed limit,
so h is admissible, and consistent by the triangle inequality.
*/
type AStar struct {
	engine  *RoutingEngine
	blocked *BlockedEdges
	state   *SearchState
}

func NewAStar(engine *RoutingEngine, blocked *BlockedEdges) *AStar {
	return &AStar{
		engine:  engine,
		blocked: blocked,
	}
}

func (as *AStar) heuristic(v, t da.Index) float64 {
	return util.HoursToSeconds(as.engine.graph.GetDistance(v, t) / as.engine.costFunction.GetSpeedLimit())
}

func (as *AStar) ShortestPath(ctx context.Context, s, t da.Index, departure time.Time) (*Route, error) {
	startTime := time.Now()
	as.state = NewSearchState(as.engine.graph.NumberOfVertices())
	defer func() {
		as.engine.metrics.ObserveSearch("astar", time.Since(startTime), as.state.NumSettledNodes())
	}()

	as.state.init(s, as.heuristic(s, t))

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		u, ok := as.state.next()
		if !ok {
			break
		}
		if u == t {
			path, ok := as.state.path(s, t)
			if !ok {
				return nil, fmt.Errorf("%w: broken predecessor chain to %d", ErrUnreachable, as.engine.graph.GetSite(t))
			}
			return as.engine.newRoute(as.state.GetCost(t), path), nil
		}

		if err := as.graphSearch(ctx, u, t, departure); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: %d -> %d", ErrUnreachable, as.engine.graph.GetSite(s), as.engine.graph.GetSite(t))
}

func (as *AStar) graphSearch(ctx context.Context, u, t da.Index, departure time.Time) error {
	uCost := as.state.GetCost(u)

	var searchErr error
	as.engine.graph.ForOutEdgesOf(u, func(v da.Index) {
		if searchErr != nil || as.state.IsSettled(v) || as.blocked.IsBlocked(u, v) {
			return
		}

		w, ok, err := as.engine.edgeCost(ctx, u, v, t, departure, uCost)
		if err != nil {
			searchErr = err
			return
		}
		if !ok {
			return
		}

		newCost := uCost + w
		as.state.relax(v, u, newCost, newCost+as.heuristic(v, t))
	})
	return searchErr
}
