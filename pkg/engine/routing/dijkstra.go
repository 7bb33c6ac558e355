package routing

import (
	"context"
	"fmt"
	"time"

	da "github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
)

// Dijkstra. label setting search with edge costs estimated on demand at the arrival time of the tail vertex.
type Dijkstra struct {
	engine *RoutingEngine
	state  *SearchState
}

func NewDijkstra(engine *RoutingEngine) *Dijkstra {
	return &Dijkstra{
		engine: engine,
	}
}

func (d *Dijkstra) ShortestPath(ctx context.Context, s, t da.Index, departure time.Time) (*Route, error) {
	startTime := time.Now()
	d.state = NewSearchState(d.engine.graph.NumberOfVertices())
	defer func() {
		d.engine.metrics.ObserveSearch("dijkstra", time.Since(startTime), d.state.NumSettledNodes())
	}()

	d.state.init(s, 0)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		u, ok := d.state.next()
		if !ok {
			break
		}
		if u == t {
			path, ok := d.state.path(s, t)
			if !ok {
				return nil, fmt.Errorf("%w: broken predecessor chain to %d", ErrUnreachable, d.engine.graph.GetSite(t))
			}
			return d.engine.newRoute(d.state.GetCost(t), path), nil
		}

		if err := d.graphSearch(ctx, u, t, departure); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: %d -> %d", ErrUnreachable, d.engine.graph.GetSite(s), d.engine.graph.GetSite(t))
}

func (d *Dijkstra) graphSearch(ctx context.Context, u, t da.Index, departure time.Time) error {
	uCost := d.state.GetCost(u)

	var searchErr error
	d.engine.graph.ForOutEdgesOf(u, func(v da.Index) {
		if searchErr != nil || d.state.IsSettled(v) {
			return
		}

		w, ok, err := d.engine.edgeCost(ctx, u, v, t, departure, uCost)
		if err != nil {
			searchErr = err
			return
		}
		if !ok {
			return
		}

		newCost := uCost + w
		d.state.relax(v, u, newCost, newCost)
	})
	return searchErr
}
