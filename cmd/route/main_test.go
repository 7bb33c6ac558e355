package main

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/engine/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingQuerier struct {
	shortestCalls     int
	alternativesCalls int
}

func (q *recordingQuerier) ShortestPath(ctx context.Context, start, target datastructure.SiteID,
	departure time.Time) (*routing.Route, error) {
	q.shortestCalls++
	return routing.NewRoute(60, 1, []datastructure.SiteID{start, target}, nil), nil
}

func (q *recordingQuerier) AlternativeRoutes(ctx context.Context, start, target datastructure.SiteID, k int,
	departure time.Time) ([]*routing.Route, error) {
	q.alternativesCalls++
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", routing.ErrInvalidRequest, k)
	}
	routes := make([]*routing.Route, 0, k)
	for i := 0; i < k; i++ {
		routes = append(routes, routing.NewRoute(60, 1, []datastructure.SiteID{start, target}, nil))
	}
	return routes, nil
}

func TestQueryRoutes(t *testing.T) {
	testCases := []struct {
		name         string
		k            int
		routes       int
		shortest     bool
		invalidInput bool
	}{
		{"single route is a shortest path query", 1, 1, true, false},
		{"several routes use the alternatives search", 3, 3, false, false},
		{"zero k is rejected", 0, 0, false, true},
		{"negative k is rejected", -2, 0, false, true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			q := &recordingQuerier{}
			routes, err := queryRoutes(context.Background(), q, 970, 2846, tt.k, time.Now())
			if tt.invalidInput {
				require.Error(t, err)
				assert.True(t, errors.Is(err, routing.ErrInvalidRequest))
			} else {
				require.NoError(t, err)
			}
			assert.Len(t, routes, tt.routes)
			if tt.shortest {
				assert.Equal(t, 1, q.shortestCalls)
				assert.Equal(t, 0, q.alternativesCalls)
			} else {
				assert.Equal(t, 0, q.shortestCalls)
				assert.Equal(t, 1, q.alternativesCalls)
			}
		})
	}
}
