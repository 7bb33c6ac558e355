package controllers

import (
	"context"
	"time"

	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/engine/routing"
)

type RoutingService interface {
	ShortestPath(ctx context.Context, start, target datastructure.SiteID, departure time.Time) (*routing.Route, error)
	AlternativeRoutes(ctx context.Context, start, target datastructure.SiteID, k int,
		departure time.Time) ([]*routing.Route, error)
	NearestSite(lat, lon float64) (datastructure.SiteID, error)
	Intersection(site datastructure.SiteID) (*datastructure.Intersection, []datastructure.SiteID, error)
}
