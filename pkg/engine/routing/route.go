package routing

import (
	da "github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/geo"
)

type Route struct {
	travelTime float64 // seconds
	distance   float64 // km
	path       []da.SiteID
	coords     []geo.Coordinate
}

func NewRoute(travelTime, distance float64, path []da.SiteID, coords []geo.Coordinate) *Route {
	return &Route{
		travelTime: travelTime,
		distance:   distance,
		path:       path,
		coords:     coords,
	}
}

func (r *Route) GetTravelTime() float64 {
	return r.travelTime
}

func (r *Route) GetDistance() float64 {
	return r.distance
}

func (r *Route) GetPath() []da.SiteID {
	return r.path
}

func (r *Route) GetCoordinates() []geo.Coordinate {
	return r.coords
}

func (r *Route) NumberOfEdges() int {
	return len(r.path) - 1
}
