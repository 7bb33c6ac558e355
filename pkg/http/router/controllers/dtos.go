package controllers

import (
	"encoding/json"
	"time"

	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/engine/routing"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/geo"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/util"
)

// routeRequest. either start/target site numbers or origin/destination coordinates
type routeRequest struct {
	Start          int64     `json:"start" validate:"omitempty,gt=0"`
	Target         int64     `json:"target" validate:"omitempty,gt=0"`
	OriginLat      float64   `json:"origin_lat" validate:"min=-90,max=90"`
	OriginLon      float64   `json:"origin_lon" validate:"min=-180,max=180"`
	DestinationLat float64   `json:"destination_lat" validate:"min=-90,max=90"`
	DestinationLon float64   `json:"destination_lon" validate:"min=-180,max=180"`
	Departure      time.Time `json:"departure"`
	K              int       `json:"k" validate:"min=1,max=10"`
}

type routeResponse struct {
	TravelTime        float64         `json:"travel_time"`
	TravelTimeMinutes float64         `json:"travel_time_minutes"`
	Distance          float64         `json:"distance"`
	Path              []int64         `json:"path"`
	Polyline          string          `json:"polyline"`
	Geometry          json.RawMessage `json:"geometry,omitempty"`
}

func NewRouteResponse(route *routing.Route) routeResponse {
	path := make([]int64, 0, len(route.GetPath()))
	for _, site := range route.GetPath() {
		path = append(path, int64(site))
	}

	resp := routeResponse{
		TravelTime:        route.GetTravelTime(),
		TravelTimeMinutes: util.SecondsToMinutes(route.GetTravelTime()),
		Distance:          route.GetDistance(),
		Path:              path,
		Polyline:          geo.PolylineFromCoords(route.GetCoordinates()),
	}
	if geometry, err := geo.GeoJSONLineString(route.GetCoordinates()); err == nil {
		resp.Geometry = geometry
	}
	return resp
}

type alternativeRoutesResponse struct {
	Routes []routeResponse `json:"routes"`
}

func NewAlternativeRoutesResponse(routes []*routing.Route) alternativeRoutesResponse {
	resp := alternativeRoutesResponse{Routes: make([]routeResponse, 0, len(routes))}
	for _, r := range routes {
		resp.Routes = append(resp.Routes, NewRouteResponse(r))
	}
	return resp
}

type intersectionResponse struct {
	Site      int64   `json:"site"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Neighbors []int64 `json:"neighbors"`
}

func NewIntersectionResponse(v *datastructure.Intersection, neighbors []datastructure.SiteID) intersectionResponse {
	ids := make([]int64, 0, len(neighbors))
	for _, site := range neighbors {
		ids = append(ids, int64(site))
	}
	return intersectionResponse{
		Site:      int64(v.GetSite()),
		Lat:       v.GetLat(),
		Lon:       v.GetLon(),
		Neighbors: ids,
	}
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
