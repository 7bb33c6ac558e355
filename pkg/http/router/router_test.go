package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/engine/routing"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/geo"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/metrics"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type routeCall struct {
	start, target datastructure.SiteID
	k             int
	departure     time.Time
}

type fakeService struct {
	err      error
	routes   []*routing.Route
	calls    []routeCall
	nearest  map[[2]float64]datastructure.SiteID
	vertices map[datastructure.SiteID]*datastructure.Intersection
	graph    *datastructure.Graph
}

func (f *fakeService) ShortestPath(ctx context.Context, start, target datastructure.SiteID,
	departure time.Time) (*routing.Route, error) {
	f.calls = append(f.calls, routeCall{start: start, target: target, departure: departure})
	if f.err != nil {
		return nil, f.err
	}
	return f.routes[0], nil
}

func (f *fakeService) AlternativeRoutes(ctx context.Context, start, target datastructure.SiteID, k int,
	departure time.Time) ([]*routing.Route, error) {
	f.calls = append(f.calls, routeCall{start: start, target: target, k: k, departure: departure})
	if f.err != nil {
		return nil, f.err
	}
	return f.routes[:min(k, len(f.routes))], nil
}

func (f *fakeService) NearestSite(lat, lon float64) (datastructure.SiteID, error) {
	site, ok := f.nearest[[2]float64{lat, lon}]
	if !ok {
		return 0, util.WrapErrorf(nil, util.ErrNotFound, "no intersection near %f,%f", lat, lon)
	}
	return site, nil
}

func (f *fakeService) Intersection(site datastructure.SiteID) (*datastructure.Intersection,
	[]datastructure.SiteID, error) {
	u, ok := f.graph.GetIndex(site)
	if !ok {
		return nil, nil, util.WrapErrorf(nil, util.ErrNotFound, "unknown intersection %d", site)
	}
	v := f.graph.GetVertex(u)
	return v, f.graph.Sites(v.GetNeighbors()), nil
}

func newFakeService(t *testing.T) *fakeService {
	rows := []datastructure.NeighborRow{
		{Site: 970, Lat: -37.86703, Lon: 145.09159, Neighbors: [datastructure.NUM_DIRECTIONS]datastructure.SiteID{2846}},
		{Site: 2846, Lat: -37.86190, Lon: 145.05888},
	}
	g, err := datastructure.NewGraph(rows, datastructure.DANGLING_REJECT, zap.NewNop())
	require.NoError(t, err)

	coords := []geo.Coordinate{geo.NewCoordinate(-37.86703, 145.09159), geo.NewCoordinate(-37.86190, 145.05888)}
	return &fakeService{
		routes: []*routing.Route{
			routing.NewRoute(240, 2.9, []datastructure.SiteID{970, 2846}, coords),
			routing.NewRoute(300, 3.5, []datastructure.SiteID{970, 3001, 2846}, coords),
		},
		nearest: map[[2]float64]datastructure.SiteID{
			{-37.867, 145.0916}: 970,
			{-37.862, 145.0589}: 2846,
		},
		graph: g,
	}
}

func newTestHandler(t *testing.T, svc *fakeService, useRateLimit bool) (http.Handler, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	api := NewAPI(zap.NewNop(), metrics.NewMetrics(reg), reg)
	return api.Handler(useRateLimit, svc), reg
}

type apiResponse struct {
	Data struct {
		TravelTime float64  `json:"travel_time"`
		Distance   float64  `json:"distance"`
		Path       []int64  `json:"path"`
		Polyline   string   `json:"polyline"`
		Geometry   geometry `json:"geometry"`
		Routes     []struct {
			TravelTime float64 `json:"travel_time"`
			Path       []int64 `json:"path"`
		} `json:"routes"`
		Site      int64   `json:"site"`
		Neighbors []int64 `json:"neighbors"`
	} `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type geometry struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

func do(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, apiResponse) {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp apiResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestComputeRoutesBySite(t *testing.T) {
	svc := newFakeService(t)
	h, _ := newTestHandler(t, svc, false)

	rec, resp := do(t, h, http.MethodGet, "/api/computeRoutes?start=970&target=2846&departure=2006-10-09T08:00:00Z")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 240.0, resp.Data.TravelTime)
	assert.Equal(t, 2.9, resp.Data.Distance)
	assert.Equal(t, []int64{970, 2846}, resp.Data.Path)
	assert.NotEmpty(t, resp.Data.Polyline)
	assert.Equal(t, "LineString", resp.Data.Geometry.Type)
	assert.Equal(t, []float64{145.09159, -37.86703}, resp.Data.Geometry.Coordinates[0])

	require.Len(t, svc.calls, 1)
	assert.Equal(t, datastructure.SiteID(970), svc.calls[0].start)
	assert.Equal(t, datastructure.SiteID(2846), svc.calls[0].target)
	assert.True(t, svc.calls[0].departure.Equal(time.Date(2006, 10, 9, 8, 0, 0, 0, time.UTC)))
}

func TestComputeRoutesByCoordinates(t *testing.T) {
	svc := newFakeService(t)
	h, _ := newTestHandler(t, svc, false)

	rec, _ := do(t, h, http.MethodGet,
		"/api/computeRoutes?origin_lat=-37.867&origin_lon=145.0916&destination_lat=-37.862&destination_lon=145.0589")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.calls, 1)
	assert.Equal(t, datastructure.SiteID(970), svc.calls[0].start)
	assert.Equal(t, datastructure.SiteID(2846), svc.calls[0].target)
	assert.WithinDuration(t, time.Now(), svc.calls[0].departure, time.Minute)

	rec, resp := do(t, h, http.MethodGet,
		"/api/computeRoutes?origin_lat=10&origin_lon=10&destination_lat=-37.862&destination_lon=145.0589")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", resp.Error.Code)
}

func TestComputeRoutesBadRequest(t *testing.T) {
	h, _ := newTestHandler(t, newFakeService(t), false)

	targets := []string{
		"/api/computeRoutes",
		"/api/computeRoutes?start=970",
		"/api/computeRoutes?start=abc&target=2846",
		"/api/computeRoutes?start=970&target=2846&departure=monday",
		"/api/computeRoutes?start=-5&target=2846",
		"/api/computeRoutes?start=970&destination_lat=200&destination_lon=10",
	}
	for _, target := range targets {
		rec, resp := do(t, h, http.MethodGet, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, "bad_request", resp.Error.Code, target)
	}
}

func TestComputeRoutesErrorCodes(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unreachable", util.WrapErrorf(routing.ErrUnreachable, util.ErrNotFound, "no path found"),
			http.StatusNotFound, "not_found"},
		{"invalid", util.WrapErrorf(routing.ErrInvalidRequest, util.ErrBadParamInput, "unknown site"),
			http.StatusBadRequest, "bad_request"},
		{"unavailable", util.WrapErrorf(nil, util.ErrServiceUnavailable, "flow estimate unavailable"),
			http.StatusServiceUnavailable, "service_unavailable"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "internal_server_error"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeService(t)
			svc.err = tt.err
			h, _ := newTestHandler(t, svc, false)

			rec, resp := do(t, h, http.MethodGet, "/api/computeRoutes?start=970&target=2846")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotContains(t, resp.Error.Message, "boom")
		})
	}
}

func TestComputeAlternativeRoutes(t *testing.T) {
	svc := newFakeService(t)
	h, _ := newTestHandler(t, svc, false)

	rec, resp := do(t, h, http.MethodGet, "/api/computeAlternativeRoutes?start=970&target=2846")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp.Data.Routes, 2)
	assert.Equal(t, 2, svc.calls[0].k)
	assert.Equal(t, []int64{970, 2846}, resp.Data.Routes[0].Path)
	assert.Equal(t, 300.0, resp.Data.Routes[1].TravelTime)

	rec, resp = do(t, h, http.MethodGet, "/api/computeAlternativeRoutes?start=970&target=2846&k=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp.Data.Routes, 1)

	rec, _ = do(t, h, http.MethodGet, "/api/computeAlternativeRoutes?start=970&target=2846&k=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIntersection(t *testing.T) {
	h, _ := newTestHandler(t, newFakeService(t), false)

	rec, resp := do(t, h, http.MethodGet, "/api/intersections/970")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(970), resp.Data.Site)
	assert.Equal(t, []int64{2846}, resp.Data.Neighbors)

	rec, _ = do(t, h, http.MethodGet, "/api/intersections/1234")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/api/intersections/north")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHeartbeatAndMetrics(t *testing.T) {
	h, _ := newTestHandler(t, newFakeService(t), false)

	rec, _ := do(t, h, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	do(t, h, http.MethodGet, "/api/intersections/970")
	rec, _ = do(t, h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `trafficrouting_http_requests_total{code="200",method="GET",path="/api/intersections/:id"} 1`)
}

func TestEnforceJSONHandler(t *testing.T) {
	h, _ := newTestHandler(t, newFakeService(t), false)

	req := httptest.NewRequest(http.MethodPost, "/api/computeRoutes", strings.NewReader("start=970"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestLimit(t *testing.T) {
	viper.Reset()
	viper.Set("RATE_LIMIT_RPS", 0.001)
	viper.Set("RATE_LIMIT_BURST", 1)
	defer viper.Reset()

	h, _ := newTestHandler(t, newFakeService(t), true)

	rec, _ := do(t, h, http.MethodGet, "/api/intersections/970")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(t, h, http.MethodGet, "/api/intersections/970")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRecoverPanic(t *testing.T) {
	api := NewAPI(zap.NewNop(), nil, nil)
	h := api.recoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "close", rec.Header().Get("Connection"))
}

func TestRealIP(t *testing.T) {
	var got string
	h := RealIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.RemoteAddr
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "203.0.113.7", got)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "198.51.100.2")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "198.51.100.2", got)
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/api/intersections/:id", routeLabel("/api/intersections/970"))
	assert.Equal(t, "/api/computeRoutes", routeLabel("/api/computeRoutes"))
}
