package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/engine"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/engine/routing"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/geo"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/logger"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/util"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "./data", "config file, or directory containing config.yaml")
	start      = flag.Int64("start", 0, "start scats site")
	target     = flag.Int64("target", 0, "target scats site")
	departure  = flag.String("departure", "", "RFC3339 departure time, defaults to now")
	k          = flag.Int("k", 1, "number of edge-disjoint routes")
	timeout    = flag.Duration("timeout", 30*time.Second, "query timeout")
)

type routeOutput struct {
	TravelTime float64 `json:"travel_time"`
	Distance   float64 `json:"distance"`
	Path       []int64 `json:"path"`
	Polyline   string  `json:"polyline"`
}

type routeQuerier interface {
	ShortestPath(ctx context.Context, start, target datastructure.SiteID, departure time.Time) (*routing.Route, error)
	AlternativeRoutes(ctx context.Context, start, target datastructure.SiteID, k int,
		departure time.Time) ([]*routing.Route, error)
}

// queryRoutes. k == 1 is a plain shortest path query, any other k goes through the alternatives search,
// which rejects k < 1
func queryRoutes(ctx context.Context, re routeQuerier, start, target datastructure.SiteID, k int,
	departure time.Time) ([]*routing.Route, error) {
	if k != 1 {
		return re.AlternativeRoutes(ctx, start, target, k, departure)
	}
	route, err := re.ShortestPath(ctx, start, target, departure)
	if err != nil {
		return nil, err
	}
	return []*routing.Route{route}, nil
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := util.ReadConfig(*configPath); err != nil {
		return err
	}
	log, err := logger.New()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	depart := time.Now()
	if *departure != "" {
		depart, err = time.Parse(time.RFC3339, *departure)
		if err != nil {
			return fmt.Errorf("parsing departure: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cfg := engine.ConfigFromViper()
	cfg.WarmupWorkers = 0
	e, err := engine.NewEngine(ctx, cfg, nil, log)
	if err != nil {
		return err
	}

	routes, err := queryRoutes(ctx, e.GetRoutingEngine(), datastructure.SiteID(*start),
		datastructure.SiteID(*target), *k, depart)
	if err != nil {
		return err
	}

	out := make([]routeOutput, 0, len(routes))
	for _, r := range routes {
		path := make([]int64, 0, len(r.GetPath()))
		for _, site := range r.GetPath() {
			path = append(path, int64(site))
		}
		out = append(out, routeOutput{
			TravelTime: r.GetTravelTime(),
			Distance:   r.GetDistance(),
			Path:       path,
			Polyline:   geo.PolylineFromCoords(r.GetCoordinates()),
		})
	}
	log.Debug("routes found", zap.Int("count", len(out)))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
