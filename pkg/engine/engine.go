package engine

import (
	"context"
	"fmt"

	"github.com/RdZ0101/Traffic-Flow-prediction/pkg"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/costfunction"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/engine/routing"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/estimator"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/history"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/metrics"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/scatsparser"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/spatialindex"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type SpeedFlowConfig struct {
	FreeFlowSpeed float64
	CriticalFlow  float64
	Capacity      float64
	SpeedLimit    float64
	MinSpeed      float64
}

type Config struct {
	NeighborTable string
	History       string

	// empty ModelDir: every intersection gets FixedFlow
	ModelDir     string
	ModelVariant string
	TrainDir     string
	FixedFlow    float64

	LagCount          int
	IntervalMinutes   int
	IntersectionDelay float64
	FailurePolicy     string
	DanglingPolicy    string
	WarmupWorkers     int
	SearchRadiusKm    float64

	SpeedFlow SpeedFlowConfig
}

func setDefaults() {
	viper.SetDefault("data.neighbor_table", "./data/neighbors.csv")
	viper.SetDefault("data.history", "./data/history.csv")
	viper.SetDefault("model.dir", "")
	viper.SetDefault("model.variant", "sae")
	viper.SetDefault("model.train_dir", "./data/train")
	viper.SetDefault("model.fixed_flow", 0.0)
	viper.SetDefault("routing.lag_count", pkg.DEFAULT_LAG_COUNT)
	viper.SetDefault("routing.interval_minutes", pkg.DEFAULT_INTERVAL_MINUTES)
	viper.SetDefault("routing.intersection_delay_seconds", pkg.DEFAULT_INTERSECTION_DELAY_SECOND)
	viper.SetDefault("routing.estimator_failure_policy", "skip")
	viper.SetDefault("routing.warmup_workers", 4)
	viper.SetDefault("graph.dangling_policy", "reject")
	viper.SetDefault("speedflow.free_flow_speed", pkg.DEFAULT_FREE_FLOW_SPEED_KMH)
	viper.SetDefault("speedflow.critical_flow", pkg.DEFAULT_CRITICAL_FLOW_VPH)
	viper.SetDefault("speedflow.capacity", pkg.DEFAULT_ROAD_CAPACITY_VPH)
	viper.SetDefault("speedflow.speed_limit", pkg.DEFAULT_SPEED_LIMIT_KMH)
	viper.SetDefault("speedflow.min_speed", pkg.DEFAULT_MIN_SPEED_KMH)
	viper.SetDefault("spatial.search_radius_km", 0.5)
}

// ConfigFromViper. engine settings from the loaded config file and environment
func ConfigFromViper() Config {
	setDefaults()
	return Config{
		NeighborTable:     viper.GetString("data.neighbor_table"),
		History:           viper.GetString("data.history"),
		ModelDir:          viper.GetString("model.dir"),
		ModelVariant:      viper.GetString("model.variant"),
		TrainDir:          viper.GetString("model.train_dir"),
		FixedFlow:         viper.GetFloat64("model.fixed_flow"),
		LagCount:          viper.GetInt("routing.lag_count"),
		IntervalMinutes:   viper.GetInt("routing.interval_minutes"),
		IntersectionDelay: viper.GetFloat64("routing.intersection_delay_seconds"),
		FailurePolicy:     viper.GetString("routing.estimator_failure_policy"),
		DanglingPolicy:    viper.GetString("graph.dangling_policy"),
		WarmupWorkers:     viper.GetInt("routing.warmup_workers"),
		SearchRadiusKm:    viper.GetFloat64("spatial.search_radius_km"),
		SpeedFlow: SpeedFlowConfig{
			FreeFlowSpeed: viper.GetFloat64("speedflow.free_flow_speed"),
			CriticalFlow:  viper.GetFloat64("speedflow.critical_flow"),
			Capacity:      viper.GetFloat64("speedflow.capacity"),
			SpeedLimit:    viper.GetFloat64("speedflow.speed_limit"),
			MinSpeed:      viper.GetFloat64("speedflow.min_speed"),
		},
	}
}

type Engine struct {
	routingEngine  *routing.RoutingEngine
	cache          *estimator.Cache
	spatialIndex   *spatialindex.Rtree
	searchRadiusKm float64
}

func (e *Engine) GetRoutingEngine() *routing.RoutingEngine {
	return e.routingEngine
}

func (e *Engine) GetEstimatorCache() *estimator.Cache {
	return e.cache
}

func (e *Engine) GetSpatialIndex() *spatialindex.Rtree {
	return e.spatialIndex
}

func (e *Engine) GetSearchRadius() float64 {
	return e.searchRadiusKm
}

// NewEngine. read the neighbor table and flow history, then wire graph, estimator cache and cost function
func NewEngine(ctx context.Context, cfg Config, m *metrics.Metrics, logger *zap.Logger) (*Engine, error) {
	logger.Info("Starting traffic-aware routing engine...")

	danglingPolicy, err := datastructure.ParseDanglingPolicy(cfg.DanglingPolicy)
	if err != nil {
		return nil, err
	}
	failurePolicy, err := routing.ParseFailurePolicy(cfg.FailurePolicy)
	if err != nil {
		return nil, err
	}
	speedFlow, err := costfunction.NewSpeedFlowModel(cfg.SpeedFlow.FreeFlowSpeed, cfg.SpeedFlow.CriticalFlow,
		cfg.SpeedFlow.Capacity, cfg.SpeedFlow.SpeedLimit, cfg.SpeedFlow.MinSpeed)
	if err != nil {
		return nil, err
	}
	if cfg.LagCount <= 0 {
		return nil, fmt.Errorf("lag count must be positive, got %d", cfg.LagCount)
	}

	parser := scatsparser.NewScatsParser(logger)

	logger.Info("Reading neighbor table from ", zap.String("neighborTable", cfg.NeighborTable))
	rows, err := parser.ReadNeighborTable(cfg.NeighborTable)
	if err != nil {
		return nil, err
	}
	graph, err := datastructure.NewGraph(rows, danglingPolicy, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Intersection graph built", zap.Int("intersections", graph.NumberOfVertices()),
		zap.Int("edges", graph.NumberOfEdges()))

	if sccs := graph.RunKosaraju(); sccs.NumberOfComponents() > 1 {
		logger.Warn("intersection graph is not strongly connected, some routes are unreachable",
			zap.Int("components", sccs.NumberOfComponents()),
			zap.Int("largestComponent", sccs.LargestComponentSize()))
	}

	logger.Info("Reading flow history from ", zap.String("history", cfg.History))
	records, err := parser.ReadHistory(cfg.History)
	if err != nil {
		return nil, err
	}
	store, err := history.NewStore(records, cfg.IntervalMinutes, logger)
	if err != nil {
		return nil, err
	}

	missing := 0
	graph.ForVertices(func(u datastructure.Index, v *datastructure.Intersection) {
		if !store.HasSite(v.GetSite()) {
			missing++
		}
	})
	if missing > 0 {
		logger.Warn("intersections without flow history, their lags fall back to an empty vector",
			zap.Int("intersections", missing))
	}

	var est estimator.Estimator
	if cfg.ModelDir == "" {
		logger.Info("no model directory configured, using a fixed flow", zap.Float64("flow", cfg.FixedFlow))
		est = estimator.NewFixedFlowEstimator(cfg.FixedFlow)
	} else {
		est = estimator.NewArtifactEstimator(cfg.ModelDir, cfg.ModelVariant, cfg.TrainDir, logger)
	}
	cache := estimator.NewCache(est, m, logger)

	if cfg.WarmupWorkers > 0 {
		sites := make([]datastructure.SiteID, 0, graph.NumberOfVertices())
		graph.ForVertices(func(u datastructure.Index, v *datastructure.Intersection) {
			sites = append(sites, v.GetSite())
		})
		cache.Warmup(ctx, sites, cfg.WarmupWorkers)
	}

	travelTime := costfunction.NewTravelTimeFunction(graph, store, cache, speedFlow, cfg.LagCount,
		cfg.IntersectionDelay)

	rt := spatialindex.NewRtree()
	rt.Build(graph, logger)

	routingEngine := routing.NewRoutingEngine(graph, travelTime, failurePolicy, m, logger)
	logger.Info("Routing engine ready",
		zap.String("failurePolicy", routingEngine.GetFailurePolicy().String()),
		zap.Float64("freeFlowSpeed", speedFlow.GetFreeFlowSpeed()),
		zap.Float64("speedLimit", travelTime.GetSpeedLimit()),
		zap.Float64("intersectionDelay", travelTime.GetIntersectionDelay()))

	return &Engine{
		routingEngine:  routingEngine,
		cache:          cache,
		spatialIndex:   rt,
		searchRadiusKm: cfg.SearchRadiusKm,
	}, nil
}
