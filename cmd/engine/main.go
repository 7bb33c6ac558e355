package main

import (
	"context"
	"flag"

	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/engine"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/http"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/http/usecases"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/logger"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/metrics"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

var (
	configPath   = flag.String("config", "./data", "config file, or directory containing config.yaml")
	useRateLimit = flag.Bool("rate_limit", false, "enable the global request rate limiter")
)

func main() {
	flag.Parse()
	if err := util.ReadConfig(*configPath); err != nil {
		panic(err)
	}

	logger, err := logger.New()
	if err != nil {
		panic(err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}

	cfg := engine.ConfigFromViper()
	routingEngine, err := engine.NewEngine(ctx, cfg, m, logger)
	if err != nil {
		panic(err)
	}

	api := http.NewServer(logger)

	routingService := usecases.NewRoutingService(logger, routingEngine.GetRoutingEngine(),
		routingEngine.GetSpatialIndex(), routingEngine.GetSearchRadius())

	api.Use(ctx,
		logger, *useRateLimit, routingService, m, reg)

	signal := http.GracefulShutdown()

	logger.Info("Traffic-aware Routing Engine Server Stopped", zap.String("signal", signal.String()))
	cleanup()
	if err := api.Wait(); err != nil && err != context.Canceled {
		logger.Error("api stopped with error", zap.Error(err))
	}
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
