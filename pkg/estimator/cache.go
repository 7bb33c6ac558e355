package estimator

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/concurrent"
	da "github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/history"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

/*
Cache. estimator handles by intersection, shared by all searches over the same graph.

a handle is materialized at most once per intersection: concurrent first lookups of a site are collapsed with
singleflight and only the leader talks to the estimator without a handle. intersections without a trained
estimator are remembered so their artifacts are not probed again.
*/
type Cache struct {
	estimator Estimator
	metrics   *metrics.Metrics
	log       *zap.Logger

	mu          sync.RWMutex
	handles     map[da.SiteID]*Handle
	unavailable map[da.SiteID]error

	group singleflight.Group
}

func NewCache(estimator Estimator, m *metrics.Metrics, log *zap.Logger) *Cache {
	return &Cache{
		estimator:   estimator,
		metrics:     m,
		log:         log,
		handles:     make(map[da.SiteID]*Handle),
		unavailable: make(map[da.SiteID]error),
	}
}

func (c *Cache) lookup(site da.SiteID) (*Handle, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.handles[site], c.unavailable[site]
}

// Estimate. predicted vehicle count of one interval at site, reusing the cached handle of site.
func (c *Cache) Estimate(ctx context.Context, site da.SiteID, lags history.LagVector) (float64, error) {
	handle, err := c.lookup(site)
	if err != nil {
		c.metrics.EstimatorFailure("unavailable")
		return 0, err
	}
	if handle != nil {
		c.metrics.CacheHit()
		return c.estimate(ctx, site, lags, handle)
	}
	c.metrics.CacheMiss()

	var (
		leaderFlow float64
		leaderErr  error
		isLeader   bool
	)
	res, err, _ := c.group.Do(strconv.FormatInt(int64(site), 10), func() (interface{}, error) {
		if h, uerr := c.lookup(site); h != nil || uerr != nil {
			return h, uerr
		}

		// the handle outlives the request that loads it
		mctx := context.WithoutCancel(ctx)

		if m, ok := c.estimator.(Materializer); ok {
			return c.materialize(mctx, m, site)
		}

		isLeader = true
		flow, h, err := c.estimator.Estimate(mctx, site, lags, nil)
		if h == nil {
			if err == nil {
				err = errors.New("estimator returned no handle")
			}
			return nil, c.remember(site, err)
		}
		c.store(site, h)
		leaderFlow, leaderErr = flow, err
		return h, nil
	})
	if err != nil {
		c.metrics.EstimatorFailure(failureReason(err))
		return 0, err
	}

	if isLeader {
		if leaderErr != nil {
			c.metrics.EstimatorFailure(failureReason(leaderErr))
		}
		return leaderFlow, leaderErr
	}
	return c.estimate(ctx, site, lags, res.(*Handle))
}

func (c *Cache) estimate(ctx context.Context, site da.SiteID, lags history.LagVector, handle *Handle) (float64, error) {
	flow, _, err := c.estimator.Estimate(ctx, site, lags, handle)
	if err != nil {
		c.metrics.EstimatorFailure(failureReason(err))
	}
	return flow, err
}

func (c *Cache) materialize(ctx context.Context, m Materializer, site da.SiteID) (*Handle, error) {
	h, err := m.Materialize(ctx, site)
	if err != nil {
		return nil, c.remember(site, err)
	}
	c.store(site, h)
	return h, nil
}

func (c *Cache) store(site da.SiteID, handle *Handle) {
	c.mu.Lock()
	c.handles[site] = handle
	c.mu.Unlock()
	c.metrics.Materialized()
}

// remember. intersections without a trained estimator stay unavailable for the lifetime of the cache
func (c *Cache) remember(site da.SiteID, err error) error {
	if errors.Is(err, ErrEstimatorUnavailable) {
		c.mu.Lock()
		c.unavailable[site] = err
		c.mu.Unlock()
		c.log.Warn("estimator unavailable", zap.Int64("site", int64(site)), zap.Error(err))
	}
	return err
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrEstimatorUnavailable):
		return "unavailable"
	case errors.Is(err, ErrEmptyLagVector):
		return "empty_lags"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}

// Len. number of materialized handles
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.handles)
}

func (c *Cache) IsUnavailable(site da.SiteID) bool {
	_, err := c.lookup(site)
	return err != nil
}

type warmupResult struct {
	site da.SiteID
	err  error
}

// Warmup. materialize the handles of sites with numWorkers workers. returns the number of sites with a handle.
// estimators that cannot materialize without predicting are left cold.
func (c *Cache) Warmup(ctx context.Context, sites []da.SiteID, numWorkers int) int {
	m, ok := c.estimator.(Materializer)
	if !ok {
		c.log.Info("estimator does not support warm-up")
		return 0
	}

	results := concurrent.Run(ctx, numWorkers, sites, func(ctx context.Context, site da.SiteID) warmupResult {
		_, err, _ := c.group.Do(strconv.FormatInt(int64(site), 10), func() (interface{}, error) {
			if h, uerr := c.lookup(site); h != nil || uerr != nil {
				return h, uerr
			}
			return c.materialize(ctx, m, site)
		})
		return warmupResult{site: site, err: err}
	})

	ready := 0
	for _, res := range results {
		if res.err == nil {
			ready++
		}
	}
	c.log.Info("estimator cache warmed up", zap.Int("sites", len(sites)), zap.Int("ready", ready))
	return ready
}
