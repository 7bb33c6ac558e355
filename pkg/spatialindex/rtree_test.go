package spatialindex

import (
	"testing"

	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func buildIndex(t *testing.T) (*Rtree, *datastructure.Graph) {
	lat2, lon2 := geo.GetDestinationPoint(-37.86703, 145.09159, 0, 1)
	lat3, lon3 := geo.GetDestinationPoint(-37.86703, 145.09159, 90, 3)
	rows := []datastructure.NeighborRow{
		{Site: 970, Lat: -37.86703, Lon: 145.09159},
		{Site: 2000, Lat: lat2, Lon: lon2},
		{Site: 3001, Lat: lat3, Lon: lon3},
	}
	g, err := datastructure.NewGraph(rows, datastructure.DANGLING_REJECT, zap.NewNop())
	require.NoError(t, err)

	rt := NewRtree()
	rt.Build(g, zap.NewNop())
	return rt, g
}

func TestSearchWithinRadius(t *testing.T) {
	rt, g := buildIndex(t)

	found := rt.SearchWithinRadius(-37.86703, 145.09159, 1.5)
	require.Len(t, found, 2)
	assert.Equal(t, datastructure.SiteID(970), g.GetSite(found[0].GetVertex()))
	assert.InDelta(t, 0.0, found[0].GetDistance(), 1e-9)
	assert.Equal(t, datastructure.SiteID(2000), g.GetSite(found[1].GetVertex()))
	assert.InDelta(t, 1.0, found[1].GetDistance(), 1e-6)

	assert.Len(t, rt.SearchWithinRadius(-37.86703, 145.09159, 10), 3)
}

func TestNearestIntersection(t *testing.T) {
	rt, g := buildIndex(t)

	// 2.8 km east of 970, 0.2 km from 3001
	lat, lon := geo.GetDestinationPoint(-37.86703, 145.09159, 90, 2.8)
	c, ok := rt.NearestIntersection(lat, lon, 0.1)
	require.True(t, ok)
	assert.Equal(t, datastructure.SiteID(3001), g.GetSite(c.GetVertex()))
	assert.InDelta(t, 0.2, c.GetDistance(), 1e-3)

	_, ok = rt.NearestIntersection(0, 0, 1)
	assert.False(t, ok)
}
