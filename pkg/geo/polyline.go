package geo

import (
	geojson "github.com/paulmach/go.geojson"
	"github.com/twpayne/go-polyline"
)

// PolylineFromCoords. google encoded polyline, [lat, lon] order
func PolylineFromCoords(path []Coordinate) string {
	coords := make([][]float64, 0, len(path))
	for _, c := range path {
		coords = append(coords, []float64{c.Lat, c.Lon})
	}
	return string(polyline.EncodeCoords(coords))
}

// GeoJSONLineString. geojson LineString geometry of the path, [lon, lat] order
func GeoJSONLineString(path []Coordinate) ([]byte, error) {
	pts := make([][]float64, 0, len(path))
	for _, c := range path {
		pts = append(pts, []float64{c.Lon, c.Lat})
	}
	return geojson.NewLineStringGeometry(pts).MarshalJSON()
}
