package geo

import (
	"github.com/golang/geo/s2"
)

// GreatCircleDistance. great-circle distance between two coordinates in km, on the s2 unit sphere
func GreatCircleDistance(latOne, lonOne, latTwo, lonTwo float64) float64 {
	angle := s2.LatLngFromDegrees(latOne, lonOne).Distance(s2.LatLngFromDegrees(latTwo, lonTwo))
	return angle.Radians() * earthRadiusKM
}

// ValidCoordinate. lat in [-90,90], lon in [-180,180]
func ValidCoordinate(lat, lon float64) bool {
	return s2.LatLngFromDegrees(lat, lon).IsValid()
}
