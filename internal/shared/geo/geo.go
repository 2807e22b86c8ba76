package geo

import "github.com/jftuga/geodist"

// HaversineKm is the great-circle distance between two lat/lng points.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	_, km := geodist.HaversineDistance(
		geodist.Coord{Lat: lat1, Lon: lng1},
		geodist.Coord{Lat: lat2, Lon: lng2},
	)
	return km
}
