package model

// Route is a fixed journey between two stations.  Routes are seeded at
// startup and are read-only afterwards; many bookings reference the same
// route.  DistanceKm is always positive and drives the fare.
type Route struct {
	ID          uint64 // routes.id
	Name        string // routes.name
	FromStation string // routes.from_station
	ToStation   string // routes.to_station
	DistanceKm  int    // routes.distance_km
}
