package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/panemexpress/rail-booking/internal/model"
)

// DefaultRoutes is the static network loaded into an empty routes table.
var DefaultRoutes = []model.Route{
	{Name: "Delhi to Mumbai Express", FromStation: "Delhi", ToStation: "Mumbai", DistanceKm: 1400},
	{Name: "Mumbai to Delhi Express", FromStation: "Mumbai", ToStation: "Delhi", DistanceKm: 1400},
	{Name: "Chennai to Kolkata Mail", FromStation: "Chennai", ToStation: "Kolkata", DistanceKm: 1650},
	{Name: "Kolkata to Chennai Mail", FromStation: "Kolkata", ToStation: "Chennai", DistanceKm: 1650},
	{Name: "Bangalore to Hyderabad Express", FromStation: "Bangalore", ToStation: "Hyderabad", DistanceKm: 575},
	{Name: "Hyderabad to Bangalore Express", FromStation: "Hyderabad", ToStation: "Bangalore", DistanceKm: 575},
}

// SeedRoutes inserts routes when the table is empty and reports how many
// rows were added.  A non-empty table is left untouched.
func SeedRoutes(ctx context.Context, db *sql.DB, routes []model.Route) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM routes`).Scan(&n); err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const q = `INSERT INTO routes (name, from_station, to_station, distance_km) VALUES (?, ?, ?, ?)`
	for _, r := range routes {
		if r.DistanceKm <= 0 {
			return 0, fmt.Errorf("seed route %q: distance must be positive", r.Name)
		}
		if _, err := tx.ExecContext(ctx, q, r.Name, r.FromStation, r.ToStation, r.DistanceKm); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return len(routes), nil
}
