// Package repository contains data access logic separated from HTTP handlers.
// This file holds the read side of the route reference data.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/panemexpress/rail-booking/internal/model"
)

// RouteRepo reads routes.  Routes are written only by the startup seed.
type RouteRepo struct {
	db *sql.DB
}

// NewRouteRepo constructs a RouteRepo with the provided DB handle.
func NewRouteRepo(db *sql.DB) *RouteRepo {
	return &RouteRepo{db: db}
}

const routeColumns = `id, name, from_station, to_station, distance_km`

// ListAll returns every route ordered by ID.
func (r *RouteRepo) ListAll(ctx context.Context) ([]model.Route, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+routeColumns+` FROM routes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Route{}
	for rows.Next() {
		var rt model.Route
		if err := rows.Scan(&rt.ID, &rt.Name, &rt.FromStation, &rt.ToStation, &rt.DistanceKm); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

// GetByID returns a route or ErrRouteNotFound.
func (r *RouteRepo) GetByID(ctx context.Context, id uint64) (model.Route, error) {
	var rt model.Route
	err := r.db.QueryRowContext(ctx, `SELECT `+routeColumns+` FROM routes WHERE id = ?`, id).
		Scan(&rt.ID, &rt.Name, &rt.FromStation, &rt.ToStation, &rt.DistanceKm)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Route{}, ErrRouteNotFound
	}
	if err != nil {
		return model.Route{}, err
	}
	return rt, nil
}
