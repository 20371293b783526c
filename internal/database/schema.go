package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order at startup.  Every statement is idempotent.
//
// bookings.confirmed_seat is 1 for confirmed rows and NULL otherwise.  MySQL
// unique indexes ignore rows containing NULL, so uq_bookings_active_seat
// allows any number of cancelled bookings on a seat but at most one
// confirmed booking per (route, date, coach, row, column).  This index is
// what settles two requests racing for the same seat.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		username      VARCHAR(64)  NOT NULL,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_username (username),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		KEY idx_refresh_tokens_user (user_id),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS routes (
		id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name         VARCHAR(128) NOT NULL,
		from_station VARCHAR(64)  NOT NULL,
		to_station   VARCHAR(64)  NOT NULL,
		distance_km  INT UNSIGNED NOT NULL,
		CONSTRAINT chk_routes_distance CHECK (distance_km > 0)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id        BIGINT UNSIGNED  NOT NULL,
		route_id       BIGINT UNSIGNED  NOT NULL,
		travel_date    DATE             NOT NULL,
		coach          VARCHAR(16)      NOT NULL,
		seat_row       TINYINT UNSIGNED NOT NULL,
		seat_col       TINYINT UNSIGNED NOT NULL,
		passenger_name VARCHAR(128)     NOT NULL,
		passenger_age  TINYINT UNSIGNED NOT NULL,
		fare           DECIMAL(10,2)    NOT NULL,
		pnr            CHAR(10)         NOT NULL,
		status         ENUM('confirmed','cancelled') NOT NULL DEFAULT 'confirmed',
		created_at     DATETIME         NOT NULL DEFAULT CURRENT_TIMESTAMP,
		confirmed_seat TINYINT GENERATED ALWAYS AS (IF(status = 'confirmed', 1, NULL)) STORED,
		UNIQUE KEY uq_bookings_pnr (pnr),
		UNIQUE KEY uq_bookings_active_seat (route_id, travel_date, coach, seat_row, seat_col, confirmed_seat),
		KEY idx_bookings_user (user_id, travel_date),
		CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_bookings_route FOREIGN KEY (route_id) REFERENCES routes(id) ON DELETE CASCADE,
		CONSTRAINT chk_bookings_seat CHECK (seat_row BETWEEN 1 AND 5 AND seat_col BETWEEN 1 AND 4),
		CONSTRAINT chk_bookings_age CHECK (passenger_age BETWEEN 7 AND 125)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
