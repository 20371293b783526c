package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/panemexpress/rail-booking/internal/config"
)

// DSN builds the driver connection string.  DATE and DATETIME columns are
// parsed into UTC time.Time values so a travel date never shifts a day.
func DSN(c config.Config) string {
	mc := mysql.NewConfig()
	mc.User = c.DBUser
	mc.Passwd = c.DBPass
	mc.Net = "tcp"
	mc.Addr = c.DBHost + ":" + c.DBPort
	mc.DBName = c.DBName
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// Open connects to MySQL, sizes the pool and pings until ctx expires or
// five seconds pass.
func Open(ctx context.Context, c config.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(c))
	if err != nil {
		return nil, err
	}

	poolSize := c.DBMaxOpenConns
	if poolSize <= 0 {
		poolSize = 25
	}
	db.SetMaxOpenConns(poolSize)
	db.SetMaxIdleConns(poolSize)
	if c.DBConnMaxLife > 0 {
		db.SetConnMaxLifetime(c.DBConnMaxLife)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
