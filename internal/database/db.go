package database

import (
	"context"
	"database/sql"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/retry"
)

var logger = loggo.GetLogger("tables.database")

// DSN builds the driver connection string.  parseTime maps DATETIME to
// time.Time and loc=UTC keeps every stored instant in UTC.
func DSN(user, pass, host, port, name string) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = pass
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, port)
	cfg.DBName = name
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// Open connects to MySQL and verifies the connection.  The first ping is
// retried for up to 30 seconds so the service can start alongside its
// database container.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(user, pass, host, port, name))
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	err = retry.Call(retry.CallArgs{
		Func: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return db.PingContext(ctx)
		},
		NotifyFunc: func(err error, attempt int) {
			logger.Warningf("ping %s (attempt %d): %v", host, attempt, err)
		},
		Attempts:    -1,
		Delay:       500 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		MaxDuration: 30 * time.Second,
		BackoffFunc: retry.DoubleDelay,
		Clock:       clock.WallClock,
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Annotatef(err, "connecting to mysql at %s:%s", host, port)
	}
	return db, nil
}
