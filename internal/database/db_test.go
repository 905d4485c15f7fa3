package database_test

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/table-reservation/internal/database"
)

func TestDSN(t *testing.T) {
	c := qt.New(t)
	cfg, err := mysql.ParseDSN(database.DSN("app", "p@ss:word", "db", "3306", "tables"))
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.User, qt.Equals, "app")
	c.Assert(cfg.Passwd, qt.Equals, "p@ss:word")
	c.Assert(cfg.Net, qt.Equals, "tcp")
	c.Assert(cfg.Addr, qt.Equals, "db:3306")
	c.Assert(cfg.DBName, qt.Equals, "tables")
	c.Assert(cfg.ParseTime, qt.IsTrue)
	c.Assert(cfg.Loc, qt.Equals, time.UTC)
}

func TestDSNIPv6Host(t *testing.T) {
	c := qt.New(t)
	cfg, err := mysql.ParseDSN(database.DSN("app", "", "::1", "3307", "tables"))
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Addr, qt.Equals, "[::1]:3307")
}
