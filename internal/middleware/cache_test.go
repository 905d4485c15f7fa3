package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/config"
)

func TestPayloadRoundTrip(t *testing.T) {
	c := qt.New(t)
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"ok":true}`))
	c.Assert(err, qt.IsNil)

	status, gotHdr, body, ok := decodePayload(bs)
	c.Assert(ok, qt.IsTrue)
	c.Assert(status, qt.Equals, http.StatusOK)
	c.Assert(gotHdr, qt.DeepEquals, hdr)
	c.Assert(string(body), qt.Equals, `{"ok":true}`)

	_, _, _, ok = decodePayload(bs[:5])
	c.Assert(ok, qt.IsFalse)
	_, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0, 0, 1, 0})
	c.Assert(ok, qt.IsFalse)
}

func TestCacheKeyIncludesPath(t *testing.T) {
	c := qt.New(t)
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "tables:cache", KeyStrategy: "route"}
	key := func(path string) string {
		ctx := e.NewContext(httptest.NewRequest(http.MethodGet, path, nil), httptest.NewRecorder())
		ctx.SetPath("/v1/branches/:id")
		return cacheKeyFrom(cfg, ctx)
	}
	c.Assert(key("/v1/branches/1"), qt.Not(qt.Equals), key("/v1/branches/2"))
	c.Assert(key("/v1/branches/1"), qt.Equals, key("/v1/branches/1"))
	c.Assert(strings.HasPrefix(key("/v1/branches/1"), "tables:cache:"), qt.IsTrue)
}

func TestDisabledMiddlewaresPassThrough(t *testing.T) {
	c := qt.New(t)
	next := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	for _, m := range []echo.MiddlewareFunc{
		NewRedisCache(config.CacheConfig{Enabled: true}, nil),
		NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil),
	} {
		e := echo.New()
		rec := httptest.NewRecorder()
		err := m(next)(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec))
		c.Assert(err, qt.IsNil)
		c.Assert(rec.Code, qt.Equals, http.StatusNoContent)
	}
}

func TestBuildRateKey(t *testing.T) {
	c := qt.New(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/reservations", nil)
	req.RemoteAddr = "10.0.0.5:1234"
	ctx := e.NewContext(req, httptest.NewRecorder())
	ctx.SetPath("/v1/reservations")
	ctx.Set("user_id", float64(9))

	cfg := config.RateLimitConfig{Prefix: "tables:rl", KeyStrategy: "user_route"}
	c.Assert(buildRateKey(cfg, ctx), qt.Equals, "tables:rl:user:9:route:POST /v1/reservations")
	cfg.KeyStrategy = ""
	c.Assert(buildRateKey(cfg, ctx), qt.Equals, "tables:rl:ip:10.0.0.5:user:9:route:POST /v1/reservations")
}
