package middleware

// identity.go holds helpers that read the authenticated identity JWTAuth
// stored in the Echo context.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// UserID returns the numeric subject of the access token.  JSON decoding
// turns numeric claims into float64, so every numeric form is accepted,
// as are decimal strings.
func UserID(c echo.Context) (uint64, bool) {
	// The claim type depends on who set it: jwt.Parse yields float64,
	// tests and internal callers may set an integer directly.
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, true
	case int:
		return uint64(t), t >= 0
	case int64:
		return uint64(t), t >= 0
	case float64:
		return uint64(t), t >= 0
	case string:
		// Some issuers put the subject in as a string, per RFC 7519.
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// identityKey identifies the caller for rate limiting and cache keys.  It
// returns "anon" when no user is authenticated.
func identityKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
