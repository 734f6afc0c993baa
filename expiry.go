package portalclient

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// credentialExpiry extracts the expiry hint from an access credential that
// happens to be a JWT. Credentials are opaque by contract, so this never
// verifies a signature and treats anything unreadable as hintless; the
// session-expired response path remains the source of truth.
func credentialExpiry(access string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
