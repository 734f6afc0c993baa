package portalclient

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/facturahub/portalclient/credstore"
)

const (
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"
	headerUserAgent     = "User-Agent"
)

// decorate attaches the access credential and bookkeeping headers to an
// outbound request. It is a pure transformation with no failure mode: a
// session without an access credential passes the request through
// unauthenticated, since some portal endpoints are intentionally public.
func decorate(req *http.Request, sess credstore.Session, scheme, userAgent string) {
	if sess.Authenticated() {
		req.Header.Set(headerAuthorization, scheme+" "+sess.Access)
	} else {
		req.Header.Del(headerAuthorization)
	}
	if req.Header.Get(headerRequestID) == "" {
		req.Header.Set(headerRequestID, uuid.NewString())
	}
	if userAgent != "" && req.Header.Get(headerUserAgent) == "" {
		req.Header.Set(headerUserAgent, userAgent)
	}
}
