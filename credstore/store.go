package credstore

import "context"

// Session holds the two credential slots of an authenticated portal
// session. Both values are opaque: the store never validates or inspects
// them.
type Session struct {
	// Access is the short-lived credential attached to individual requests.
	// Empty means the caller is unauthenticated.
	Access string `json:"access"`
	// Refresh is the longer-lived credential used solely to mint a new
	// access credential. Empty makes any refresh attempt fail immediately.
	Refresh string `json:"refresh"`
}

// Authenticated reports whether the session carries an access credential.
func (s Session) Authenticated() bool { return s.Access != "" }

// CanRefresh reports whether the session carries a refresh credential.
func (s Session) CanRefresh() bool { return s.Refresh != "" }

// Store is the single place credentials are read or written. Clear on an
// already-absent session is a no-op, not an error.
type Store interface {
	Get(ctx context.Context) (Session, error)
	Set(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}
