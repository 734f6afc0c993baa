package portalclient

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned by Login when the identity backend
	// rejects the identifier/secret pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation is returned by Login when the credential pair is
	// malformed; no network call is made.
	ErrValidation = errors.New("invalid login input")
	// ErrSessionExpired marks a session-expired (401) response on a call
	// that has not been replayed yet. Callers normally never see it: the
	// client recovers by refreshing and replaying.
	ErrSessionExpired = errors.New("session expired")
	// ErrReplayAuthFailed is returned when a replayed request is rejected
	// again with a session-expired response. Terminal; no second refresh is
	// attempted.
	ErrReplayAuthFailed = errors.New("replayed request rejected")
	// ErrRefreshFailed is returned to every caller waiting on a refresh
	// that the identity backend rejected or that failed in transit. The
	// session has been cleared by the time this error is observed.
	ErrRefreshFailed = errors.New("credential refresh failed")
	// ErrNoRefreshCredential is the RefreshFailure cause when no refresh
	// credential is stored.
	ErrNoRefreshCredential = errors.New("no refresh credential stored")
	// ErrNotReplayable is returned when a request with a consumed body
	// would need a replay but carries no GetBody to rebuild it.
	ErrNotReplayable = errors.New("request body cannot be replayed")
)

// ErrorKind tags every failure the client can surface so callers can branch
// without string matching.
type ErrorKind int

const (
	// KindTransport is a network-level failure or a malformed backend
	// response, propagated unchanged. It never triggers a refresh.
	KindTransport ErrorKind = iota
	// KindSessionExpired is a 401 on a not-yet-replayed call.
	KindSessionExpired
	// KindReplayAuth is a 401 on an already-replayed call.
	KindReplayAuth
	// KindRefreshFailed is a failed refresh operation, terminal for every
	// waiting caller.
	KindRefreshFailed
	// KindValidation is a malformed login rejected before any network call.
	KindValidation
	// KindInvalidCredentials is a login pair rejected by the identity
	// backend.
	KindInvalidCredentials
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindSessionExpired:
		return "session_expired"
	case KindReplayAuth:
		return "replay_auth"
	case KindRefreshFailed:
		return "refresh_failed"
	case KindValidation:
		return "validation"
	case KindInvalidCredentials:
		return "invalid_credentials"
	default:
		return "unknown"
	}
}

// Error is the tagged failure type returned by Client operations. It wraps
// the underlying cause, so errors.Is works against both the sentinel vars
// above and transport-level errors such as context.DeadlineExceeded.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("portalclient: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf reports the ErrorKind carried by err, unwrapping as needed. The
// second return is false when err was not produced by this package.
func KindOf(err error) (ErrorKind, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return 0, false
}
