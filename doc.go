// Package portalclient is the authenticated API client for the FacturaHub
// e-invoicing portal backend. It attaches the current access credential to
// every outbound request, detects session expiry, refreshes credentials at
// most once per expiry event, replays the original call, and tears the
// session down when recovery is impossible.
//
// The package is designed for concurrent callers: Client methods are safe to
// call from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// portalclient is the public surface. It exposes [Client], [Builder],
// [Config], the error taxonomy, and the typed portal endpoints. Credential
// persistence lives behind [credstore.Store]; the client never touches
// storage directly and never inspects credential contents beyond an optional,
// best-effort expiry hint.
//
// # Refresh contract
//
// Under N concurrent requests that all observe the same expired credential,
// exactly one refresh call reaches the identity backend. Every affected
// caller resolves only after that refresh settles: all replay with the new
// credential on success, or all receive [ErrRefreshFailed] and the session is
// cleared on failure. A replayed request that is rejected again surfaces
// [ErrReplayAuthFailed] and never triggers a second refresh.
package portalclient
