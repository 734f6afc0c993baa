// Package credstore persists the portal session: two opaque credential
// slots, read on process start, written on every successful login or
// refresh, erased on logout or terminal refresh failure.
//
// Implementations must tolerate concurrent readers during a refresh window;
// the client guarantees a single writer at a time.
package credstore
