package portalclient

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/facturahub/portalclient/credstore"
)

// refreshOutcome is the shared result of one refresh attempt. It is written
// exactly once, before the settled channel closes, and read only after.
type refreshOutcome struct {
	sess credstore.Session
	err  error
}

// refreshCoordinator serializes credential refreshes. It holds a single
// in-flight outcome slot: the first caller to observe an expired session
// becomes the leader and issues the one network-side refresh; every later
// caller joins the same outcome instead of re-entering the network call.
//
// States: Idle (settled == nil) and Refreshing (settled open). The slot is
// consumed as soon as the attempt settles, so a later expiry event starts a
// fresh attempt.
type refreshCoordinator struct {
	mu      sync.Mutex
	settled chan struct{}
	outcome *refreshOutcome

	// run performs the refresh call and persists the new session.
	run func(ctx context.Context) (credstore.Session, error)
	// onFailure tears the session down. Invoked once per failed attempt,
	// on the leader's goroutine, before waiters are released.
	onFailure func(ctx context.Context)

	timeout time.Duration
	logger  *slog.Logger
	metrics *Metrics
}

// Await joins the in-flight refresh, starting one if the coordinator is
// idle, and returns the refreshed session. The caller's context bounds only
// the wait: abandoning it leaves the coordinator state untouched and the
// refresh running for the remaining waiters.
func (rc *refreshCoordinator) Await(ctx context.Context) (credstore.Session, error) {
	rc.mu.Lock()
	ch := rc.settled
	out := rc.outcome
	if ch == nil {
		ch = make(chan struct{})
		out = &refreshOutcome{}
		rc.settled = ch
		rc.outcome = out
		go rc.lead(ch, out)
	} else {
		rc.metrics.inc(MetricRefreshJoined)
	}
	rc.mu.Unlock()

	select {
	case <-ch:
		return out.sess, out.err
	case <-ctx.Done():
		return credstore.Session{}, newError(KindTransport, ctx.Err())
	}
}

// lead runs the single refresh attempt. It is detached from every caller's
// context; rc.timeout bounds the call instead.
func (rc *refreshCoordinator) lead(ch chan struct{}, out *refreshOutcome) {
	ctx, cancel := context.WithTimeout(context.Background(), rc.timeout)
	defer cancel()

	sess, err := rc.run(ctx)
	if err != nil {
		rc.metrics.inc(MetricRefreshFailure)
		rc.logger.Warn("credential refresh failed", "error", err)
		// Teardown before waiters observe the failure: by the time any
		// caller sees ErrRefreshFailed the session is already cleared. The
		// refresh deadline may be the very reason the attempt failed, so
		// teardown runs detached from it or a ctx-respecting store could
		// never clear the session.
		rc.onFailure(context.WithoutCancel(ctx))
		out.err = newError(KindRefreshFailed, errors.Join(ErrRefreshFailed, err))
	} else {
		rc.metrics.inc(MetricRefreshSuccess)
		rc.logger.Debug("credential refresh succeeded")
		out.sess = sess
	}

	rc.mu.Lock()
	rc.settled = nil
	rc.outcome = nil
	rc.mu.Unlock()

	close(ch)
}
