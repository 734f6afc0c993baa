package portalclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/facturahub/portalclient/credstore"
)

// Client is the authenticated entry point to the portal backend. Build one
// through [Builder]; the zero value is not usable.
type Client struct {
	config    Config
	base      *url.URL
	http      *http.Client
	store     credstore.Store
	logger    *slog.Logger
	metrics   *Metrics
	refresher *refreshCoordinator
	redirect  func(entry string)
}

// StatusError reports a non-2xx portal response that is not a
// session-expired signal. It reaches the caller unchanged.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("portalclient: unexpected status %s", e.Status)
}

// MetricsSnapshot returns a point-in-time copy of the client's counters.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return c.metrics.Snapshot()
}

// NewRequest builds a request against the portal backend. path is resolved
// under BaseURL. Bodies built here are replayable; callers constructing
// their own requests must set GetBody if they expect replay after a refresh.
func (c *Client) NewRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	u := c.base.JoinPath(path)
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Do sends an authenticated request. On a session-expired response it joins
// the shared refresh, replays the original call exactly once with the new
// credential, and returns the replay's result. Any other failure reaches
// the caller unchanged; transport errors never trigger a refresh.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	sess, err := c.store.Get(ctx)
	if err != nil {
		return nil, newError(KindTransport, err)
	}

	if ahead := c.config.Refresh.Ahead; ahead > 0 && sess.Authenticated() && sess.CanRefresh() {
		if exp, ok := credentialExpiry(sess.Access); ok && time.Until(exp) <= ahead {
			sess, err = c.refresher.Await(ctx)
			if err != nil {
				return nil, err
			}
		}
	}

	resp, err := c.send(req.Clone(ctx), sess)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// Session-expired signal on a not-yet-replayed call.
	drainAndClose(resp.Body)
	c.metrics.inc(MetricSessionExpired)
	c.logger.Debug("session expired, joining refresh",
		"method", req.Method, "path", req.URL.Path)

	replay, err := rewind(req)
	if err != nil {
		return nil, err
	}

	sess, err = c.refresher.Await(ctx)
	if err != nil {
		return nil, err
	}

	c.metrics.inc(MetricReplay)
	resp, err = c.send(replay, sess)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		// The one-shot replay is spent; surfacing this instead of
		// refreshing again is what prevents infinite refresh loops when
		// the refreshed credential is itself rejected.
		drainAndClose(resp.Body)
		c.metrics.inc(MetricReplayRejected)
		return nil, newError(KindReplayAuth, ErrReplayAuthFailed)
	}
	return resp, nil
}

func (c *Client) send(req *http.Request, sess credstore.Session) (*http.Response, error) {
	c.metrics.inc(MetricRequest)
	decorate(req, sess, c.config.Scheme, c.config.UserAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, newError(KindTransport, err)
	}
	return resp, nil
}

// rewind clones req with a fresh body for the single replay.
func rewind(req *http.Request) (*http.Request, error) {
	out := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		out.Body = nil
		return out, nil
	}
	if req.GetBody == nil {
		return nil, newError(KindSessionExpired, errors.Join(ErrSessionExpired, ErrNotReplayable))
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, newError(KindTransport, err)
	}
	out.Body = body
	return out, nil
}

func drainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
	_ = body.Close()
}

// getJSON issues an authenticated GET and decodes a 200 response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

// postJSON issues an authenticated POST with a JSON body and decodes a 2xx
// response into out when out is non-nil.
func (c *Client) postJSON(ctx context.Context, path string, in, out any, header http.Header) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := c.NewRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
