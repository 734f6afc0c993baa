package portalclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/facturahub/portalclient/credstore"
)

// credentialPair is the identity backend's token response shape, shared by
// the login and refresh endpoints. A refresh response may omit the refresh
// token, in which case the stored one stays valid.
type credentialPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// refreshSession exchanges the stored refresh credential for a new session
// and persists it. It is invoked only by the refresh coordinator's leader;
// the coordinator owns failure handling and teardown.
func (c *Client) refreshSession(ctx context.Context) (credstore.Session, error) {
	cur, err := c.store.Get(ctx)
	if err != nil {
		return credstore.Session{}, err
	}
	if !cur.CanRefresh() {
		return credstore.Session{}, ErrNoRefreshCredential
	}

	var pair credentialPair
	if err := c.identityPost(ctx, c.config.Endpoints.Refresh, refreshRequest{RefreshToken: cur.Refresh}, &pair); err != nil {
		return credstore.Session{}, err
	}
	if pair.AccessToken == "" {
		return credstore.Session{}, fmt.Errorf("refresh response missing access credential")
	}

	next := credstore.Session{Access: pair.AccessToken, Refresh: pair.RefreshToken}
	if next.Refresh == "" {
		next.Refresh = cur.Refresh
	}
	if err := c.store.Set(ctx, next); err != nil {
		return credstore.Session{}, err
	}
	return next, nil
}

// identityPost talks to the identity endpoints directly, outside Do: these
// calls must never recurse into the refresh path. A 401 here is a rejection
// of the presented credential, not a session-expired trigger.
func (c *Client) identityPost(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	u := c.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	decorate(req, credstore.Session{}, c.config.Scheme, c.config.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("identity endpoint %s: %w", path, ErrInvalidCredentials)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
