package portalclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/facturahub/portalclient/credstore"
)

const maxIdentifierLength = 254

// Login establishes a new session. The credential pair is shape-checked
// locally first (a [KindValidation] error means no network call was made);
// the identity backend's verdict is authoritative after that. On success
// the new session is persisted and used by every subsequent request.
func (c *Client) Login(ctx context.Context, identifier, secret string) error {
	identifier = strings.TrimSpace(identifier)
	if err := validateLogin(identifier, secret); err != nil {
		return newError(KindValidation, errors.Join(ErrValidation, err))
	}

	var pair credentialPair
	if err := c.identityPost(ctx, c.config.Endpoints.Login, loginRequest{Identifier: identifier, Secret: secret}, &pair); err != nil {
		c.metrics.inc(MetricLoginFailure)
		if errors.Is(err, ErrInvalidCredentials) {
			return newError(KindInvalidCredentials, err)
		}
		var se *StatusError
		if errors.As(err, &se) {
			return err
		}
		return newError(KindTransport, err)
	}
	if pair.AccessToken == "" {
		c.metrics.inc(MetricLoginFailure)
		return newError(KindTransport, fmt.Errorf("login response missing access credential"))
	}

	sess := credstore.Session{Access: pair.AccessToken, Refresh: pair.RefreshToken}
	if err := c.store.Set(ctx, sess); err != nil {
		return err
	}
	c.metrics.inc(MetricLoginSuccess)
	c.logger.Info("session established")
	return nil
}

func validateLogin(identifier, secret string) error {
	if identifier == "" {
		return errors.New("identifier required")
	}
	if utf8.RuneCountInString(identifier) > maxIdentifierLength {
		return errors.New("identifier too long")
	}
	if strings.ContainsAny(identifier, " \t\r\n") {
		return errors.New("identifier must not contain whitespace")
	}
	if secret == "" {
		return errors.New("secret required")
	}
	return nil
}

// Logout revokes the session best-effort, always clears the store, and
// performs the one-way transition to the unauthenticated entry point. It is
// safe to call when no session exists.
func (c *Client) Logout(ctx context.Context) error {
	sess, err := c.store.Get(ctx)
	if err != nil {
		return err
	}

	if sess.CanRefresh() {
		// Revocation is advisory: the backend treats unknown credentials
		// as already revoked, and teardown proceeds either way.
		if err := c.identityPost(ctx, c.config.Endpoints.Logout, logoutRequest{RefreshToken: sess.Refresh}, nil); err != nil {
			c.logger.Warn("logout revocation failed", "error", err)
		}
	}

	c.metrics.inc(MetricLogout)
	c.teardown(ctx)
	return nil
}

// Resume reports whether a persisted session was found, typically at
// process start. It performs no network call: a stale credential surfaces
// through the normal expiry-detection path on first use.
func (c *Client) Resume(ctx context.Context) (bool, error) {
	sess, err := c.store.Get(ctx)
	if err != nil {
		return false, err
	}
	return sess.Authenticated(), nil
}

// teardown clears the session and redirects to the unauthenticated entry
// point. It serves both explicit logout and terminal refresh failure; the
// refresh coordinator invokes it from the single leader, so concurrent
// waiters observe exactly one redirect per expiry event.
func (c *Client) teardown(ctx context.Context) {
	c.metrics.inc(MetricTeardown)
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error("session clear failed", "error", err)
	}
	if c.redirect != nil {
		c.redirect(c.config.EntryRoute)
	}
	c.logger.Info("session torn down", "entry", c.config.EntryRoute)
}
