package portalclient

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/facturahub/portalclient/credstore"
)

const (
	testIdentifier = "ops@acme.example"
	testSecret     = "correct-horse-battery"
	staleAccess    = "access-stale"
	goodRefresh    = "refresh-1"
	freshAccess    = "access-2"
	freshRefresh   = "refresh-2"
)

// fakePortal is an in-process portal backend: a ping endpoint that accepts
// a known set of access credentials and the three identity endpoints.
type fakePortal struct {
	mu          sync.Mutex
	validAccess map[string]bool
	refreshCred string
	nextAccess  string
	nextRefresh string

	refreshCalls atomic.Int64
	loginCalls   atomic.Int64
	logoutCalls  atomic.Int64

	refreshDelay  time.Duration
	refreshStatus int           // non-zero forces that status from the refresh endpoint
	refreshGate   chan struct{} // when set, refresh blocks until closed

	pingAuth struct {
		sync.Mutex
		seen []string
	}
}

func newFakePortal() *fakePortal {
	return &fakePortal{
		validAccess: map[string]bool{freshAccess: true},
		refreshCred: goodRefresh,
		nextAccess:  freshAccess,
		nextRefresh: freshRefresh,
	}
}

func (f *fakePortal) allow(access string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validAccess[access] = true
}

func (f *fakePortal) bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func (f *fakePortal) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		f.loginCalls.Add(1)
		var req loginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Identifier != testIdentifier || req.Secret != testSecret {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.mu.Lock()
		pair := credentialPair{AccessToken: f.nextAccess, RefreshToken: f.nextRefresh}
		f.validAccess[pair.AccessToken] = true
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(pair)
	})

	mux.HandleFunc("POST /v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls.Add(1)
		if f.refreshGate != nil {
			<-f.refreshGate
		}
		if f.refreshDelay > 0 {
			time.Sleep(f.refreshDelay)
		}
		if f.refreshStatus != 0 {
			w.WriteHeader(f.refreshStatus)
			return
		}
		var req refreshRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		defer f.mu.Unlock()
		if req.RefreshToken != f.refreshCred {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		pair := credentialPair{AccessToken: f.nextAccess, RefreshToken: f.nextRefresh}
		_ = json.NewEncoder(w).Encode(pair)
	})

	mux.HandleFunc("POST /v1/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		f.logoutCalls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		access := f.bearer(r)
		f.pingAuth.Lock()
		f.pingAuth.seen = append(f.pingAuth.seen, access)
		f.pingAuth.Unlock()

		f.mu.Lock()
		ok := f.validAccess[access]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	return mux
}

func (f *fakePortal) pingCredentials() []string {
	f.pingAuth.Lock()
	defer f.pingAuth.Unlock()
	out := make([]string, len(f.pingAuth.seen))
	copy(out, f.pingAuth.seen)
	return out
}

type testEnv struct {
	portal   *fakePortal
	server   *httptest.Server
	store    *credstore.Memory
	client   *Client
	redirect atomic.Int64
}

func newTestEnv(t *testing.T, tune func(*fakePortal)) *testEnv {
	t.Helper()

	env := &testEnv{
		portal: newFakePortal(),
		store:  credstore.NewMemory(),
	}
	if tune != nil {
		tune(env.portal)
	}
	env.server = httptest.NewServer(env.portal.handler())
	t.Cleanup(env.server.Close)

	client, err := New().
		WithBaseURL(env.server.URL).
		WithHTTPClient(env.server.Client()).
		WithStore(env.store).
		WithMetricsEnabled(true).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		WithRedirectHandler(func(string) { env.redirect.Add(1) }).
		Build()
	if err != nil {
		t.Fatalf("build client: %v", err)
	}
	env.client = client
	return env
}

// seedSession stores a stale access credential plus the good refresh
// credential, the state every expiry scenario starts from.
func (e *testEnv) seedSession(t *testing.T, sess credstore.Session) {
	t.Helper()
	if err := e.store.Set(t.Context(), sess); err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func (e *testEnv) counter(id MetricID) uint64 {
	return e.client.MetricsSnapshot().Counters[id]
}
