package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	portalclient "github.com/facturahub/portalclient"
)

type metricsSource interface {
	MetricsSnapshot() portalclient.MetricsSnapshot
}

type counterDef struct {
	ID   portalclient.MetricID
	Name string
	Help string
}

var counterDefs = []counterDef{
	{portalclient.MetricRequest, "fhub_client_requests_total", "Outbound portal requests, replays included."},
	{portalclient.MetricSessionExpired, "fhub_client_session_expired_total", "Session-expired responses observed on fresh calls."},
	{portalclient.MetricRefreshSuccess, "fhub_client_refresh_success_total", "Credential refreshes that succeeded."},
	{portalclient.MetricRefreshFailure, "fhub_client_refresh_failure_total", "Credential refreshes that failed terminally."},
	{portalclient.MetricRefreshJoined, "fhub_client_refresh_joined_total", "Callers that joined an in-flight refresh."},
	{portalclient.MetricReplay, "fhub_client_replays_total", "Requests replayed after a successful refresh."},
	{portalclient.MetricReplayRejected, "fhub_client_replay_rejected_total", "Replays rejected again by the backend."},
	{portalclient.MetricLoginSuccess, "fhub_client_login_success_total", "Successful logins."},
	{portalclient.MetricLoginFailure, "fhub_client_login_failure_total", "Logins rejected by the identity backend."},
	{portalclient.MetricLogout, "fhub_client_logout_total", "Explicit logouts."},
	{portalclient.MetricTeardown, "fhub_client_teardown_total", "Session teardowns."},
}

// Exporter renders a client's counters in Prometheus text format.
type Exporter struct {
	source metricsSource
}

// NewExporter creates an exporter reading from the given [portalclient.Client].
func NewExporter(client *portalclient.Client) *Exporter {
	return &Exporter{source: client}
}

// NewExporterFromSource creates an exporter from a custom snapshot source.
func NewExporterFromSource(source metricsSource) *Exporter {
	return &Exporter{source: source}
}

// Handler returns an http.Handler serving the rendered metrics.
func (e *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(e.Render()))
	})
}

// Render writes the current counters in text exposition format.
func (e *Exporter) Render() string {
	if e == nil || e.source == nil {
		return ""
	}

	snapshot := e.source.MetricsSnapshot()
	if len(snapshot.Counters) == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(2048)
	for _, def := range counterDefs {
		writeCounter(&b, def.Name, def.Help, snapshot.Counters[def.ID])
	}
	return b.String()
}

func writeCounter(b *strings.Builder, name, help string, value uint64) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(help)
	b.WriteByte('\n')
	b.WriteString("# TYPE ")
	b.WriteString(name)
	b.WriteString(" counter\n")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(value, 10))
	b.WriteByte('\n')
}
