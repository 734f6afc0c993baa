// Package prometheus renders portalclient metrics in the Prometheus text
// exposition format, without pulling a metrics dependency into the client.
package prometheus
