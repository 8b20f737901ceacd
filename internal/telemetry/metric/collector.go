package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SessionSource reports the live session state.
type SessionSource interface {
	IsAuthenticated() bool
	// Expiry returns the token expiry when it is known.
	Expiry() (time.Time, bool)
}

// SessionCollector reports whether a session is active and when its token
// expires. Values are read at gather time.
type SessionCollector struct {
	src SessionSource

	authenticated *prometheus.Desc
	expiry        *prometheus.Desc
}

// NewSessionCollector creates a collector over src.
func NewSessionCollector(src SessionSource) *SessionCollector {
	return &SessionCollector{
		src: src,
		authenticated: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "authenticated"),
			"1 when a user session is active.", nil, nil),
		expiry: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "token_expiry_timestamp_seconds"),
			"Expiry of the session token, when the token carries one.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *SessionCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.authenticated
	ch <- c.expiry
}

// Collect implements prometheus.Collector.
func (c *SessionCollector) Collect(ch chan<- prometheus.Metric) {
	v := 0.0
	if c.src.IsAuthenticated() {
		v = 1
	}
	ch <- prometheus.MustNewConstMetric(c.authenticated, prometheus.GaugeValue, v)

	if exp, ok := c.src.Expiry(); ok {
		ch <- prometheus.MustNewConstMetric(c.expiry, prometheus.GaugeValue, float64(exp.Unix()))
	}
}
