package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementScan("BIP21", "Verified")
	m.IncrementScan("BIP21", "Verified")
	m.IncrementDuplicate("BOLT11", true)
	m.RecordCheck("domain", false)
	m.ObserveDomainCheck(true, 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ScansTotal.WithLabelValues("BIP21", "Verified")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DuplicateScans.WithLabelValues("BOLT11", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CheckOutcome.WithLabelValues("domain", "false")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.DomainCheckLatency))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementScan("BIP21", "Verified")
		m.IncrementDuplicate("BIP21", false)
		m.RecordCheck("crypto", true)
		m.ObserveDomainCheck(true, time.Second)
		m.IncrementDomainCache("hit")
		m.ObserveLockWait(time.Millisecond)
		m.IncrementEvent("ok")
		m.ObserveScanLatency(time.Second)
	})
}
