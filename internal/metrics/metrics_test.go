package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountersAreIndependentPerInstance(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()

	a.DecisionsTotal.WithLabelValues("ACME", "BUY").Inc()
	a.DecisionsTotal.WithLabelValues("ACME", "BUY").Inc()
	a.FaultsTotal.WithLabelValues("ACME").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(a.DecisionsTotal.WithLabelValues("ACME", "BUY")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.FaultsTotal.WithLabelValues("ACME")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.DecisionsTotal.WithLabelValues("ACME", "BUY")))
}

func TestMetrics_Exposition(t *testing.T) {
	m := NewMetrics()
	m.BarsTotal.WithLabelValues("ACME").Add(250)

	rec := httptest.NewRecorder()
	promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `replaylab_bars_total{symbol="ACME"} 250`)
}

func findEntry(hook *logtest.Hook, level log.Level) *log.Entry {
	for _, e := range hook.AllEntries() {
		if e.Level == level {
			return e
		}
	}
	return nil
}

func TestServer_LogsWithComponentField(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	srv := NewServer("127.0.0.1:0", NewMetrics())
	srv.Start()
	defer srv.Stop(context.Background())

	require.Eventually(t, func() bool { return findEntry(hook, log.InfoLevel) != nil }, time.Second, 10*time.Millisecond)
	entry := findEntry(hook, log.InfoLevel)
	assert.Equal(t, "server listening", entry.Message)
	assert.Equal(t, "metrics", entry.Data["component"])
	assert.Equal(t, "127.0.0.1:0", entry.Data["addr"])

	bad := NewServer("127.0.0.1:-1", NewMetrics())
	bad.Start()
	require.Eventually(t, func() bool { return findEntry(hook, log.ErrorLevel) != nil }, time.Second, 10*time.Millisecond)
	entry = findEntry(hook, log.ErrorLevel)
	assert.Equal(t, "metrics", entry.Data["component"])
	assert.NotNil(t, entry.Data[log.ErrorKey])
	assert.NotContains(t, entry.Message, "[metrics]")
}
