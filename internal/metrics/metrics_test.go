package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestPrometheusRecorder_Counts(t *testing.T) {
	rec := NewPrometheusRecorder()
	rec.ObserveRequest(1, OutcomeSuccess, 120*time.Millisecond)
	rec.ObserveRequest(1, OutcomeSuccess, 80*time.Millisecond)
	rec.ObserveRequest(2, OutcomeFailure, time.Second)
	rec.ObserveStatus("webLookup")
	rec.ObserveExport(OutcomeFailure, 2*time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.requestsTotal.WithLabelValues("1", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.requestsTotal.WithLabelValues("2", OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.statusTotal.WithLabelValues("webLookup")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.exportsTotal.WithLabelValues(OutcomeFailure)))
}

func TestHandler_ServesRegistry(t *testing.T) {
	rec := NewPrometheusRecorder()
	rec.ObserveStatus("retrieval")

	srv := httptest.NewServer(Handler(rec.Registry()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `ignite_status_signals_total{tag="retrieval"} 1`))
}

func TestStart_Shutdown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s, err := Start("127.0.0.1:0", NewPrometheusRecorder().Registry(), nil)
	require.NoError(t, err)

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + s.Addr() + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
}

func TestNop(t *testing.T) {
	r := Nop()
	r.ObserveRequest(1, OutcomeSuccess, time.Second)
	r.ObserveStatus("webLookup")
	r.ObserveExport(OutcomeSuccess, time.Second)
}
