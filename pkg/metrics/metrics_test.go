package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordReport("POSTING")
	c.RecordReport("POSTING")
	c.RecordReport("COMMENT")
	c.RecordSuspension()
	c.RecordCascadeFailure("suspend", "postings")
	c.RecordNotification("reported", nil)
	c.RecordNotification("reported", errors.New("smtp down"))
	c.RecordHTTPRequest(http.MethodGet, "/api/v1/postings/feed", 200, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.reportsFiled.WithLabelValues("POSTING")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.reportsFiled.WithLabelValues("COMMENT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.suspensions))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cascadeFailures.WithLabelValues("suspend", "postings")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.notificationsTotal.WithLabelValues("reported", "failed")))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "footstep_reports_filed_total")
}
