package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New("test")

	m.BookingAttempt("demo", "created")
	m.BookingAttempt("demo", "created")
	m.BookingAttempt("standard", "conflict")
	m.MessageSent()
	m.EmailResult("otp_verification", nil)
	m.EmailResult("otp_verification", errors.New("smtp down"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookings.WithLabelValues("demo", "created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookings.WithLabelValues("standard", "conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.messages))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.emails.WithLabelValues("otp_verification", "failed")))
}

func TestMetrics_NilReceiverIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHTTP("GET", "/x", 200, time.Millisecond)
		m.BookingAttempt("standard", "created")
		m.MessageSent()
		m.EmailResult("x", nil)
		m.Notification("receive_message", false)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New("homefinder")
	m.ObserveHTTP("GET", "/api/v1/properties", 200, 5*time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `homefinder_http_requests_total{method="GET",route="/api/v1/properties",status="200"} 1`)
}
