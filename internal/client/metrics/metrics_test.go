package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Transition("checking")
	m.Transition("authenticated")
	m.Operation("login", "ok")
	m.Operation("login", "error")
	m.Operation("login", "error")
	m.Verification("")
	m.Verification("Expired")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("authenticated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Authenticated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Operations.WithLabelValues("login", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Verifications.WithLabelValues("valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Verifications.WithLabelValues("Expired")))

	m.Transition("anonymous")
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Authenticated))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 4)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.Transition("authenticated")
	m.Operation("login", "ok")
	m.Verification("")
}

func TestNew_NilRegisterer(t *testing.T) {
	m := New(nil)
	m.Operation("logout", "ok")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("logout", "ok")))
}
