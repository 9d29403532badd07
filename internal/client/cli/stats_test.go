package cli

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

func TestStats_AfterLogin(t *testing.T) {
	env := newTestApp(t)
	login(t, env)
	out := capturePrints(t)

	require.NoError(t, env.app.Stats(context.Background()))

	assert.Contains(t, *out, `worldacross_session_authenticated 1`)
	assert.Contains(t, *out, `worldacross_session_operations_total{op="login",outcome="ok"} 1`)
	assert.Contains(t, *out, `worldacross_session_transitions_total{status="authenticated"} 1`)
}

func TestStats_Empty(t *testing.T) {
	env := newTestApp(t)
	env.app.gatherer = prometheus.NewRegistry()
	out := capturePrints(t)

	require.NoError(t, env.app.Stats(context.Background()))
	assert.Equal(t, []string{"No metrics yet."}, *out)
}

func TestFormatFamilies(t *testing.T) {
	families := []*dto.MetricFamily{
		{
			Name: proto.String("b_gauge"),
			Type: dto.MetricType_GAUGE.Enum(),
			Metric: []*dto.Metric{
				{Gauge: &dto.Gauge{Value: proto.Float64(2.5)}},
			},
		},
		{
			Name: proto.String("a_total"),
			Type: dto.MetricType_COUNTER.Enum(),
			Metric: []*dto.Metric{
				{
					Label:   []*dto.LabelPair{{Name: proto.String("op"), Value: proto.String("login")}, {Name: proto.String("outcome"), Value: proto.String("ok")}},
					Counter: &dto.Counter{Value: proto.Float64(3)},
				},
			},
		},
	}

	assert.Equal(t, []string{
		`a_total{op="login",outcome="ok"} 3`,
		`b_gauge 2.5`,
	}, formatFamilies(families))
}
