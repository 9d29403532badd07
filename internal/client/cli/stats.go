package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	dto "github.com/prometheus/client_model/go"
)

// Stats prints every collected session metric as "name{labels} value".
func (a *App) Stats(ctx context.Context) error {
	families, err := a.gatherer.Gather()
	if err != nil {
		a.log.Warn(ctx, "gather metrics", "error", err)
		return a.fail(err)
	}

	lines := formatFamilies(families)
	if len(lines) == 0 {
		printlnFn("No metrics yet.")
		return nil
	}
	for _, l := range lines {
		printlnFn(l)
	}
	return nil
}

func formatFamilies(families []*dto.MetricFamily) []string {
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			lines = append(lines, fmt.Sprintf("%s%s %g", mf.GetName(), formatLabels(m.GetLabel()), metricValue(mf.GetType(), m)))
		}
	}
	sort.Strings(lines)
	return lines
}

func formatLabels(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, lp := range labels {
		parts = append(parts, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func metricValue(t dto.MetricType, m *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	default:
		return m.GetUntyped().GetValue()
	}
}
