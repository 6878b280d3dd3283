package metrics_test

import (
	"strings"
	"testing"

	"github.com/aisa-it/redactor.go/internal/redactor/editor"
	"github.com/aisa-it/redactor.go/internal/redactor/formats"
	"github.com/aisa-it/redactor.go/internal/redactor/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	r := prometheus.NewRegistry()
	require.NoError(t, metrics.Register(r))
	require.NoError(t, metrics.Register(r))

	other := prometheus.NewCounter(prometheus.CounterOpts{Namespace: "redactor", Name: "replace_total", Help: "clash"})
	r2 := prometheus.NewRegistry()
	require.NoError(t, r2.Register(other))
	assert.Error(t, metrics.Register(r2))
}

func TestFormatCounters(t *testing.T) {
	reg, err := formats.NewRegistry()
	require.NoError(t, err)
	s, err := editor.ParseDocument(strings.NewReader("<p>One</p><p>Two</p>"), reg)
	require.NoError(t, err)
	defer s.Close()

	replace := metrics.FormatOps.WithLabelValues(metrics.OutcomeReplace)
	attribute := metrics.FormatOps.WithLabelValues(metrics.OutcomeAttribute)
	replaceBefore := testutil.ToFloat64(replace)
	attributeBefore := testutil.ToFloat64(attribute)
	headersBefore := testutil.ToFloat64(metrics.Replacements.WithLabelValues(formats.Header))

	require.NoError(t, s.FormatAt(0, 1, "header", "h1"))
	require.NoError(t, s.FormatAt(3, 1, "align", "center"))

	assert.Equal(t, replaceBefore+1, testutil.ToFloat64(replace))
	assert.Equal(t, attributeBefore+1, testutil.ToFloat64(attribute))
	assert.Equal(t, headersBefore+1, testutil.ToFloat64(metrics.Replacements.WithLabelValues(formats.Header)))
}
