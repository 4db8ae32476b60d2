package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/evfleet/ocppcore/core/metrics"
	"github.com/evfleet/ocppcore/core/model"
)

func TestPromSink_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	require.NoError(t, err)
	ps := sink.(*PromSink)

	require.NoError(t, ps.RecordProfileDecision(coremetrics.ProfileDecision{
		EvseID:    1,
		ProfileID: 7,
		Purpose:   model.PurposeTxProfile,
		Result:    "Valid",
		Accepted:  true,
		Time:      time.Now(),
	}))
	assert.Equal(t, 1.0, testutil.ToFloat64(ps.decisions.WithLabelValues("TxProfile", "Valid", "true")))

	require.NoError(t, ps.RecordClear(coremetrics.ClearEvent{Removed: 3, Time: time.Now()}))
	assert.Equal(t, 3.0, testutil.ToFloat64(ps.cleared))

	require.NoError(t, ps.RecordStoredProfiles(5))
	assert.Equal(t, 5.0, testutil.ToFloat64(ps.stored))
}

func TestPromSink_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	require.NoError(t, err)
	_, err = NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	assert.NoError(t, err, "re-registration must reuse existing collectors")
}
