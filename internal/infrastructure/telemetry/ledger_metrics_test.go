package telemetry_test

import (
	"context"
	"testing"

	"github.com/grocer/backoffice/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func newTestLedgerMetrics(t *testing.T) (*telemetry.LedgerMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	lm, err := telemetry.NewLedgerMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return lm, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestNewLedgerMetrics_NilMeter(t *testing.T) {
	lm, err := telemetry.NewLedgerMetrics(nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Nil(t, lm)
}

func TestLedgerMetrics_RecordBalanceMutation(t *testing.T) {
	lm, reader := newTestLedgerMetrics(t)
	ctx := context.Background()

	lm.RecordBalanceMutation(ctx, "SALE", decimal.RequireFromString("120.50"), false)
	lm.RecordBalanceMutation(ctx, "SALE", decimal.RequireFromString("79.50"), false)
	lm.RecordBalanceMutation(ctx, "CHEQUE_BOUNCE", decimal.NewFromInt(500), true)

	metrics := collect(t, reader)

	counts, ok := metrics["ledger_balance_mutations_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	bySale := map[bool]int64{}
	for _, dp := range counts.DataPoints {
		cause, _ := dp.Attributes.Value(attribute.Key("cause"))
		over, _ := dp.Attributes.Value(attribute.Key("over_limit"))
		if cause.AsString() == "SALE" {
			bySale[over.AsBool()] += dp.Value
		}
	}
	assert.Equal(t, int64(2), bySale[false])

	amounts, ok := metrics["ledger_balance_mutation_amount_total"].Data.(metricdata.Sum[float64])
	require.True(t, ok)
	var total float64
	for _, dp := range amounts.DataPoints {
		total += dp.Value
	}
	assert.InDelta(t, 700.0, total, 0.0001)
}

func TestLedgerMetrics_RestoreOutcomes(t *testing.T) {
	lm, reader := newTestLedgerMetrics(t)
	ctx := context.Background()

	lm.RecordArchive(ctx, "SALE")
	lm.RecordRestore(ctx, "SALE", telemetry.OutcomeSuccess)
	lm.RecordRestore(ctx, "SALE", telemetry.OutcomeConflict)
	lm.RecordPurge(ctx, "SALE")

	metrics := collect(t, reader)
	restores := metrics["archive_restores_total"].Data.(metricdata.Sum[int64])
	assert.Len(t, restores.DataPoints, 2)
	assert.Contains(t, metrics, "archive_snapshots_created_total")
	assert.Contains(t, metrics, "archive_purges_total")
}

func TestLedgerMetrics_NilReceiver(t *testing.T) {
	var lm *telemetry.LedgerMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		lm.RecordBalanceMutation(ctx, "PAYMENT", decimal.NewFromInt(1), false)
		lm.RecordPayment(ctx, "CASH")
		lm.RecordBounce(ctx, true)
		lm.RecordArchive(ctx, "USER")
		lm.RecordRestore(ctx, "USER", telemetry.OutcomeRejected)
		lm.RecordPurge(ctx, "USER")
	})
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())

	lm, err := telemetry.NewLedgerMetrics(mp.Meter("grocer"))
	require.NoError(t, err)
	lm.RecordPayment(context.Background(), "BANK")
	assert.NoError(t, mp.Shutdown(context.Background()))
}
