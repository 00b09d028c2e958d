package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyStockReorderPoint(t *testing.T) {
	pos := Position{AccountKey: "2:1", Available: 150}

	status := ClassifyStock(pos, Thresholds{ReorderPoint: 200})
	require.True(t, status.BelowReorder)
	require.Equal(t, "below reorder point", status.Reason)

	// Threshold of zero means not configured, never a flag.
	status = ClassifyStock(pos, Thresholds{ReorderPoint: 0})
	require.False(t, status.BelowReorder)
	require.Empty(t, status.Reason)
}

func TestClassifyStockNegativeThresholdIsUnconfigured(t *testing.T) {
	pos := Position{Available: 10}
	status := ClassifyStock(pos, Thresholds{ReorderPoint: -5, SafetyStock: -1})
	require.False(t, status.BelowReorder)
	require.False(t, status.BelowSafety)
}

func TestClassifyStockReorderReportedBeforeSafety(t *testing.T) {
	pos := Position{Available: 5}
	status := ClassifyStock(pos, Thresholds{ReorderPoint: 50, SafetyStock: 20})
	require.True(t, status.BelowReorder)
	require.True(t, status.BelowSafety)
	require.Equal(t, "below reorder point", status.Reason)
}

func TestClassifyStockThresholdMonotonicity(t *testing.T) {
	pos := Position{Available: 100}
	flagged := false
	for reorder := 0.0; reorder <= 300; reorder += 10 {
		status := ClassifyStock(pos, Thresholds{ReorderPoint: reorder})
		if flagged {
			require.True(t, status.BelowReorder, "raising the reorder point must never clear a flag (reorder=%v)", reorder)
		}
		flagged = status.BelowReorder
	}
	require.True(t, flagged)
}

func TestClassifyPayment(t *testing.T) {
	cases := []struct {
		name string
		pos  Position
		want PaymentStatus
	}{
		{"no activity is not settled", Position{}, PaymentNoActivity},
		{"fully paid", Position{ExpectedTotal: 100, PaidTotal: 100, Outstanding: 0}, PaymentSettled},
		{"overpaid still settled", Position{ExpectedTotal: 100, PaidTotal: 120, Outstanding: 0}, PaymentSettled},
		{"partial", Position{ExpectedTotal: 100, PaidTotal: 40, Outstanding: 60}, PaymentPartial},
		{"unpaid invoice", Position{ExpectedTotal: 100, Outstanding: 100}, PaymentUnpaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ClassifyPayment(tc.pos))
		})
	}
}

func TestDaysOfCover(t *testing.T) {
	require.Equal(t, 12.5, DaysOfCover(250, 20))
	require.Equal(t, 0.0, DaysOfCover(250, 0))

	require.True(t, WithinCoverWindow(100, 20, 7))
	require.False(t, WithinCoverWindow(500, 20, 7))
	require.False(t, WithinCoverWindow(100, 0, 7))
}
