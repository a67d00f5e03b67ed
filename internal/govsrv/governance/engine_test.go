package governance

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverallScore(t *testing.T) {
	tests := []struct {
		name             string
		documentationPct float64
		highRiskPct      float64
		want             float64
	}{
		{name: "fully documented, no risk", documentationPct: 100, highRiskPct: 0, want: 100},
		{name: "undocumented, no risk", documentationPct: 0, highRiskPct: 0, want: 60},
		{name: "half and half", documentationPct: 50, highRiskPct: 50, want: 50},
		{name: "risk term clamps at zero", documentationPct: 80, highRiskPct: 120, want: 32},
		{name: "rounded to two decimals", documentationPct: 33.33, highRiskPct: 0, want: 73.33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, overallScore(tt.documentationPct, tt.highRiskPct), 1e-9)
		})
	}
}

func TestPctRounding(t *testing.T) {
	assert.Zero(t, pct(0, 0))
	assert.Zero(t, pct(5, 0))
	assert.InDelta(t, 33.33, round2(pct(1, 3)), 1e-9)
	assert.InDelta(t, 66.67, round2(pct(2, 3)), 1e-9)
	assert.InDelta(t, 33.3, round1(pct(1, 3)), 1e-9)
	assert.InDelta(t, 100, round2(pct(7, 7)), 1e-9)
}

func TestFreshnessFor(t *testing.T) {
	tests := []struct {
		minutes int64
		want    string
	}{
		{minutes: -5, want: FreshnessFresh},
		{minutes: 0, want: FreshnessFresh},
		{minutes: 19, want: FreshnessFresh},
		{minutes: 20, want: FreshnessAcceptable},
		{minutes: 59, want: FreshnessAcceptable},
		{minutes: 60, want: FreshnessStale},
		{minutes: 1440, want: FreshnessStale},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%dm", tt.minutes), func(t *testing.T) {
			assert.Equal(t, tt.want, freshnessFor(tt.minutes))
		})
	}
}

func TestSplitFullName(t *testing.T) {
	catalog, schema, table, err := splitFullName("main.sales.orders")
	require.Nil(t, err)
	assert.Equal(t, "main", catalog)
	assert.Equal(t, "sales", schema)
	assert.Equal(t, "orders", table)

	for _, name := range []string{"", "orders", "main.orders", "main.sales.orders.extra"} {
		_, _, _, err := splitFullName(name)
		require.NotNil(t, err, name)
		assert.True(t, errors.Is(err, ErrInvalidTableName))
		assert.True(t, errors.Is(err, ErrGovernance))
	}
}

func TestExtractKeywords(t *testing.T) {
	assert.Equal(t, []string{"find", "customer", "tables"}, ExtractKeywords("Find customer PII tables"))
	assert.Empty(t, ExtractKeywords("is it in an"))
	assert.Empty(t, ExtractKeywords(""))
	assert.Equal(t, []string{"orders"}, ExtractKeywords("  ORDERS  "))
}

func TestSummarizePII(t *testing.T) {
	tables := make([]PIITableStatus, 0, 16)
	for i := 0; i < 12; i++ {
		tables = append(tables, PIITableStatus{
			FullTableName: fmt.Sprintf("main.sales.high_%02d", i),
			RiskLevel:     RiskHigh,
		})
	}
	for i := 0; i < 3; i++ {
		tables = append(tables, PIITableStatus{
			FullTableName: fmt.Sprintf("main.sales.medium_%d", i),
			RiskLevel:     RiskMedium,
		})
	}
	tables = append(tables, PIITableStatus{FullTableName: "main.sales.low", RiskLevel: "LOW"})

	analysis := summarizePII(tables)
	assert.Equal(t, 16, analysis.TotalTablesWithPII)
	assert.Equal(t, 12, analysis.HighRiskCount)
	assert.Equal(t, 3, analysis.MediumRiskCount)
	require.Len(t, analysis.HighRiskTables, 10)
	assert.Equal(t, "main.sales.high_00", analysis.HighRiskTables[0].FullTableName)
	assert.Equal(t, "main.sales.high_09", analysis.HighRiskTables[9].FullTableName)
	assert.Len(t, analysis.MediumRiskTables, 3)
}

func TestSummarizePIIEmpty(t *testing.T) {
	analysis := summarizePII(nil)
	assert.Zero(t, analysis.TotalTablesWithPII)
	assert.NotNil(t, analysis.HighRiskTables)
	assert.Empty(t, analysis.HighRiskTables)
	assert.Empty(t, analysis.MediumRiskTables)
}

func TestTableExistsRejectsBadNames(t *testing.T) {
	engine := New(nil)
	for _, name := range []string{"orders", "main.sales", "a.b.c.d"} {
		exists, err := engine.TableExists(context.Background(), name)
		require.Nil(t, err, name)
		assert.False(t, exists, name)
	}
}
