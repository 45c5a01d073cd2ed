package api

import (
	"encoding/json"
	"testing"

	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBill_MiscellaneousAliases(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want float64
	}{
		{name: "canonical", raw: map[string]any{"miscellaneous": 50.0, "misc": 1.0}, want: 50},
		{name: "misc", raw: map[string]any{"misc": 40.0, "balance": 1.0}, want: 40},
		{name: "balance", raw: map[string]any{"balance": 30.0, "maintenance": 1.0}, want: 30},
		{name: "maintenance", raw: map[string]any{"maintenance": 20.0}, want: 20},
		{name: "otherCharges", raw: map[string]any{"otherCharges": 15.0, "otherCharge": 1.0}, want: 15},
		{name: "otherCharge", raw: map[string]any{"otherCharge": 12.0}, want: 12},
		{name: "extra", raw: map[string]any{"extra": 7.0}, want: 7},
		{name: "none", raw: map[string]any{}, want: 0},
		{name: "null skipped", raw: map[string]any{"miscellaneous": nil, "misc": 9.0}, want: 9},
		{name: "zero is defined", raw: map[string]any{"miscellaneous": 0.0, "misc": 9.0}, want: 0},
		{name: "numeric string", raw: map[string]any{"balance": " 25.5 "}, want: 25.5},
		{name: "garbage string", raw: map[string]any{"misc": "n/a", "balance": 3.0}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBill(tt.raw).Miscellaneous)
		})
	}
}

func TestNormalizeBill_Fields(t *testing.T) {
	raw := map[string]any{
		"id":          json.Number("12"),
		"tenantName":  "alice",
		"monthYear":   "2025-01",
		"rent":        json.Number("1000"),
		"water":       "100",
		"electricity": nil,
		"paid":        true,
	}

	got := NormalizeBill(raw)
	assert.Equal(t, models.Bill{
		ID: "12", TenantName: "alice", MonthYear: "2025-01",
		Rent: 1000, Water: 100, Electricity: 0, Paid: true,
	}, got)
}

func TestDecodeBills(t *testing.T) {
	data := []byte(`[
		{"id":1,"tenantName":"A","monthYear":"2025-01","rent":1000,"water":100,"electricity":200,"maintenance":50,"paid":false},
		{"id":2,"tenantName":"B","monthYear":"2025-02","rent":"abc","water":null,"electricity":1e400,"paid":"true"}
	]`)

	bills, err := DecodeBills(data)
	require.NoError(t, err)
	require.Len(t, bills, 2)

	assert.Equal(t, 1350.0, bills[0].Total())
	assert.Equal(t, 50.0, bills[0].Miscellaneous)

	assert.Equal(t, models.ID("2"), bills[1].ID)
	assert.Equal(t, 0.0, bills[1].Electricity, "out of range numbers coerce to 0")
	assert.Equal(t, 0.0, bills[1].Total())
	assert.True(t, bills[1].Paid)
}

func TestDecodeBills_NotAnArray(t *testing.T) {
	_, err := DecodeBills([]byte(`{"error":"x"}`))
	require.Error(t, err)
}

func TestDecodeBills_Empty(t *testing.T) {
	for _, in := range []string{"", "null", "  "} {
		bills, err := DecodeBills([]byte(in))
		require.NoError(t, err)
		assert.Empty(t, bills)
	}
}
