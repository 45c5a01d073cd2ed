package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
)

// MiscellaneousAliases lists, in priority order, the field names the backend
// has used for the miscellaneous charge. New aliases go here and nowhere else.
var MiscellaneousAliases = []string{
	"miscellaneous",
	"misc",
	"balance",
	"maintenance",
	"otherCharges",
	"otherCharge",
	"extra",
}

// NormalizeBill maps one raw backend record onto models.Bill.
// Missing or non-numeric amounts become 0.
func NormalizeBill(raw map[string]any) models.Bill {
	return models.Bill{
		ID:            toID(raw["id"]),
		TenantName:    toString(raw["tenantName"]),
		MonthYear:     toString(raw["monthYear"]),
		Rent:          toNumber(raw["rent"]),
		Water:         toNumber(raw["water"]),
		Electricity:   toNumber(raw["electricity"]),
		Miscellaneous: firstDefined(raw, MiscellaneousAliases),
		Paid:          toBool(raw["paid"]),
	}
}

// DecodeBills decodes a JSON array of raw bill records and normalizes each one.
func DecodeBills(data []byte) ([]models.Bill, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []models.Bill{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raws []map[string]any
	if err := dec.Decode(&raws); err != nil {
		return nil, fmt.Errorf("decode bills: %w", err)
	}

	bills := make([]models.Bill, 0, len(raws))
	for _, r := range raws {
		bills = append(bills, NormalizeBill(r))
	}
	return bills, nil
}

// firstDefined returns the first key present with a non-null value,
// converted to a number, or 0 when none is.
func firstDefined(raw map[string]any, keys []string) float64 {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return toNumber(v)
		}
	}
	return 0
}

func toNumber(v any) float64 {
	var f float64
	switch n := v.(type) {
	case json.Number:
		var err error
		if f, err = n.Float64(); err != nil {
			return 0
		}
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(n), 64); err != nil {
			return 0
		}
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	default:
		return fmt.Sprint(s)
	}
}

func toID(v any) models.ID {
	if f, ok := v.(float64); ok {
		return models.ID(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return models.ID(toString(v))
}

func toBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		ok, _ := strconv.ParseBool(strings.TrimSpace(b))
		return ok
	case json.Number, float64, int, int64:
		return toNumber(b) != 0
	default:
		return false
	}
}
