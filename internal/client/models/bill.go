package models

import (
	"math"
)

// Bill is one tenant's monthly charge record.
type Bill struct {
	ID            ID      `json:"id"`
	TenantName    string  `json:"tenantName"`
	MonthYear     string  `json:"monthYear"`
	Rent          float64 `json:"rent"`
	Water         float64 `json:"water"`
	Electricity   float64 `json:"electricity"`
	Miscellaneous float64 `json:"miscellaneous"`
	Paid          bool    `json:"paid"`
}

// Total is rent + water + electricity + miscellaneous. Non-finite parts count as 0.
func (b Bill) Total() float64 {
	return finite(b.Rent) + finite(b.Water) + finite(b.Electricity) + finite(b.Miscellaneous)
}

// AmountMinor converts Total to the smallest currency unit (paise).
func (b Bill) AmountMinor() int64 {
	return int64(math.Round(b.Total() * 100))
}

// BillTotals are per-column sums over a list of bills.
type BillTotals struct {
	Rent          float64
	Water         float64
	Electricity   float64
	Miscellaneous float64
	Grand         float64
}

// SumBills adds up every column of bills.
func SumBills(bills []Bill) BillTotals {
	var t BillTotals
	for _, b := range bills {
		t.Rent += finite(b.Rent)
		t.Water += finite(b.Water)
		t.Electricity += finite(b.Electricity)
		t.Miscellaneous += finite(b.Miscellaneous)
		t.Grand += b.Total()
	}
	return t
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
