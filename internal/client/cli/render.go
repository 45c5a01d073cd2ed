package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/client/services"
	"github.com/dmitrijs2005/rentkeeper/internal/report"
)

// printTable writes t as aligned columns. An empty table prints empty.
func printTable(w io.Writer, t report.Table, empty string) {
	if len(t.Rows) == 0 {
		fmt.Fprintln(w, empty)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, rec := range t.Records() {
		fmt.Fprintln(tw, strings.Join(rec, "\t"))
	}
	_ = tw.Flush()
}

// ledgerTable is the tenant's bill list with its payment status.
func ledgerTable(bills []models.Bill, state func(models.ID) services.PayState) report.Table {
	t := report.BillsTable("bills", bills)
	t.Header = append(t.Header, "Status")
	for i, b := range bills {
		status := "Due"
		switch {
		case b.Paid:
			status = "Paid"
		case state(b.ID) == services.PayPaying:
			status = "Paying..."
		}
		t.Rows[i] = append(t.Rows[i], status)
	}
	t.Footer = append(t.Footer, "")
	return t
}

func depositsTable(items []models.SecurityDeposit, total float64) report.Table {
	t := report.Table{
		Name:   "deposits",
		Header: []string{"ID", "Tenant", "Amount", "Paid", "Note"},
	}
	for _, d := range items {
		t.Rows = append(t.Rows, []string{d.ID.String(), d.TenantName, report.FormatAmount(d.Amount), d.PaidDate, d.Note})
	}
	t.Footer = []string{"", "Total", report.FormatAmount(total), "", ""}
	return t
}
