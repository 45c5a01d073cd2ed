// Package report turns loaded admin lists into exportable tables and writes
// them as CSV or XLSX to a local directory or an S3-compatible bucket.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
)

// Table is a header, one row per record and an optional totals footer.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
	Footer []string
}

// Records returns header, rows and footer in output order.
func (t Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+2)
	out = append(out, t.Header)
	out = append(out, t.Rows...)
	if len(t.Footer) > 0 {
		out = append(out, t.Footer)
	}
	return out
}

// FormatAmount prints an amount without trailing zeros: 1350, 12.5.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// BillsTable lists bills with a trailing totals row.
func BillsTable(name string, bills []models.Bill) Table {
	t := Table{
		Name:   name,
		Header: []string{"ID", "Tenant", "Month", "Rent", "Water", "Electricity", "Miscellaneous", "Total"},
	}
	for _, b := range bills {
		t.Rows = append(t.Rows, []string{
			b.ID.String(),
			b.TenantName,
			b.MonthYear,
			FormatAmount(b.Rent),
			FormatAmount(b.Water),
			FormatAmount(b.Electricity),
			FormatAmount(b.Miscellaneous),
			FormatAmount(b.Total()),
		})
	}

	tot := models.SumBills(bills)
	t.Footer = []string{
		"", "", "Totals",
		FormatAmount(tot.Rent),
		FormatAmount(tot.Water),
		FormatAmount(tot.Electricity),
		FormatAmount(tot.Miscellaneous),
		FormatAmount(tot.Grand),
	}
	return t
}

// UsersTable lists accounts. Passwords are never exported.
func UsersTable(users []models.User) Table {
	t := Table{
		Name:   "users",
		Header: []string{"ID", "Username", "Role", "Email", "Mobile"},
	}
	for _, u := range users {
		t.Rows = append(t.Rows, []string{u.ID.String(), u.Username, string(u.Role), u.Email, u.MobileNumber})
	}
	return t
}

func ComplaintsTable(items []models.Complaint) Table {
	t := Table{
		Name:   "complaints",
		Header: []string{"ID", "Tenant", "Description", "Status", "Created", "Resolution"},
	}
	open := 0
	for _, c := range items {
		if c.Status == models.ComplaintOpen {
			open++
		}
		t.Rows = append(t.Rows, []string{
			c.ID.String(), c.TenantName, c.Description, string(c.Status), c.CreatedDate, c.ResolutionComment,
		})
	}
	t.Footer = []string{"", "", "Open", strconv.Itoa(open), "", ""}
	return t
}

func OccupantsTable(items []models.Occupant) Table {
	t := Table{
		Name:   "occupants",
		Header: []string{"ID", "Tenant", "Name", "Document", "Uploaded", "Verified"},
	}
	pending := 0
	for _, o := range items {
		verified := "No"
		if o.Verified {
			verified = "Yes"
		} else {
			pending++
		}
		t.Rows = append(t.Rows, []string{
			o.ID.String(), o.TenantUsername, o.Name, o.AadharFileName, o.UploadedAt, verified,
		})
	}
	t.Footer = []string{"", "", "", "", "Pending", strconv.Itoa(pending)}
	return t
}

// FileName builds "<kind>-<period>.<ext>", or "<kind>.<ext>" without a period.
func FileName(kind, period, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if period == "" {
		return fmt.Sprintf("%s.%s", kind, ext)
	}
	return fmt.Sprintf("%s-%s.%s", kind, period, ext)
}

// PaidBillsFileName is the export name of the paid bills report for month.
func PaidBillsFileName(month, ext string) string {
	return FileName("paid-bills", month, ext)
}
