package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/client/services"
	"github.com/dmitrijs2005/rentkeeper/internal/report"
	"github.com/dmitrijs2005/rentkeeper/internal/validation"
)

// export renders an admin table to the configured sink:
//
//	export paid-bills 2025-01 xlsx
//	export users csv
func (a *App) export(ctx context.Context, args []string) error {
	kind, err := arg(args, 0, "export <bills|paid-bills|users|complaints|occupants> [YYYY-MM] [csv|xlsx]")
	if err != nil {
		return err
	}

	var month, format string
	for _, s := range args[1:] {
		if validation.IsMonthYear(s) {
			month = s
		} else {
			format = s
		}
	}

	where, err := a.exportTable(ctx, kind, month, format)
	if err != nil {
		return err
	}
	a.println("Exported to", where)
	return nil
}

// ExportPaidBills writes the paid bills report of month without the REPL.
// It needs a stored admin session.
func (a *App) ExportPaidBills(ctx context.Context, month, format string) (string, error) {
	if _, err := a.sessions.Init(ctx); err != nil {
		return "", errors.New(describeError(err))
	}
	if _, err := a.sessions.Require(models.RoleAdmin); err != nil {
		return "", errors.New(describeError(err))
	}

	where, err := a.exportTable(ctx, "paid-bills", month, format)
	if err != nil {
		return "", errors.New(describeError(err))
	}
	return where, nil
}

func (a *App) exportTable(ctx context.Context, kind, month, format string) (string, error) {
	f, err := report.ParseFormat(format)
	if err != nil {
		return "", usagef("Format must be csv or xlsx")
	}

	t, period, err := a.buildTable(ctx, strings.ToLower(kind), month)
	if err != nil {
		return "", err
	}

	name := report.FileName(t.Name, period, string(f))
	where, err := report.Export(ctx, a.sink, t, f, name)
	if err != nil {
		a.logger.Error(ctx, "export failed", "file", name, "error", err)
		return "", usagef("Export of %s failed", name)
	}

	a.logger.Info(ctx, "exported", "file", name, "rows", len(t.Rows), "location", where)
	return where, nil
}

// buildTable collects the rows of kind. Only paid-bills has a period and is
// always fetched; the other tables use the list the admin views already hold.
func (a *App) buildTable(ctx context.Context, kind, month string) (report.Table, string, error) {
	if kind == "paid-bills" || kind == "paid" {
		rep, err := a.reports.PaidBills(ctx, month)
		if err != nil {
			return report.Table{}, "", err
		}
		return report.BillsTable("paid-bills", rep.Bills), rep.Month, nil
	}

	v, err := a.current()
	if err != nil {
		return report.Table{}, "", err
	}

	switch kind {
	case "bills":
		bills, err := loadedItems(ctx, v.bills)
		return report.BillsTable("bills", bills), "", err

	case "users":
		users, err := loadedItems(ctx, v.users)
		return report.UsersTable(users), "", err

	case "complaints":
		items, err := loadedItems(ctx, v.board.View)
		return report.ComplaintsTable(items), "", err

	case "occupants":
		items, err := loadedItems(ctx, v.occupancy.View)
		return report.OccupantsTable(items), "", err
	}

	return report.Table{}, "", usagef("Unknown export %q (bills, paid-bills, users, complaints or occupants)", kind)
}

// loadedItems returns the unfiltered list v holds, fetching only when
// nothing was loaded yet.
func loadedItems[T any](ctx context.Context, v *services.View[T]) ([]T, error) {
	if items := v.Items(); len(items) > 0 {
		return items, nil
	}
	return v.Refresh(ctx)
}
