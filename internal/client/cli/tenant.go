package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/client/services"
	"github.com/dmitrijs2005/rentkeeper/internal/report"
)

// current returns the views of the logged-in user. The command guard has
// already checked the role.
func (a *App) current() (*views, error) {
	sess, err := a.sessions.Require("")
	if err != nil {
		return nil, err
	}
	return a.state(sess), nil
}

func (a *App) myBills(ctx context.Context, _ []string) error {
	v, err := a.current()
	if err != nil {
		return err
	}

	bills, err := v.ledger.Load(ctx)
	if err != nil {
		return err
	}
	printTable(a.out, ledgerTable(bills, v.ledger.State), "No bills yet.")
	return nil
}

// pay runs the checkout for one bill and reports how it ended.
func (a *App) pay(ctx context.Context, args []string) error {
	id, err := arg(args, 0, "pay <bill id>")
	if err != nil {
		return err
	}
	v, err := a.current()
	if err != nil {
		return err
	}
	if len(v.ledger.Bills()) == 0 {
		if _, err := v.ledger.Load(ctx); err != nil {
			return err
		}
	}

	out, err := v.ledger.Pay(ctx, models.ID(id))
	switch out.State {
	case services.PaySettled:
		a.println(fmt.Sprintf("Payment %s received for bill %s.", out.PaymentID, id))
		if !out.Confirmed {
			a.println("The bill is not shown as paid yet; check again with 'mybills'.")
		}
	case services.PayFailed:
		a.println("Payment failed:", out.Failure.Description)
	}
	if err != nil {
		return err
	}

	printTable(a.out, ledgerTable(v.ledger.Bills(), v.ledger.State), "No bills yet.")
	return nil
}

func parseStatus(s string) (models.StatusFilter, error) {
	switch strings.ToUpper(s) {
	case "", "ALL":
		return models.StatusAll, nil
	case "OPEN":
		return models.StatusOpen, nil
	case "CLOSED":
		return models.StatusClosed, nil
	}
	return "", usagef("Status must be all, open or closed")
}

func (a *App) myComplaints(ctx context.Context, args []string) error {
	status, err := parseStatus(optArg(args, 0))
	if err != nil {
		return err
	}
	v, err := a.current()
	if err != nil {
		return err
	}

	if _, err := v.complaints.Load(ctx); err != nil {
		return err
	}
	printTable(a.out, report.ComplaintsTable(v.complaints.Filter(status)), "No complaints.")
	return nil
}

func (a *App) complain(ctx context.Context, _ []string) error {
	v, err := a.current()
	if err != nil {
		return err
	}

	text, err := GetMultiline(a.reader, "Describe the problem", a.out)
	if err != nil {
		return err
	}
	if err := v.complaints.Submit(ctx, text); err != nil {
		return err
	}

	a.println("Complaint submitted.")
	printTable(a.out, report.ComplaintsTable(v.complaints.Items()), "No complaints.")
	return nil
}

func (a *App) myOccupants(ctx context.Context, _ []string) error {
	v, err := a.current()
	if err != nil {
		return err
	}

	items, err := v.occupants.Load(ctx)
	if err != nil {
		return err
	}
	printTable(a.out, report.OccupantsTable(items), "No occupants registered.")
	return nil
}

// addOccupant reads the occupant's name and a local Aadhaar file.
func (a *App) addOccupant(ctx context.Context, _ []string) error {
	v, err := a.current()
	if err != nil {
		return err
	}

	name, err := a.ask("Occupant name")
	if err != nil {
		return err
	}
	path, err := a.ask("Path to Aadhaar document (PDF, JPG or PNG)")
	if err != nil {
		return err
	}

	var data []byte
	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return usagef("Cannot read %s", path)
		}
	}

	if err := v.occupants.Add(ctx, name, filepath.Base(path), data); err != nil {
		return err
	}
	a.println("Occupant added.")
	printTable(a.out, report.OccupantsTable(v.occupants.Items()), "No occupants registered.")
	return nil
}

func (a *App) deleteOccupant(ctx context.Context, args []string) error {
	id, err := arg(args, 0, "deloccupant <id>")
	if err != nil {
		return err
	}
	v, err := a.current()
	if err != nil {
		return err
	}
	if err := ensureLoaded(len(v.occupants.Items()), func() error { _, err := v.occupants.Load(ctx); return err }); err != nil {
		return err
	}

	sent, err := v.occupants.Delete(ctx, models.ID(id), a.confirm)
	if err != nil {
		return err
	}
	if !sent {
		a.println("Cancelled.")
		return nil
	}
	a.println("Occupant deleted.")
	return nil
}

func (a *App) occupantDocument(ctx context.Context, args []string) error {
	id, err := arg(args, 0, "getdoc <id>")
	if err != nil {
		return err
	}
	v, err := a.current()
	if err != nil {
		return err
	}
	if err := ensureLoaded(len(v.occupants.Items()), func() error { _, err := v.occupants.Load(ctx); return err }); err != nil {
		return err
	}

	path, err := v.occupants.Download(ctx, models.ID(id))
	if err != nil {
		return err
	}
	a.println("Saved to", path)
	return nil
}

// listDeposits shows the tenant's own deposits; an admin names the tenant.
func (a *App) listDeposits(ctx context.Context, args []string) error {
	sess, err := a.sessions.Require("")
	if err != nil {
		return err
	}

	tenant := sess.Username
	if sess.Role == models.RoleAdmin {
		if tenant, err = arg(args, 0, "deposits <tenant>"); err != nil {
			return err
		}
	}

	items, total, err := a.deposits.SecurityDeposits(ctx, tenant)
	if err != nil {
		return err
	}
	printTable(a.out, depositsTable(items, total), "No security deposits recorded.")
	return nil
}

func (a *App) moveIn(ctx context.Context, args []string) error {
	sess, err := a.sessions.Require("")
	if err != nil {
		return err
	}

	username := sess.Username
	if sess.Role == models.RoleAdmin {
		if username, err = arg(args, 0, "movein <username>"); err != nil {
			return err
		}
	}

	d, err := a.deposits.MoveIn(ctx, username)
	if err != nil {
		return err
	}

	date := d.MoveInDate
	if date == "" {
		date = "not set"
	}
	a.println(fmt.Sprintf("Move-in date: %s\nDeposit: %s", date, report.FormatAmount(d.DepositAmount)))
	return nil
}

// ensureLoaded fetches a list before acting on one of its rows when the
// user has not opened the list yet.
func ensureLoaded(loaded int, load func() error) error {
	if loaded > 0 {
		return nil
	}
	return load()
}
