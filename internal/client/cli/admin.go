package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/client/services"
	"github.com/dmitrijs2005/rentkeeper/internal/report"
)

func (a *App) allBills(ctx context.Context, args []string) error {
	v, err := a.current()
	if err != nil {
		return err
	}
	if _, err := v.bills.Refresh(ctx); err != nil {
		return err
	}

	bills := v.bills.Filter(services.BillMatches(strings.Join(args, " ")))
	printTable(a.out, report.BillsTable("bills", bills), "No bills found.")
	return nil
}

// readBill prompts for every bill field, offering the values of b.
func (a *App) readBill(b models.Bill) (models.Bill, error) {
	var err error
	if b.TenantName, err = GetDefault(a.reader, "Tenant", b.TenantName, a.out); err != nil {
		return b, err
	}
	if b.MonthYear, err = GetDefault(a.reader, "Month (YYYY-MM)", b.MonthYear, a.out); err != nil {
		return b, err
	}

	fields := []struct {
		label string
		dst   *float64
	}{
		{"Rent", &b.Rent},
		{"Water", &b.Water},
		{"Electricity", &b.Electricity},
		{"Miscellaneous", &b.Miscellaneous},
	}
	for _, f := range fields {
		s, err := GetDefault(a.reader, f.label, report.FormatAmount(*f.dst), a.out)
		if err != nil {
			return b, err
		}
		if *f.dst, err = parseAmount(f.label, s); err != nil {
			return b, err
		}
	}
	return b, nil
}

func (a *App) addBill(ctx context.Context, _ []string) error {
	v, err := a.current()
	if err != nil {
		return err
	}

	b, err := a.readBill(models.Bill{})
	if err != nil {
		return err
	}
	if err := v.bills.Create(ctx, b); err != nil {
		return err
	}
	a.println("Bill added.")
	return nil
}

// editBill puts the row into edit mode and saves the changed copy. The row
// stays in edit mode when saving fails.
func (a *App) editBill(ctx context.Context, args []string) error {
	id, err := arg(args, 0, "editbill <id>")
	if err != nil {
		return err
	}
	v, err := a.current()
	if err != nil {
		return err
	}
	if err := ensureLoaded(len(v.bills.Items()), func() error { _, err := v.bills.Refresh(ctx); return err }); err != nil {
		return err
	}

	b, err := v.bills.BeginEdit(models.ID(id))
	if err != nil {
		return err
	}
	if b, err = a.readBill(b); err != nil {
		v.bills.CancelEdit()
		return err
	}
	if err := v.bills.Save(ctx, b); err != nil {
		return err
	}
	a.println("Bill updated.")
	return nil
}

func (a *App) deleteBill(ctx context.Context, args []string) error {
	id, err := arg(args, 0, "delbill <id>")
	if err != nil {
		return err
	}
	v, err := a.current()
	if err != nil {
		return err
	}
	if err := ensureLoaded(len(v.bills.Items()), func() error { _, err := v.bills.Refresh(ctx); return err }); err != nil {
		return err
	}

	sent, err := v.bills.Delete(ctx, models.ID(id), a.confirm)
	return a.reportSent(sent, err, "Bill deleted.")
}

func (a *App) paidBills(ctx context.Context, args []string) error {
	month, err := arg(args, 0, "paid <YYYY-MM>")
	if err != nil {
		return err
	}

	rep, err := a.reports.PaidBills(ctx, month)
	if err != nil {
		return err
	}
	printTable(a.out, report.BillsTable("paid-bills", rep.Bills), "No bills were paid in "+rep.Month+".")
	return nil
}

func (a *App) allUsers(ctx context.Context, args []string) error {
	v, err := a.current()
	if err != nil {
		return err
	}
	if _, err := v.users.Refresh(ctx); err != nil {
		return err
	}

	users := v.users.Filter(services.UserMatches(strings.Join(args, " ")))
	printTable(a.out, report.UsersTable(users), "No users found.")
	return nil
}

// readUser prompts for the user fields. An empty password keeps the
// current one when editing.
func (a *App) readUser(u models.User) (models.User, error) {
	var err error
	if u.Username, err = GetDefault(a.reader, "Username", u.Username, a.out); err != nil {
		return u, err
	}

	prompt := "Password"
	if u.ID != "" {
		prompt = "New password (empty keeps the current one)"
	}
	pw, err := a.askSecret(prompt)
	if err != nil {
		return u, err
	}
	if len(pw) > 0 {
		u.Password = string(pw)
	}

	role := string(u.Role)
	if role == "" {
		role = string(models.RoleTenant)
	}
	if role, err = GetDefault(a.reader, "Role (ADMIN or TENANT)", role, a.out); err != nil {
		return u, err
	}
	u.Role = models.Role(strings.ToUpper(strings.TrimSpace(role)))

	if u.Email, err = GetDefault(a.reader, "Email", u.Email, a.out); err != nil {
		return u, err
	}
	if u.MobileNumber, err = GetDefault(a.reader, "Mobile number", u.MobileNumber, a.out); err != nil {
		return u, err
	}
	return u, nil
}

func (a *App) addUser(ctx context.Context, _ []string) error {
	v, err := a.current()
	if err != nil {
		return err
	}

	u, err := a.readUser(models.User{})
	if err != nil {
		return err
	}
	if err := v.users.Create(ctx, u); err != nil {
		return err
	}
	a.println("User added.")
	return nil
}

func (a *App) editUser(ctx context.Context, args []string) error {
	id, err := arg(args, 0, "edituser <id>")
	if err != nil {
		return err
	}
	v, err := a.current()
	if err != nil {
		return err
	}
	if err := ensureLoaded(len(v.users.Items()), func() error { _, err := v.users.Refresh(ctx); return err }); err != nil {
		return err
	}

	u, err := v.users.BeginEdit(models.ID(id))
	if err != nil {
		return err
	}
	if u, err = a.readUser(u); err != nil {
		v.users.CancelEdit()
		return err
	}
	if err := v.users.Save(ctx, u); err != nil {
		return err
	}
	a.println("User updated.")
	return nil
}

func (a *App) deleteUser(ctx context.Context, args []string) error {
	id, err := arg(args, 0, "deluser <id>")
	if err != nil {
		return err
	}
	v, err := a.current()
	if err != nil {
		return err
	}
	if err := ensureLoaded(len(v.users.Items()), func() error { _, err := v.users.Refresh(ctx); return err }); err != nil {
		return err
	}

	sent, err := v.users.Delete(ctx, models.ID(id), a.confirm)
	return a.reportSent(sent, err, "User deleted.")
}

func (a *App) allComplaints(ctx context.Context, args []string) error {
	status, err := parseStatus(optArg(args, 0))
	if err != nil {
		return err
	}
	v, err := a.current()
	if err != nil {
		return err
	}
	if _, err := v.board.Refresh(ctx); err != nil {
		return err
	}

	items := v.board.Search(status, strings.Join(argsFrom(args, 1), " "))
	printTable(a.out, report.ComplaintsTable(items), "No complaints found.")
	return nil
}

func (a *App) closeComplaint(ctx context.Context, args []string) error {
	id, err := arg(args, 0, "close <id>")
	if err != nil {
		return err
	}
	v, err := a.current()
	if err != nil {
		return err
	}
	if err := ensureLoaded(len(v.board.Items()), func() error { _, err := v.board.Refresh(ctx); return err }); err != nil {
		return err
	}

	comment, err := a.ask("Resolution comment")
	if err != nil {
		return err
	}
	if err := v.board.Close(ctx, models.ID(id), comment); err != nil {
		return err
	}
	a.println("Complaint closed.")
	return nil
}

func (a *App) reopenComplaint(ctx context.Context, args []string) error {
	id, err := arg(args, 0, "reopen <id>")
	if err != nil {
		return err
	}
	v, err := a.current()
	if err != nil {
		return err
	}
	if err := ensureLoaded(len(v.board.Items()), func() error { _, err := v.board.Refresh(ctx); return err }); err != nil {
		return err
	}

	sent, err := v.board.Reopen(ctx, models.ID(id), a.confirm)
	return a.reportSent(sent, err, "Complaint reopened.")
}

func (a *App) allOccupants(ctx context.Context, args []string) error {
	pending := false
	if len(args) > 0 && strings.EqualFold(args[0], "pending") {
		pending = true
		args = args[1:]
	}
	v, err := a.current()
	if err != nil {
		return err
	}
	if _, err := v.occupancy.Refresh(ctx); err != nil {
		return err
	}

	items := v.occupancy.Search(pending, strings.Join(args, " "))
	printTable(a.out, report.OccupantsTable(items), "No occupants found.")
	return nil
}

func (a *App) verifyOccupant(ctx context.Context, args []string) error {
	id, err := arg(args, 0, "verify <id>")
	if err != nil {
		return err
	}
	v, err := a.current()
	if err != nil {
		return err
	}
	if err := ensureLoaded(len(v.occupancy.Items()), func() error { _, err := v.occupancy.Refresh(ctx); return err }); err != nil {
		return err
	}

	sent, err := v.occupancy.Verify(ctx, models.ID(id), a.confirm)
	return a.reportSent(sent, err, "Occupant verified.")
}

func (a *App) adminDocument(ctx context.Context, args []string) error {
	id, err := arg(args, 0, "admindoc <id>")
	if err != nil {
		return err
	}
	v, err := a.current()
	if err != nil {
		return err
	}
	if err := ensureLoaded(len(v.occupancy.Items()), func() error { _, err := v.occupancy.Refresh(ctx); return err }); err != nil {
		return err
	}

	path, err := v.occupancy.Download(ctx, models.ID(id))
	if err != nil {
		return err
	}
	a.println("Saved to", path)
	return nil
}

func (a *App) addDeposit(ctx context.Context, args []string) error {
	tenant, err := arg(args, 0, "adddeposit <tenant>")
	if err != nil {
		return err
	}

	var d models.SecurityDeposit
	s, err := a.ask("Amount")
	if err != nil {
		return err
	}
	if d.Amount, err = parseAmount("Amount", s); err != nil {
		return err
	}
	if d.PaidDate, err = a.ask("Paid on (YYYY-MM-DD, empty for today)"); err != nil {
		return err
	}
	if d.Note, err = a.ask("Note"); err != nil {
		return err
	}

	if err := a.deposits.AddSecurityDeposit(ctx, tenant, d); err != nil {
		return err
	}
	a.println("Deposit recorded.")
	return nil
}

// setMoveIn edits the move-in fields stored on a user record.
func (a *App) setMoveIn(ctx context.Context, args []string) error {
	id, err := arg(args, 0, "setmovein <user id>")
	if err != nil {
		return err
	}
	v, err := a.current()
	if err != nil {
		return err
	}
	if err := ensureLoaded(len(v.users.Items()), func() error { _, err := v.users.Refresh(ctx); return err }); err != nil {
		return err
	}

	u, ok := v.users.Find(models.ID(id))
	if !ok {
		return usagef("No user with id %s", id)
	}
	cur, err := a.deposits.MoveIn(ctx, u.Username)
	if err != nil {
		return err
	}

	d := models.MoveInDeposit{ID: u.ID, Username: u.Username}
	if d.MoveInDate, err = GetDefault(a.reader, "Move-in date (YYYY-MM-DD)", cur.MoveInDate, a.out); err != nil {
		return err
	}
	s, err := GetDefault(a.reader, "Deposit amount", report.FormatAmount(cur.DepositAmount), a.out)
	if err != nil {
		return err
	}
	if d.DepositAmount, err = parseAmount("Deposit amount", s); err != nil {
		return err
	}

	if err := a.deposits.UpdateMoveIn(ctx, d); err != nil {
		return err
	}
	a.println("Move-in details saved.")
	return nil
}

// reportSent prints done when a confirmed request went through.
func (a *App) reportSent(sent bool, err error, done string) error {
	if err != nil {
		return err
	}
	if !sent {
		a.println("No changes made.")
		return nil
	}
	a.println(done)
	return nil
}

func argsFrom(args []string, i int) []string {
	if i >= len(args) {
		return nil
	}
	return args[i:]
}
