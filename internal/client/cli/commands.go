package cli

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
)

// Command is one console command. Public commands run without a session;
// the others require a login and, when Role is set, that role.
type Command struct {
	Name   string
	Usage  string
	Role   models.Role
	Public bool
	run    func(ctx context.Context, args []string) error
}

func (a *App) commandTable() []Command {
	return []Command{
		{Name: "register", Usage: "register - start a new tenant registration", Public: true, run: a.register},
		{Name: "register-otp", Usage: "register-otp - finish registration with the emailed OTP", Public: true, run: a.finishRegistration},
		{Name: "login", Usage: "login - log in", Public: true, run: a.login},
		{Name: "forgot", Usage: "forgot - request a password reset OTP", Public: true, run: a.forgotPassword},
		{Name: "reset", Usage: "reset - set a new password with the OTP", Public: true, run: a.resetPassword},

		{Name: "logout", Usage: "logout - end the session", run: a.logout},
		{Name: "whoami", Usage: "whoami - show the session", run: a.whoami},
		{Name: "home", Usage: "home - open your home view", run: a.home},
		{Name: "deposits", Usage: "deposits [tenant] - list security deposits", run: a.listDeposits},
		{Name: "movein", Usage: "movein [username] - show move-in date and deposit", run: a.moveIn},

		{Name: "mybills", Usage: "mybills - list your bills", Role: models.RoleTenant, run: a.myBills},
		{Name: "pay", Usage: "pay <bill id> - pay a bill", Role: models.RoleTenant, run: a.pay},
		{Name: "complaints", Usage: "complaints [all|open|closed] - list your complaints", Role: models.RoleTenant, run: a.myComplaints},
		{Name: "complain", Usage: "complain - file a complaint", Role: models.RoleTenant, run: a.complain},
		{Name: "occupants", Usage: "occupants - list your occupants", Role: models.RoleTenant, run: a.myOccupants},
		{Name: "addoccupant", Usage: "addoccupant - register an occupant with an Aadhaar document", Role: models.RoleTenant, run: a.addOccupant},
		{Name: "deloccupant", Usage: "deloccupant <id> - delete an unverified occupant", Role: models.RoleTenant, run: a.deleteOccupant},
		{Name: "getdoc", Usage: "getdoc <id> - download an occupant document", Role: models.RoleTenant, run: a.occupantDocument},

		{Name: "bills", Usage: "bills [search] - list all bills", Role: models.RoleAdmin, run: a.allBills},
		{Name: "addbill", Usage: "addbill - add a bill", Role: models.RoleAdmin, run: a.addBill},
		{Name: "editbill", Usage: "editbill <id> - edit a bill", Role: models.RoleAdmin, run: a.editBill},
		{Name: "delbill", Usage: "delbill <id> - delete a bill", Role: models.RoleAdmin, run: a.deleteBill},
		{Name: "paid", Usage: "paid <YYYY-MM> - bills paid in a month", Role: models.RoleAdmin, run: a.paidBills},
		{Name: "users", Usage: "users [search] - list users", Role: models.RoleAdmin, run: a.allUsers},
		{Name: "adduser", Usage: "adduser - add a user", Role: models.RoleAdmin, run: a.addUser},
		{Name: "edituser", Usage: "edituser <id> - edit a user", Role: models.RoleAdmin, run: a.editUser},
		{Name: "deluser", Usage: "deluser <id> - delete a user", Role: models.RoleAdmin, run: a.deleteUser},
		{Name: "allcomplaints", Usage: "allcomplaints [all|open|closed] [tenant] - list all complaints", Role: models.RoleAdmin, run: a.allComplaints},
		{Name: "close", Usage: "close <id> - resolve a complaint", Role: models.RoleAdmin, run: a.closeComplaint},
		{Name: "reopen", Usage: "reopen <id> - reopen a closed complaint", Role: models.RoleAdmin, run: a.reopenComplaint},
		{Name: "alloccupants", Usage: "alloccupants [pending] [search] - list all occupants", Role: models.RoleAdmin, run: a.allOccupants},
		{Name: "verify", Usage: "verify <id> - verify an occupant", Role: models.RoleAdmin, run: a.verifyOccupant},
		{Name: "admindoc", Usage: "admindoc <id> - download an occupant document", Role: models.RoleAdmin, run: a.adminDocument},
		{Name: "adddeposit", Usage: "adddeposit <tenant> - record a security deposit", Role: models.RoleAdmin, run: a.addDeposit},
		{Name: "setmovein", Usage: "setmovein <user id> - set move-in date and deposit", Role: models.RoleAdmin, run: a.setMoveIn},
		{Name: "export", Usage: "export <bills|paid-bills|users|complaints|occupants> [YYYY-MM] [csv|xlsx] - export a table", Role: models.RoleAdmin, run: a.export},
	}
}

func (a *App) lookup(name string) (Command, bool) {
	for _, c := range a.commands {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}

// Exec guards and dispatches one command.
func (a *App) Exec(ctx context.Context, name string, args []string) error {
	cmd, ok := a.lookup(name)
	if !ok {
		return usagef("Unknown command: %s", name)
	}
	if !cmd.Public {
		if _, err := a.sessions.Require(cmd.Role); err != nil {
			return err
		}
	}
	return cmd.run(ctx, args)
}

// Help lists the commands the current user may run.
func (a *App) Help() []string {
	sess, loggedIn := a.sessions.Current()

	var out []string
	for _, c := range a.commands {
		switch {
		case !loggedIn && c.Public:
		case loggedIn && !c.Public && (c.Role == "" || c.Role == sess.Role):
		default:
			continue
		}
		out = append(out, c.Usage)
	}
	sort.Strings(out)
	return append(out, "help - show this list", "exit - leave the console")
}

// arg returns args[i] or a usage error naming the command.
func arg(args []string, i int, usage string) (string, error) {
	if i >= len(args) {
		return "", usagef("Usage: %s", usage)
	}
	return args[i], nil
}

func optArg(args []string, i int) string {
	if i >= len(args) {
		return ""
	}
	return args[i]
}
