package api

import (
	"context"

	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
)

// Client is the backend contract used by the console services.
// Every method honours ctx cancellation and deadlines.
type Client interface {
	// SetToken installs (or clears, with "") the bearer token sent on each request.
	SetToken(token string)

	Login(ctx context.Context, username, password string) (models.LoginResult, error)
	StartRegistration(ctx context.Context, req models.RegistrationStart) error
	FinishRegistration(ctx context.Context, req models.RegistrationFinish) error
	ForgotPassword(ctx context.Context, username string) error
	ResetPassword(ctx context.Context, username, otp, newPassword string) error

	TenantBills(ctx context.Context, username string) ([]models.Bill, error)
	AllBills(ctx context.Context) ([]models.Bill, error)
	PaidBills(ctx context.Context, monthYear string) ([]models.Bill, error)
	AddBill(ctx context.Context, bill models.Bill) error
	UpdateBill(ctx context.Context, id models.ID, bill models.Bill) error
	DeleteBill(ctx context.Context, id models.ID) error
	MarkPaid(ctx context.Context, id models.ID) error
	LogPaymentSuccess(ctx context.Context, ev models.PaymentSuccess) error
	LogPaymentFailure(ctx context.Context, ev models.PaymentFailure) error

	TenantComplaints(ctx context.Context, tenant string) ([]models.Complaint, error)
	AllComplaints(ctx context.Context) ([]models.Complaint, error)
	AddComplaint(ctx context.Context, tenant, description string) error
	CloseComplaint(ctx context.Context, id models.ID, resolutionComment string) error
	ReopenComplaint(ctx context.Context, id models.ID) error

	TenantOccupants(ctx context.Context, tenant string) ([]models.Occupant, error)
	AllOccupants(ctx context.Context) ([]models.Occupant, error)
	AddOccupant(ctx context.Context, tenant string, up models.OccupantUpload) error
	DeleteOccupant(ctx context.Context, id models.ID) error
	VerifyOccupant(ctx context.Context, id models.ID) error

	Users(ctx context.Context) ([]models.User, error)
	AddUser(ctx context.Context, u models.User) error
	UpdateUser(ctx context.Context, id models.ID, u models.User) error
	DeleteUser(ctx context.Context, id models.ID) error

	SecurityDeposits(ctx context.Context, tenant string) ([]models.SecurityDeposit, error)
	AddSecurityDeposit(ctx context.Context, tenant string, d models.SecurityDeposit) error
	MoveInDeposit(ctx context.Context, username string) (models.MoveInDeposit, error)
	UpdateMoveInDeposit(ctx context.Context, id models.ID, d models.MoveInDeposit) error
}
