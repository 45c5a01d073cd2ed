package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/client/api"
	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
)

// fakeClient records calls and serves canned data. Methods a test does not
// override fall through to the nil embedded interface and panic.
type fakeClient struct {
	api.Client

	mu    sync.Mutex
	calls []string
	token string

	loginRes models.LoginResult
	loginErr error

	bills      []models.Bill
	billsErr   error
	billsCalls int

	markPaidErr   error
	logSuccessErr error
	logFailureErr error
	successes     []models.PaymentSuccess
	failures      []models.PaymentFailure
	// confirmOnMarkPaid flips the bill to paid in the next listing.
	confirmOnMarkPaid bool

	allBills  []models.Bill
	updateErr error
	deleteErr error
	updated   []models.Bill

	complaints      []models.Complaint
	complaintsErr   error
	addComplaintErr error
	onAddComplaint  func()
	closed          map[models.ID]string

	occupants    []models.Occupant
	verifyErr    error
	addOccupant  []models.OccupantUpload
	registration []any
	paidBills    []models.Bill

	deposits      []models.SecurityDeposit
	addedDeposits []models.SecurityDeposit
	moveIns       []models.MoveInDeposit
}

func (f *fakeClient) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeClient) SetToken(token string) {
	f.mu.Lock()
	f.token = token
	f.mu.Unlock()
}

func (f *fakeClient) Login(ctx context.Context, username, password string) (models.LoginResult, error) {
	f.record("login")
	return f.loginRes, f.loginErr
}

func (f *fakeClient) StartRegistration(ctx context.Context, req models.RegistrationStart) error {
	f.record("registration/start")
	f.registration = append(f.registration, req)
	return nil
}

func (f *fakeClient) FinishRegistration(ctx context.Context, req models.RegistrationFinish) error {
	f.record("registration/finish")
	f.registration = append(f.registration, req)
	return nil
}

func (f *fakeClient) ForgotPassword(ctx context.Context, username string) error {
	f.record("forgot-password")
	return nil
}

func (f *fakeClient) ResetPassword(ctx context.Context, username, otp, newPassword string) error {
	f.record("reset-password")
	return nil
}

func (f *fakeClient) TenantBills(ctx context.Context, username string) ([]models.Bill, error) {
	f.record("bills")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.billsCalls++
	if f.billsErr != nil {
		return nil, f.billsErr
	}
	out := make([]models.Bill, len(f.bills))
	copy(out, f.bills)
	return out, nil
}

func (f *fakeClient) MarkPaid(ctx context.Context, id models.ID) error {
	f.record("markPaid")
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.markPaidErr != nil {
		return f.markPaidErr
	}
	if f.confirmOnMarkPaid {
		f.mu.Lock()
		for i := range f.bills {
			if f.bills[i].ID == id {
				f.bills[i].Paid = true
			}
		}
		f.mu.Unlock()
	}
	return nil
}

func (f *fakeClient) LogPaymentSuccess(ctx context.Context, ev models.PaymentSuccess) error {
	f.record("logSuccess")
	if err := ctx.Err(); err != nil {
		return err
	}
	f.successes = append(f.successes, ev)
	return f.logSuccessErr
}

func (f *fakeClient) LogPaymentFailure(ctx context.Context, ev models.PaymentFailure) error {
	f.record("logFailure")
	if err := ctx.Err(); err != nil {
		return err
	}
	f.failures = append(f.failures, ev)
	return f.logFailureErr
}

func (f *fakeClient) AllBills(ctx context.Context) ([]models.Bill, error) {
	f.record("allBills")
	out := make([]models.Bill, len(f.allBills))
	copy(out, f.allBills)
	return out, nil
}

func (f *fakeClient) PaidBills(ctx context.Context, month string) ([]models.Bill, error) {
	f.record("paidBills")
	return f.paidBills, nil
}

func (f *fakeClient) UpdateBill(ctx context.Context, id models.ID, b models.Bill) error {
	f.record("updateBill")
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, b)
	for i := range f.allBills {
		if f.allBills[i].ID == id {
			f.allBills[i] = b
		}
	}
	return nil
}

func (f *fakeClient) AddBill(ctx context.Context, b models.Bill) error {
	f.record("addBill")
	f.allBills = append(f.allBills, b)
	return nil
}

func (f *fakeClient) DeleteBill(ctx context.Context, id models.ID) error {
	f.record("deleteBill")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	out := f.allBills[:0]
	for _, b := range f.allBills {
		if b.ID != id {
			out = append(out, b)
		}
	}
	f.allBills = out
	return nil
}

func (f *fakeClient) TenantComplaints(ctx context.Context, tenant string) ([]models.Complaint, error) {
	f.record("complaints")
	if f.complaintsErr != nil {
		return nil, f.complaintsErr
	}
	out := make([]models.Complaint, len(f.complaints))
	copy(out, f.complaints)
	return out, nil
}

func (f *fakeClient) AllComplaints(ctx context.Context) ([]models.Complaint, error) {
	f.record("allComplaints")
	out := make([]models.Complaint, len(f.complaints))
	copy(out, f.complaints)
	return out, nil
}

func (f *fakeClient) AddComplaint(ctx context.Context, tenant, description string) error {
	f.record("addComplaint")
	if f.onAddComplaint != nil {
		f.onAddComplaint()
	}
	if f.addComplaintErr != nil {
		return f.addComplaintErr
	}
	f.complaints = append(f.complaints, models.Complaint{
		ID: "100", TenantName: tenant, Description: description,
		Status: models.ComplaintOpen, CreatedDate: time.Now().UTC().Format(time.RFC3339),
	})
	return nil
}

func (f *fakeClient) CloseComplaint(ctx context.Context, id models.ID, comment string) error {
	f.record("closeComplaint")
	if f.closed == nil {
		f.closed = map[models.ID]string{}
	}
	f.closed[id] = comment
	for i := range f.complaints {
		if f.complaints[i].ID == id {
			f.complaints[i].Status = models.ComplaintClosed
			f.complaints[i].ResolutionComment = comment
		}
	}
	return nil
}

func (f *fakeClient) ReopenComplaint(ctx context.Context, id models.ID) error {
	f.record("reopenComplaint")
	for i := range f.complaints {
		if f.complaints[i].ID == id {
			f.complaints[i].Status = models.ComplaintOpen
		}
	}
	return nil
}

func (f *fakeClient) TenantOccupants(ctx context.Context, tenant string) ([]models.Occupant, error) {
	f.record("occupants")
	out := make([]models.Occupant, len(f.occupants))
	copy(out, f.occupants)
	return out, nil
}

func (f *fakeClient) AllOccupants(ctx context.Context) ([]models.Occupant, error) {
	f.record("allOccupants")
	out := make([]models.Occupant, len(f.occupants))
	copy(out, f.occupants)
	return out, nil
}

func (f *fakeClient) AddOccupant(ctx context.Context, tenant string, up models.OccupantUpload) error {
	f.record("addOccupant")
	f.addOccupant = append(f.addOccupant, up)
	return nil
}

func (f *fakeClient) DeleteOccupant(ctx context.Context, id models.ID) error {
	f.record("deleteOccupant")
	return nil
}

func (f *fakeClient) VerifyOccupant(ctx context.Context, id models.ID) error {
	f.record("verifyOccupant")
	if f.verifyErr != nil {
		return f.verifyErr
	}
	for i := range f.occupants {
		if f.occupants[i].ID == id {
			f.occupants[i].Verified = true
		}
	}
	return nil
}

func (f *fakeClient) SecurityDeposits(ctx context.Context, tenant string) ([]models.SecurityDeposit, error) {
	f.record("deposits")
	return f.deposits, nil
}

func (f *fakeClient) AddSecurityDeposit(ctx context.Context, tenant string, d models.SecurityDeposit) error {
	f.record("addDeposit")
	f.addedDeposits = append(f.addedDeposits, d)
	return nil
}

func (f *fakeClient) UpdateMoveInDeposit(ctx context.Context, id models.ID, d models.MoveInDeposit) error {
	f.record("updateMoveIn")
	f.moveIns = append(f.moveIns, d)
	return nil
}

// memSessionRepo is an in-memory session.Repository.
type memSessionRepo struct {
	mu      sync.Mutex
	stored  *models.Session
	cleared int
	touched []time.Time
	saveErr error
}

func (m *memSessionRepo) Load(ctx context.Context) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stored == nil {
		return nil, nil
	}
	s := *m.stored
	return &s, nil
}

func (m *memSessionRepo) Save(ctx context.Context, s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.stored = &s
	return nil
}

func (m *memSessionRepo) Touch(ctx context.Context, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched = append(m.touched, at)
	if m.stored != nil {
		m.stored.LastActivity = at
	}
	return nil
}

func (m *memSessionRepo) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = nil
	m.cleared++
	return nil
}

// fakeGateway answers Settle with a canned result, optionally blocking
// until release is closed.
type fakeGateway struct {
	mu       sync.Mutex
	requests []models.PaymentRequest
	result   models.PaymentResult
	err      error
	started  chan struct{}
	release  chan struct{}
}

func (g *fakeGateway) Settle(ctx context.Context, req models.PaymentRequest) (models.PaymentResult, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()

	if g.started != nil {
		close(g.started)
	}
	if g.release != nil {
		select {
		case <-g.release:
		case <-ctx.Done():
			return models.PaymentResult{}, ctx.Err()
		}
	}
	return g.result, g.err
}
