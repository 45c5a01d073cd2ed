package cli

import (
	"bufio"
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/rentkeeper/internal/client/api"
	"github.com/dmitrijs2005/rentkeeper/internal/client/checkout"
	"github.com/dmitrijs2005/rentkeeper/internal/client/config"
	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/client/repositories"
	"github.com/dmitrijs2005/rentkeeper/internal/client/services"
	"github.com/dmitrijs2005/rentkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI implements the parts of api.Client the console tests reach.
type fakeAPI struct {
	api.Client

	mu       sync.Mutex
	calls    []string
	token    string
	login    models.LoginResult
	bills    []models.Bill
	paid     []models.Bill
	failures []models.PaymentFailure
	deleted  []models.ID
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeAPI) SetToken(token string) { f.token = token }

func (f *fakeAPI) Login(ctx context.Context, username, password string) (models.LoginResult, error) {
	f.record("login")
	return f.login, nil
}

func (f *fakeAPI) TenantBills(ctx context.Context, username string) ([]models.Bill, error) {
	f.record("bills")
	return append([]models.Bill(nil), f.bills...), nil
}

func (f *fakeAPI) AllBills(ctx context.Context) ([]models.Bill, error) {
	f.record("allBills")
	return append([]models.Bill(nil), f.bills...), nil
}

func (f *fakeAPI) PaidBills(ctx context.Context, month string) ([]models.Bill, error) {
	f.record("paidBills")
	return f.paid, nil
}

func (f *fakeAPI) MarkPaid(ctx context.Context, id models.ID) error {
	f.record("markPaid")
	for i := range f.bills {
		if f.bills[i].ID == id {
			f.bills[i].Paid = true
		}
	}
	return nil
}

func (f *fakeAPI) LogPaymentSuccess(ctx context.Context, ev models.PaymentSuccess) error {
	f.record("logSuccess")
	return nil
}

func (f *fakeAPI) LogPaymentFailure(ctx context.Context, ev models.PaymentFailure) error {
	f.record("logFailure")
	f.failures = append(f.failures, ev)
	return nil
}

func (f *fakeAPI) DeleteBill(ctx context.Context, id models.ID) error {
	f.record("deleteBill")
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type memSink struct {
	name        string
	data        []byte
	contentType string
}

func (s *memSink) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	s.name, s.data, s.contentType = name, data, contentType
	return "mem://" + name, nil
}

type testApp struct {
	*App
	out    *bytes.Buffer
	client *fakeAPI
	sink   *memSink
}

// newTestApp builds a console reading input, storing its session in dbPath
// and paying through the manual gateway.
func newTestApp(t *testing.T, dbPath, input string, client *fakeAPI) *testApp {
	t.Helper()

	oldTerm := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = oldTerm })
	capturePrintln(t)

	repos, err := repositories.InitDatabase(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DownloadDir = t.TempDir()

	out := &bytes.Buffer{}
	sink := &memSink{}
	reader := bufio.NewReader(strings.NewReader(input))

	a := newApp(cfg, logging.Discard(), client, repos.Session, sink, reader, out)
	a.gateway = checkout.NewManualGateway(reader, out)
	t.Cleanup(a.watcher.Stop)

	return &testApp{App: a, out: out, client: client, sink: sink}
}

func tenantAPI() *fakeAPI {
	return &fakeAPI{
		login: models.LoginResult{Username: "alice", Role: "TENANT"},
		bills: []models.Bill{{ID: "1", TenantName: "alice", MonthYear: "2025-01", Rent: 1000, Water: 100, Electricity: 200, Miscellaneous: 50}},
	}
}

func adminAPI() *fakeAPI {
	return &fakeAPI{
		login: models.LoginResult{Username: "root", Role: "ADMIN"},
		bills: []models.Bill{{ID: "1", TenantName: "alice", MonthYear: "2025-01", Rent: 1000}},
		paid:  []models.Bill{{ID: "1", TenantName: "alice", MonthYear: "2025-01", Rent: 1000, Water: 100, Electricity: 200, Miscellaneous: 50, Paid: true}},
	}
}

func dbPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "console.db")
}

func TestApp_CommandsRequireLogin(t *testing.T) {
	a := newTestApp(t, dbPath(t), "", tenantAPI())
	ctx := context.Background()

	assert.ErrorIs(t, a.Exec(ctx, "mybills", nil), services.ErrNoSession)
	assert.EqualError(t, a.Exec(ctx, "frobnicate", nil), "Unknown command: frobnicate")
	assert.Equal(t, "(guest)", a.Status())

	help := strings.Join(a.Help(), "\n")
	assert.Contains(t, help, "login - log in")
	assert.NotContains(t, help, "pay <bill id>")
}

func TestApp_LoginOpensHomeAndGuardsAdminViews(t *testing.T) {
	a := newTestApp(t, dbPath(t), "alice\nsecret\n", tenantAPI())
	ctx := context.Background()

	require.NoError(t, a.Exec(ctx, "login", nil))
	assert.Contains(t, a.out.String(), "Welcome, alice!")
	assert.Contains(t, a.out.String(), "1350")
	assert.Contains(t, a.out.String(), "Due")
	assert.Equal(t, "(alice TENANT)", a.Status())
	assert.True(t, a.watcher.Active())

	var rm *services.RoleMismatchError
	require.ErrorAs(t, a.Exec(ctx, "bills", nil), &rm)
	assert.Equal(t, "mybills", rm.Home)

	help := strings.Join(a.Help(), "\n")
	assert.Contains(t, help, "pay <bill id>")
	assert.NotContains(t, help, "addbill")

	err := a.Exec(ctx, "login", nil)
	assert.EqualError(t, err, "Already logged in as alice. Log out first.")
}

func TestApp_PayThroughManualGateway(t *testing.T) {
	a := newTestApp(t, dbPath(t), "alice\nsecret\nPAY-42\n", tenantAPI())
	ctx := context.Background()

	require.NoError(t, a.Exec(ctx, "login", nil))
	require.NoError(t, a.Exec(ctx, "pay", []string{"1"}))

	out := a.out.String()
	assert.Contains(t, out, "Payment for 2025-01: 1350.00 INR for alice")
	assert.Contains(t, out, "Payment PAY-42 received for bill 1.")
	assert.NotContains(t, out, "not shown as paid yet")
	assert.Equal(t, []string{"login", "bills", "markPaid", "logSuccess", "bills"}, a.client.Calls())

	err := a.Exec(ctx, "pay", []string{"1"})
	assert.ErrorIs(t, err, services.ErrAlreadyPaid)
}

func TestApp_PayCancelled(t *testing.T) {
	a := newTestApp(t, dbPath(t), "alice\nsecret\n\n", tenantAPI())
	ctx := context.Background()

	require.NoError(t, a.Exec(ctx, "login", nil))
	require.NoError(t, a.Exec(ctx, "pay", []string{"1"}))

	assert.Contains(t, a.out.String(), "Payment failed: Payment cancelled")
	require.Len(t, a.client.failures, 1)
	assert.Equal(t, "1", a.client.failures[0].Metadata["bill_id"])
	assert.NotContains(t, a.client.Calls(), "markPaid")
}

func TestApp_PayUsage(t *testing.T) {
	a := newTestApp(t, dbPath(t), "alice\nsecret\n", tenantAPI())
	ctx := context.Background()

	require.NoError(t, a.Exec(ctx, "login", nil))
	assert.EqualError(t, a.Exec(ctx, "pay", nil), "Usage: pay <bill id>")
	assert.ErrorIs(t, a.Exec(ctx, "pay", []string{"99"}), services.ErrBillNotFound)
}

func TestApp_LogoutClearsSession(t *testing.T) {
	a := newTestApp(t, dbPath(t), "alice\nsecret\n", tenantAPI())
	ctx := context.Background()

	require.NoError(t, a.Exec(ctx, "login", nil))
	require.NoError(t, a.Exec(ctx, "logout", nil))

	assert.Equal(t, "(guest)", a.Status())
	assert.False(t, a.watcher.Active())
	assert.Nil(t, a.views)
	assert.Empty(t, a.client.token)
	assert.ErrorIs(t, a.Exec(ctx, "mybills", nil), services.ErrNoSession)
}

func TestApp_ExpireEndsSession(t *testing.T) {
	a := newTestApp(t, dbPath(t), "alice\nsecret\n", tenantAPI())
	ctx := context.Background()

	require.NoError(t, a.Exec(ctx, "login", nil))
	a.expire()

	_, ok := a.sessions.Current()
	assert.False(t, ok)
	assert.Nil(t, a.views)
	assert.ErrorIs(t, a.Exec(ctx, "mybills", nil), services.ErrNoSession)

	// A second expiry with nobody logged in is a no-op.
	a.expire()
}

// lapsedSessions reports the session as already past its window on the
// next Touch, the way it looks after the machine was suspended.
type lapsedSessions struct {
	services.SessionService
}

func (l lapsedSessions) Touch(ctx context.Context) error {
	if err := l.End(ctx); err != nil {
		return err
	}
	return services.ErrSessionExpired
}

func TestApp_TouchEndsLapsedSession(t *testing.T) {
	a := newTestApp(t, dbPath(t), "alice\nsecret\n", tenantAPI())
	ctx := context.Background()

	require.NoError(t, a.Exec(ctx, "login", nil))
	require.True(t, a.watcher.Active())
	require.NotNil(t, a.views)

	lines := capturePrintln(t)
	a.sessions = lapsedSessions{a.sessions}
	a.Touch(ctx)

	assert.False(t, a.watcher.Active())
	assert.Nil(t, a.views)
	assert.Contains(t, *lines, "\nSession expired after inactivity. Please log in again.")
	assert.Equal(t, "(guest)", a.Status())
	assert.ErrorIs(t, a.Exec(ctx, "mybills", nil), services.ErrNoSession)
}

func TestApp_DeleteBillNeedsConfirmation(t *testing.T) {
	a := newTestApp(t, dbPath(t), "root\npw\nn\ny\n", adminAPI())
	ctx := context.Background()

	require.NoError(t, a.Exec(ctx, "login", nil))
	assert.Contains(t, a.out.String(), "Totals")

	require.NoError(t, a.Exec(ctx, "delbill", []string{"1"}))
	assert.Contains(t, a.out.String(), "No changes made.")
	assert.Empty(t, a.client.deleted)

	require.NoError(t, a.Exec(ctx, "delbill", []string{"1"}))
	assert.Contains(t, a.out.String(), "Bill deleted.")
	assert.Equal(t, []models.ID{"1"}, a.client.deleted)
}

func TestApp_ExportPaidBills(t *testing.T) {
	a := newTestApp(t, dbPath(t), "root\npw\n", adminAPI())
	ctx := context.Background()

	require.NoError(t, a.Exec(ctx, "login", nil))
	require.NoError(t, a.Exec(ctx, "export", []string{"paid-bills", "2025-01", "csv"}))

	assert.Equal(t, "paid-bills-2025-01.csv", a.sink.name)
	assert.Contains(t, string(a.sink.data), ",,Totals,1000,100,200,50,1350")
	assert.Contains(t, a.out.String(), "Exported to mem://paid-bills-2025-01.csv")

	err := a.Exec(ctx, "export", []string{"paid-bills"})
	assert.Equal(t, "Month required", describeError(err))

	err = a.Exec(ctx, "export", []string{"bills", "pdf"})
	assert.EqualError(t, err, "Format must be csv or xlsx")

	err = a.Exec(ctx, "export", []string{"invoices"})
	assert.ErrorContains(t, err, "Unknown export")
}

func TestApp_ExportUsesLoadedList(t *testing.T) {
	a := newTestApp(t, dbPath(t), "root\npw\n", adminAPI())
	ctx := context.Background()

	require.NoError(t, a.Exec(ctx, "login", nil))
	require.Equal(t, []string{"login", "allBills"}, a.client.Calls())

	a.client.bills = append(a.client.bills, models.Bill{ID: "2", TenantName: "bob", MonthYear: "2025-02", Rent: 900})
	require.NoError(t, a.Exec(ctx, "export", []string{"bills"}))

	assert.Equal(t, []string{"login", "allBills"}, a.client.Calls(), "no refetch for the export")
	assert.Equal(t, "bills.csv", a.sink.name)
	assert.Contains(t, string(a.sink.data), "alice")
	assert.NotContains(t, string(a.sink.data), "bob")
}

func TestApp_ExportPaidBillsWithStoredSession(t *testing.T) {
	path := dbPath(t)
	ctx := context.Background()

	guest := newTestApp(t, path, "", adminAPI())
	_, err := guest.ExportPaidBills(ctx, "2025-01", "xlsx")
	assert.EqualError(t, err, "Please log in first (type 'login').")

	first := newTestApp(t, path, "root\npw\n", adminAPI())
	require.NoError(t, first.Exec(ctx, "login", nil))

	second := newTestApp(t, path, "", adminAPI())
	where, err := second.ExportPaidBills(ctx, "2025-01", "xlsx")
	require.NoError(t, err)
	assert.Equal(t, "mem://paid-bills-2025-01.xlsx", where)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", second.sink.contentType)
}

func TestApp_ExportRequiresAdmin(t *testing.T) {
	path := dbPath(t)
	ctx := context.Background()

	tenant := newTestApp(t, path, "alice\nsecret\n", tenantAPI())
	require.NoError(t, tenant.Exec(ctx, "login", nil))

	again := newTestApp(t, path, "", tenantAPI())
	_, err := again.ExportPaidBills(ctx, "2025-01", "csv")
	assert.ErrorContains(t, err, "ADMIN access required")
}
