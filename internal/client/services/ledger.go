package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/rentkeeper/internal/client/api"
	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/common"
	"github.com/dmitrijs2005/rentkeeper/internal/logging"
)

var (
	ErrPaymentInFlight = errors.New("payment already in progress for this bill")
	ErrAlreadyPaid     = errors.New("bill is already paid")
	ErrBillNotFound    = errors.New("bill not found")
)

// Gateway settles one payment through an external checkout. It returns a
// non-nil error only when the checkout could not be run at all; a declined
// payment is a PaymentResult with OK=false.
type Gateway interface {
	Settle(ctx context.Context, req models.PaymentRequest) (models.PaymentResult, error)
}

// PayState is the per-bill checkout state. Settled and Failed are outcomes
// reported by Pay; the stored state always returns to PayIdle.
type PayState string

const (
	PayIdle    PayState = "idle"
	PayPaying  PayState = "paying"
	PaySettled PayState = "settled"
	PayFailed  PayState = "failed"
)

// PaymentOutcome describes how one Pay call ended.
type PaymentOutcome struct {
	State     PayState
	PaymentID string
	// Failure is set when State is PayFailed.
	Failure models.PaymentFailure
	// Confirmed reports whether the re-fetched list shows the bill as paid.
	Confirmed bool
}

// Ledger is the tenant's bill list together with the per-bill checkout
// guard. It is safe for concurrent use.
type Ledger struct {
	client  api.Client
	gateway Gateway
	logger  logging.Logger
	tenant  string

	mu     sync.Mutex
	bills  []models.Bill
	paying map[models.ID]struct{}
}

func NewLedger(client api.Client, gateway Gateway, logger logging.Logger, tenant string) *Ledger {
	return &Ledger{
		client:  client,
		gateway: gateway,
		logger:  logger,
		tenant:  tenant,
		paying:  make(map[models.ID]struct{}),
	}
}

// Load re-fetches the tenant's bills. On failure the previous list is kept.
func (l *Ledger) Load(ctx context.Context) ([]models.Bill, error) {
	bills, err := l.client.TenantBills(ctx, l.tenant)
	if err != nil {
		return l.Bills(), fmt.Errorf("load bills: %w", err)
	}

	l.mu.Lock()
	l.bills = bills
	l.mu.Unlock()

	return l.Bills(), nil
}

// Bills returns a copy of the loaded list in backend order.
func (l *Ledger) Bills() []models.Bill {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Bill, len(l.bills))
	copy(out, l.bills)
	return out
}

func (l *Ledger) Totals() models.BillTotals {
	return models.SumBills(l.Bills())
}

// State reports whether a checkout for id is running.
func (l *Ledger) State(id models.ID) PayState {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.paying[id]; ok {
		return PayPaying
	}
	return PayIdle
}

// Pay runs the checkout for one bill: Idle -> Paying -> Settled|Failed -> Idle.
//
// After a successful checkout the bill is marked paid, the success is logged
// and the list is re-fetched; the three calls are independent and their
// errors are joined into the returned error. A failed checkout is logged to
// the backend. Either way the bill leaves the Paying state before Pay returns.
func (l *Ledger) Pay(ctx context.Context, id models.ID) (PaymentOutcome, error) {
	bill, err := l.begin(id)
	if err != nil {
		return PaymentOutcome{State: PayIdle}, err
	}
	defer l.finish(id)

	req := models.PaymentRequest{
		BillID:      bill.ID,
		AmountMinor: bill.AmountMinor(),
		Currency:    common.DefaultCurrency,
		Description: "Payment for " + bill.MonthYear,
		PayerName:   l.tenant,
	}
	l.logger.Info(ctx, "checkout started", "bill_id", id, "amount_minor", req.AmountMinor)

	res, err := l.gateway.Settle(ctx, req)

	// The outcome is already decided: record it even if the caller gave up.
	ctx = context.WithoutCancel(ctx)
	if err != nil {
		res = models.PaymentResult{Failure: models.PaymentFailure{
			Code:        "CHECKOUT_UNAVAILABLE",
			Description: "Checkout could not be completed",
			Source:      "client",
			Reason:      err.Error(),
		}}
		l.logger.Warn(ctx, "checkout did not complete", "bill_id", id, "error", err)
	}

	if !res.OK {
		return l.failed(ctx, id, res.Failure), nil
	}
	return l.settled(ctx, id, res.PaymentID)
}

func (l *Ledger) begin(id models.ID) (models.Bill, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.paying[id]; ok {
		return models.Bill{}, ErrPaymentInFlight
	}

	for _, b := range l.bills {
		if b.ID != id {
			continue
		}
		if b.Paid {
			return models.Bill{}, ErrAlreadyPaid
		}
		l.paying[id] = struct{}{}
		return b, nil
	}
	return models.Bill{}, ErrBillNotFound
}

func (l *Ledger) finish(id models.ID) {
	l.mu.Lock()
	delete(l.paying, id)
	l.mu.Unlock()
}

func (l *Ledger) settled(ctx context.Context, id models.ID, paymentID string) (PaymentOutcome, error) {
	out := PaymentOutcome{State: PaySettled, PaymentID: paymentID}

	var errs []error
	if err := l.client.MarkPaid(ctx, id); err != nil {
		l.logger.Error(ctx, "mark paid failed", "bill_id", id, "payment_id", paymentID, "error", err)
		errs = append(errs, fmt.Errorf("mark paid: %w", err))
	}
	if err := l.client.LogPaymentSuccess(ctx, models.PaymentSuccess{TenantName: l.tenant, PaymentID: paymentID}); err != nil {
		l.logger.Warn(ctx, "log payment success failed", "bill_id", id, "payment_id", paymentID, "error", err)
		errs = append(errs, fmt.Errorf("log success: %w", err))
	}

	bills, err := l.Load(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	for _, b := range bills {
		if b.ID == id {
			out.Confirmed = b.Paid
		}
	}

	l.logger.Info(ctx, "checkout settled", "bill_id", id, "payment_id", paymentID, "confirmed", out.Confirmed)
	return out, errors.Join(errs...)
}

func (l *Ledger) failed(ctx context.Context, id models.ID, failure models.PaymentFailure) PaymentOutcome {
	if failure.Description == "" {
		failure.Description = "Payment failed"
	}
	meta := make(map[string]string, len(failure.Metadata)+1)
	for k, v := range failure.Metadata {
		meta[k] = v
	}
	meta["bill_id"] = id.String()
	failure.Metadata = meta

	if err := l.client.LogPaymentFailure(ctx, failure); err != nil {
		l.logger.Warn(ctx, "log payment failure failed", "bill_id", id, "error", err)
	}

	l.logger.Info(ctx, "checkout failed", "bill_id", id, "code", failure.Code, "description", failure.Description)
	return PaymentOutcome{State: PayFailed, Failure: failure}
}
