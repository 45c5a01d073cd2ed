package checkout

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
)

// ManualGateway records a payment made outside the console: the user types
// the payment reference, an empty answer cancels.
type ManualGateway struct {
	reader *bufio.Reader
	w      io.Writer
}

func NewManualGateway(reader *bufio.Reader, w io.Writer) *ManualGateway {
	return &ManualGateway{reader: reader, w: w}
}

func (g *ManualGateway) Settle(ctx context.Context, req models.PaymentRequest) (models.PaymentResult, error) {
	if err := ctx.Err(); err != nil {
		return models.PaymentResult{}, err
	}

	_, err := fmt.Fprintf(g.w, "%s: %s %s for %s\nPayment reference (empty to cancel)\n> ",
		req.Description, FormatMinor(req.AmountMinor), req.Currency, req.PayerName)
	if err != nil {
		return models.PaymentResult{}, err
	}

	line, err := g.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return models.PaymentResult{}, err
	}

	ref := strings.TrimSpace(line)
	if ref == "" {
		return cancelled(), nil
	}
	return models.PaymentResult{OK: true, PaymentID: ref}, nil
}

func cancelled() models.PaymentResult {
	return models.PaymentResult{Failure: models.PaymentFailure{
		Code:        "PAYMENT_CANCELLED",
		Description: "Payment cancelled",
		Source:      "customer",
		Reason:      "payment_cancelled",
	}}
}

// FormatMinor renders an amount in minor units with two decimals.
func FormatMinor(minor int64) string {
	sign := ""
	if minor < 0 {
		sign, minor = "-", -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
