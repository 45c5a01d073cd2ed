// Package checkout provides the payment gateways used by the bill ledger.
//
// WebGateway hosts a small local page that loads the hosted checkout widget
// in the user's browser and receives the widget's success or failure
// callback. ManualGateway asks for a payment reference on the terminal and
// is meant for offline desks and tests.
package checkout

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/logging"
	"github.com/dmitrijs2005/rentkeeper/internal/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var (
	ErrCheckoutTimeout = errors.New("checkout timed out")
	ErrNotStarted      = errors.New("checkout server is not running")
)

// Options configure the local checkout page.
type Options struct {
	// Addr is the listen address, e.g. "127.0.0.1:8089".
	Addr string
	// PublicURL is the base URL announced to the user. Defaults to http://Addr.
	PublicURL string
	// KeyID is the publishable key of the checkout widget.
	KeyID string
	// Timeout bounds how long Settle waits for a callback; zero waits for ctx.
	Timeout time.Duration
	// MerchantName is shown in the widget header.
	MerchantName string
}

type pendingPayment struct {
	req    models.PaymentRequest
	result chan models.PaymentResult
}

type successBody struct {
	PaymentID string `json:"paymentId" validate:"required"`
}

// WebGateway is a Gateway backed by a fiber app on a local port.
type WebGateway struct {
	opts     Options
	logger   logging.Logger
	announce func(url string)
	app      *fiber.App
	newToken func() string

	mu      sync.Mutex
	pending map[string]*pendingPayment
	ln      net.Listener
}

// NewWebGateway builds the gateway. announce is called with the page URL
// the user has to open for each payment.
func NewWebGateway(opts Options, logger logging.Logger, announce func(url string)) *WebGateway {
	if opts.MerchantName == "" {
		opts.MerchantName = "Rent Payment"
	}
	g := &WebGateway{
		opts:     opts,
		logger:   logger,
		announce: announce,
		newToken: uuid.NewString,
		pending:  make(map[string]*pendingPayment),
	}

	g.app = fiber.New(fiber.Config{
		AppName:               "rentkeeper checkout",
		DisableStartupMessage: true,
	})
	g.setupRoutes()
	return g
}

func (g *WebGateway) setupRoutes() {
	g.app.Get("/checkout/:token", g.page)
	g.app.Post("/checkout/:token/success", g.success)
	g.app.Post("/checkout/:token/failure", g.failure)
}

// Start binds the listen address and serves in the background.
func (g *WebGateway) Start() error {
	ln, err := net.Listen("tcp", g.opts.Addr)
	if err != nil {
		return fmt.Errorf("checkout listen %s: %w", g.opts.Addr, err)
	}

	g.mu.Lock()
	g.ln = ln
	g.mu.Unlock()

	go func() {
		if err := g.app.Listener(ln); err != nil {
			g.logger.Error(context.Background(), "checkout server stopped", "error", err)
		}
	}()
	g.logger.Info(context.Background(), "checkout server listening", "addr", ln.Addr().String())
	return nil
}

// Shutdown stops the server. Pending payments are answered as failed.
func (g *WebGateway) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	for token, p := range g.pending {
		p.result <- models.PaymentResult{Failure: models.PaymentFailure{
			Code:        "CHECKOUT_CLOSED",
			Description: "Checkout was closed before the payment completed",
			Source:      "client",
		}}
		delete(g.pending, token)
	}
	started := g.ln != nil
	g.ln = nil
	g.mu.Unlock()

	if !started {
		return nil
	}
	return g.app.ShutdownWithContext(ctx)
}

// App exposes the fiber app, mainly for tests.
func (g *WebGateway) App() *fiber.App {
	return g.app
}

func (g *WebGateway) baseURL() string {
	if g.opts.PublicURL != "" {
		return strings.TrimRight(g.opts.PublicURL, "/")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ln != nil {
		return "http://" + g.ln.Addr().String()
	}
	return "http://" + g.opts.Addr
}

// Settle registers a one-shot checkout page and waits for its callback.
func (g *WebGateway) Settle(ctx context.Context, req models.PaymentRequest) (models.PaymentResult, error) {
	token := g.newToken()
	p := &pendingPayment{req: req, result: make(chan models.PaymentResult, 1)}

	g.mu.Lock()
	g.pending[token] = p
	g.mu.Unlock()
	defer g.forget(token)

	url := g.baseURL() + "/checkout/" + token
	g.logger.Info(ctx, "checkout page ready", "bill_id", req.BillID, "url", url)
	if g.announce != nil {
		g.announce(url)
	}

	var timeout <-chan time.Time
	if g.opts.Timeout > 0 {
		t := time.NewTimer(g.opts.Timeout)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case res := <-p.result:
		return res, nil
	case <-timeout:
		return models.PaymentResult{}, ErrCheckoutTimeout
	case <-ctx.Done():
		return models.PaymentResult{}, ctx.Err()
	}
}

func (g *WebGateway) forget(token string) {
	g.mu.Lock()
	delete(g.pending, token)
	g.mu.Unlock()
}

func (g *WebGateway) lookup(token string) (*pendingPayment, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.pending[token]
	return p, ok
}

// deliver hands the result to the waiting Settle once; later callbacks for
// the same token find nothing.
func (g *WebGateway) deliver(token string, res models.PaymentResult) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.pending[token]
	if !ok {
		return false
	}
	delete(g.pending, token)
	p.result <- res
	return true
}

func unknownCheckout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "Unknown or expired checkout",
	})
}

func (g *WebGateway) page(c *fiber.Ctx) error {
	token := c.Params("token")
	p, ok := g.lookup(token)
	if !ok {
		return unknownCheckout(c)
	}

	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, pageData{
		Key:         g.opts.KeyID,
		Amount:      p.req.AmountMinor,
		Currency:    p.req.Currency,
		Merchant:    g.opts.MerchantName,
		Description: p.req.Description,
		PayerName:   p.req.PayerName,
		SuccessURL:  "/checkout/" + token + "/success",
		FailureURL:  "/checkout/" + token + "/failure",
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to render checkout",
		})
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (g *WebGateway) success(c *fiber.Ctx) error {
	token := c.Params("token")
	if _, ok := g.lookup(token); !ok {
		return unknownCheckout(c)
	}

	var body successBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validation.ValidateStruct(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if !g.deliver(token, models.PaymentResult{OK: true, PaymentID: body.PaymentID}) {
		return unknownCheckout(c)
	}
	return c.JSON(fiber.Map{"status": "paid"})
}

func (g *WebGateway) failure(c *fiber.Ctx) error {
	token := c.Params("token")
	if _, ok := g.lookup(token); !ok {
		return unknownCheckout(c)
	}

	var body models.PaymentFailure
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if body.Description == "" {
		body.Description = "Payment failed"
	}

	if !g.deliver(token, models.PaymentResult{Failure: body}) {
		return unknownCheckout(c)
	}
	return c.JSON(fiber.Map{"status": "failed"})
}
