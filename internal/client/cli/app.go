package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/client/api"
	"github.com/dmitrijs2005/rentkeeper/internal/client/checkout"
	"github.com/dmitrijs2005/rentkeeper/internal/client/config"
	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/client/repositories"
	"github.com/dmitrijs2005/rentkeeper/internal/client/repositories/session"
	"github.com/dmitrijs2005/rentkeeper/internal/client/services"
	"github.com/dmitrijs2005/rentkeeper/internal/logging"
	"github.com/dmitrijs2005/rentkeeper/internal/report"
)

// App is the rent console: one session, the views it opened and the
// gateway and export sink they use.
type App struct {
	config *config.Config
	logger logging.Logger
	reader *bufio.Reader
	out    io.Writer

	repos    *repositories.Repositories
	client   api.Client
	sessions services.SessionService
	auth     services.AuthService
	deposits *services.DepositService
	reports  *services.ReportService
	watcher  *services.InactivityWatcher

	gateway services.Gateway
	web     *checkout.WebGateway
	sink    report.Sink

	commands []Command

	mu    sync.Mutex
	views *views
}

// views holds the per-session screens. They are rebuilt after every login
// so nothing loaded for one user is shown to the next.
type views struct {
	owner string

	ledger     *services.Ledger
	complaints *services.TenantComplaints
	occupants  *services.TenantOccupants

	bills     *services.View[models.Bill]
	users     *services.View[models.User]
	board     *services.ComplaintsBoard
	occupancy *services.OccupantsBoard
}

// NewApp opens the local store, builds the API client and chooses the
// checkout gateway and export sink from c.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, c.LogLevel)

	repos, err := repositories.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	client, err := api.NewHTTPClient(api.Options{
		BaseURL: c.APIBaseURL,
		Prefix:  c.APIPrefix,
		Timeout: c.RequestTimeout,
	}, logger)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	sink, err := newSink(ctx, c)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	a := newApp(c, logger, client, repos.Session, sink, bufio.NewReader(os.Stdin), os.Stdout)
	a.repos = repos

	if c.CheckoutMode == config.CheckoutManual {
		a.gateway = checkout.NewManualGateway(a.reader, a.out)
	} else {
		a.web = checkout.NewWebGateway(checkout.Options{
			Addr:      c.CheckoutAddr,
			PublicURL: c.CheckoutPublicURL,
			KeyID:     c.CheckoutKey,
			Timeout:   c.CheckoutTimeout,
		}, logger, a.announceCheckout)
		a.gateway = a.web
	}

	return a, nil
}

// newApp wires the services around already built dependencies.
func newApp(c *config.Config, logger logging.Logger, client api.Client, repo session.Repository,
	sink report.Sink, reader *bufio.Reader, out io.Writer) *App {
	a := &App{
		config: c,
		logger: logger,
		reader: reader,
		out:    out,
		client: client,
		sink:   sink,
	}

	a.sessions = services.NewSessionService(repo, client, logger, c.InactivityWindow)
	a.auth = services.NewAuthService(client, a.sessions, logger)
	a.deposits = services.NewDepositService(client)
	a.reports = services.NewReportService(client)
	a.watcher = services.NewInactivityWatcher(c.InactivityWindow, a.expire)
	a.commands = a.commandTable()
	return a
}

func newSink(ctx context.Context, c *config.Config) (report.Sink, error) {
	if c.ExportSink != config.SinkS3 {
		return report.FileSink{Dir: c.ExportDir}, nil
	}
	return report.NewS3Sink(ctx, report.S3Options{
		Region:    c.S3.Region,
		Endpoint:  c.S3.Endpoint,
		AccessKey: c.S3.AccessKey,
		SecretKey: c.S3.SecretKey,
		Bucket:    c.S3.Bucket,
		Prefix:    c.S3.Prefix,
	})
}

func (a *App) announceCheckout(url string) {
	fmt.Fprintf(a.out, "Open %s in your browser to complete the payment.\n", url)
}

// Run restores a stored session, starts the checkout page and runs the REPL
// until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if a.web != nil {
		if err := a.web.Start(); err != nil {
			a.logger.Error(ctx, "checkout page unavailable", "addr", a.config.CheckoutAddr, "error", err)
			fmt.Fprintln(a.out, "Online checkout is unavailable; bills cannot be paid in this run.")
		}
	}

	printlnFn("Welcome to the rent console (type 'help' for commands)")
	a.restore(ctx)

	runREPL(ctx, a, a.reader)
	return nil
}

// restore resumes a session persisted by a previous run.
func (a *App) restore(ctx context.Context) {
	sess, err := a.sessions.Init(ctx)
	switch {
	case err == nil:
		a.watcher.Start()
		printlnFn(fmt.Sprintf("Logged in as %s. Home view: %s", sess.Username, services.HomeFor(sess.Role)))
	case errors.Is(err, services.ErrSessionExpired):
		printlnFn(describeError(err))
	case errors.Is(err, services.ErrNoSession):
	default:
		a.logger.Error(ctx, "could not read stored session", "error", err)
	}
}

// Close stops the watcher and the checkout page and closes the local store.
func (a *App) Close() {
	a.watcher.Stop()

	if a.web != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.web.Shutdown(ctx); err != nil {
			a.logger.Warn(ctx, "checkout shutdown", "error", err)
		}
	}

	if a.repos != nil {
		if err := a.repos.Close(); err != nil {
			a.logger.Warn(context.Background(), "closing database", "error", err)
		}
	}
}

// expire runs on the watcher goroutine when the window passes without input.
func (a *App) expire() {
	ctx := context.Background()
	if _, ok := a.sessions.Current(); !ok {
		return
	}
	if err := a.sessions.End(ctx); err != nil {
		a.logger.Warn(ctx, "clearing expired session", "error", err)
	}
	a.expired(ctx)
}

// expired drops per-session state once the session is gone and tells the user.
func (a *App) expired(ctx context.Context) {
	a.resetViews()
	a.logger.Info(ctx, "session expired after inactivity", "window", a.sessions.Window())
	printlnFn("\nSession expired after inactivity. Please log in again.")
}

// Touch records activity for the logged-in user. A session that lapsed
// without the watcher noticing ends here, before the command runs.
func (a *App) Touch(ctx context.Context) {
	if _, ok := a.sessions.Current(); !ok {
		return
	}
	err := a.sessions.Touch(ctx)
	switch {
	case errors.Is(err, services.ErrSessionExpired):
		a.watcher.Stop()
		a.expired(ctx)
		return
	case err != nil:
		a.logger.Warn(ctx, "recording activity", "error", err)
	}
	a.watcher.Reset()
}

// Status is shown in the prompt.
func (a *App) Status() string {
	sess, ok := a.sessions.Current()
	if !ok {
		return "(guest)"
	}
	return fmt.Sprintf("(%s %s)", sess.Username, sess.Role)
}

// state returns the views of the logged-in user, building them on first use.
func (a *App) state(sess models.Session) *views {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.views != nil && a.views.owner == sess.Username {
		return a.views
	}

	log := logging.ForUser(a.logger, sess.Username, string(sess.Role))
	a.views = &views{
		owner:      sess.Username,
		ledger:     services.NewLedger(a.client, a.gateway, log, sess.Username),
		complaints: services.NewTenantComplaints(a.client, log, sess.Username),
		occupants: services.NewTenantOccupants(a.client, log, sess.Username,
			a.config.MaxDocumentSize, a.config.DownloadDir),
		bills:     services.NewBillsView(a.client),
		users:     services.NewUsersView(a.client),
		board:     services.NewComplaintsBoard(a.client),
		occupancy: services.NewOccupantsBoard(a.client, a.config.DownloadDir),
	}
	return a.views
}

func (a *App) resetViews() {
	a.mu.Lock()
	a.views = nil
	a.mu.Unlock()
}

func (a *App) confirm(prompt string) bool {
	return Confirm(a.reader, prompt, a.out)
}
