package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/common"
	"github.com/dmitrijs2005/rentkeeper/internal/logging"
	"github.com/google/uuid"
)

// newRequestID is a test seam for the X-Request-ID value.
var newRequestID = uuid.NewString

// Options configures an HTTPClient.
type Options struct {
	BaseURL string
	// Prefix is prepended to every path, "/api" by default. Set to "/" for none.
	Prefix  string
	Timeout time.Duration
	// HTTP overrides the underlying client; Timeout is ignored when set.
	HTTP *http.Client
}

var _ Client = (*HTTPClient)(nil)

// HTTPClient implements Client over JSON/HTTP.
type HTTPClient struct {
	base   string
	http   *http.Client
	logger logging.Logger

	mu    sync.RWMutex
	token string
}

// NewHTTPClient validates opts and returns a ready client.
func NewHTTPClient(opts Options, logger logging.Logger) (*HTTPClient, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("api base url is not set")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", base, err)
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "/api"
	}
	prefix = "/" + strings.Trim(prefix, "/")
	if prefix == "/" {
		prefix = ""
	}

	hc := opts.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	return &HTTPClient{base: base + prefix, http: hc, logger: logger}, nil
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// endpoint joins the path segments, escaping each one.
func (c *HTTPClient) endpoint(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.base)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// do sends the request and returns the raw response body for 2xx answers.
func (c *HTTPClient) do(ctx context.Context, method, target, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}

	requestID := newRequestID()
	req.Header.Set(common.RequestIDHeaderName, requestID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.bearer(); tok != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "request failed", "method", method, "url", target, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload map[string]any
		_ = json.Unmarshal(data, &payload)
		herr := newHTTPError(resp.StatusCode, payload)
		c.logger.Warn(ctx, "backend error", "method", method, "url", target, "request_id", requestID,
			"status", resp.StatusCode, "message", herr.Message)
		return nil, herr
	}

	return data, nil
}

// doJSON marshals in (when not nil), sends it and decodes the answer into out (when not nil).
func (c *HTTPClient) doJSON(ctx context.Context, method, target string, in, out any) error {
	var (
		body        io.Reader
		contentType string
	)
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	data, err := c.do(ctx, method, target, contentType, body)
	if err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) getBills(ctx context.Context, target string) ([]models.Bill, error) {
	data, err := c.do(ctx, http.MethodGet, target, "", nil)
	if err != nil {
		return nil, err
	}
	return DecodeBills(data)
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (models.LoginResult, error) {
	var res models.LoginResult
	err := c.doJSON(ctx, http.MethodPost, c.endpoint("users", "login"),
		map[string]string{"username": username, "password": password}, &res)
	return res, err
}

func (c *HTTPClient) StartRegistration(ctx context.Context, req models.RegistrationStart) error {
	return c.doJSON(ctx, http.MethodPost, c.endpoint("users", "registration", "start"), req, nil)
}

func (c *HTTPClient) FinishRegistration(ctx context.Context, req models.RegistrationFinish) error {
	return c.doJSON(ctx, http.MethodPost, c.endpoint("users", "registration", "finish"), req, nil)
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, username string) error {
	return c.doJSON(ctx, http.MethodPost, c.endpoint("users", "forgot-password"),
		map[string]string{"username": username}, nil)
}

func (c *HTTPClient) ResetPassword(ctx context.Context, username, otp, newPassword string) error {
	return c.doJSON(ctx, http.MethodPost, c.endpoint("users", "reset-password"),
		map[string]string{"username": username, "otp": otp, "newPassword": newPassword}, nil)
}

func (c *HTTPClient) TenantBills(ctx context.Context, username string) ([]models.Bill, error) {
	return c.getBills(ctx, c.endpoint("tenants", username))
}

func (c *HTTPClient) AllBills(ctx context.Context) ([]models.Bill, error) {
	return c.getBills(ctx, c.endpoint("tenants", "all"))
}

func (c *HTTPClient) PaidBills(ctx context.Context, monthYear string) ([]models.Bill, error) {
	return c.getBills(ctx, c.endpoint("tenants", "paid-bills", monthYear))
}

func (c *HTTPClient) AddBill(ctx context.Context, bill models.Bill) error {
	return c.doJSON(ctx, http.MethodPost, c.endpoint("tenants", "addBill"), billBody(bill), nil)
}

func (c *HTTPClient) UpdateBill(ctx context.Context, id models.ID, bill models.Bill) error {
	return c.doJSON(ctx, http.MethodPut, c.endpoint("tenants", "updateBill", id.String()), billBody(bill), nil)
}

func (c *HTTPClient) DeleteBill(ctx context.Context, id models.ID) error {
	return c.doJSON(ctx, http.MethodDelete, c.endpoint("tenants", "deleteBill", id.String()), nil, nil)
}

func (c *HTTPClient) MarkPaid(ctx context.Context, id models.ID) error {
	return c.doJSON(ctx, http.MethodPut, c.endpoint("tenants", "markPaid", id.String()), nil, nil)
}

func (c *HTTPClient) LogPaymentSuccess(ctx context.Context, ev models.PaymentSuccess) error {
	return c.doJSON(ctx, http.MethodPost, c.endpoint("tenants", "logSuccess"), ev, nil)
}

func (c *HTTPClient) LogPaymentFailure(ctx context.Context, ev models.PaymentFailure) error {
	return c.doJSON(ctx, http.MethodPost, c.endpoint("tenants", "logFailure"), ev, nil)
}

func (c *HTTPClient) TenantComplaints(ctx context.Context, tenant string) ([]models.Complaint, error) {
	var out []models.Complaint
	err := c.doJSON(ctx, http.MethodGet, c.endpoint("tenants", "complaints", tenant), nil, &out)
	return out, err
}

func (c *HTTPClient) AllComplaints(ctx context.Context) ([]models.Complaint, error) {
	var out []models.Complaint
	err := c.doJSON(ctx, http.MethodGet, c.endpoint("tenants", "complaints"), nil, &out)
	return out, err
}

func (c *HTTPClient) AddComplaint(ctx context.Context, tenant, description string) error {
	return c.doJSON(ctx, http.MethodPost, c.endpoint("tenants", "complaints"),
		map[string]string{"tenantName": tenant, "description": description}, nil)
}

func (c *HTTPClient) CloseComplaint(ctx context.Context, id models.ID, resolutionComment string) error {
	return c.doJSON(ctx, http.MethodPut, c.endpoint("tenants", "complaints", id.String(), "close"),
		map[string]string{"resolutionComment": resolutionComment}, nil)
}

func (c *HTTPClient) ReopenComplaint(ctx context.Context, id models.ID) error {
	return c.doJSON(ctx, http.MethodPut, c.endpoint("tenants", "complaints", id.String(), "reopen"), nil, nil)
}

func (c *HTTPClient) TenantOccupants(ctx context.Context, tenant string) ([]models.Occupant, error) {
	data, err := c.do(ctx, http.MethodGet, c.endpoint("tenants", "occupants", tenant), "", nil)
	if err != nil {
		return nil, err
	}
	return decodeOccupants(data)
}

func (c *HTTPClient) AllOccupants(ctx context.Context) ([]models.Occupant, error) {
	data, err := c.do(ctx, http.MethodGet, c.endpoint("admin", "occupants"), "", nil)
	if err != nil {
		return nil, err
	}
	return decodeOccupants(data)
}

func (c *HTTPClient) AddOccupant(ctx context.Context, tenant string, up models.OccupantUpload) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("name", up.Name); err != nil {
		return err
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, up.FileName))
	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := part.Write(up.Data); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	_, err = c.do(ctx, http.MethodPost, c.endpoint("tenants", "occupants", tenant), mw.FormDataContentType(), &buf)
	return err
}

func (c *HTTPClient) DeleteOccupant(ctx context.Context, id models.ID) error {
	return c.doJSON(ctx, http.MethodDelete, c.endpoint("tenants", "occupants", id.String()), nil, nil)
}

func (c *HTTPClient) VerifyOccupant(ctx context.Context, id models.ID) error {
	return c.doJSON(ctx, http.MethodPatch, c.endpoint("tenants", "occupants", "verify", id.String()), nil, nil)
}

func (c *HTTPClient) Users(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := c.doJSON(ctx, http.MethodGet, c.endpoint("users", "all"), nil, &out)
	return out, err
}

func (c *HTTPClient) AddUser(ctx context.Context, u models.User) error {
	return c.doJSON(ctx, http.MethodPost, c.endpoint("users", "add"), u, nil)
}

func (c *HTTPClient) UpdateUser(ctx context.Context, id models.ID, u models.User) error {
	return c.doJSON(ctx, http.MethodPut, c.endpoint("users", "update", id.String()), u, nil)
}

func (c *HTTPClient) DeleteUser(ctx context.Context, id models.ID) error {
	return c.doJSON(ctx, http.MethodDelete, c.endpoint("users", "delete", id.String()), nil, nil)
}

func (c *HTTPClient) SecurityDeposits(ctx context.Context, tenant string) ([]models.SecurityDeposit, error) {
	var out []models.SecurityDeposit
	err := c.doJSON(ctx, http.MethodGet, c.endpoint("tenants", "securityDeposits", tenant), nil, &out)
	return out, err
}

func (c *HTTPClient) AddSecurityDeposit(ctx context.Context, tenant string, d models.SecurityDeposit) error {
	return c.doJSON(ctx, http.MethodPost, c.endpoint("tenants", "securityDeposits", tenant), d, nil)
}

func (c *HTTPClient) MoveInDeposit(ctx context.Context, username string) (models.MoveInDeposit, error) {
	var out models.MoveInDeposit
	target := c.endpoint("users", "me", "movein-deposit") + "?username=" + url.QueryEscape(username)
	err := c.doJSON(ctx, http.MethodGet, target, nil, &out)
	return out, err
}

func (c *HTTPClient) UpdateMoveInDeposit(ctx context.Context, id models.ID, d models.MoveInDeposit) error {
	return c.doJSON(ctx, http.MethodPut, c.endpoint("users", id.String(), "movein-deposit"), d, nil)
}

// billBody is the JSON the bill endpoints accept; the id travels in the path.
func billBody(b models.Bill) map[string]any {
	return map[string]any{
		"tenantName":    b.TenantName,
		"monthYear":     b.MonthYear,
		"rent":          b.Rent,
		"water":         b.Water,
		"electricity":   b.Electricity,
		"miscellaneous": b.Miscellaneous,
		"paid":          b.Paid,
	}
}

// decodeOccupants accepts either a plain array or a page object {content: [...]}.
func decodeOccupants(data []byte) ([]models.Occupant, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []models.Occupant{}, nil
	}

	if data[0] == '[' {
		var out []models.Occupant
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("decode occupants: %w", err)
		}
		return out, nil
	}

	var page struct {
		Content []models.Occupant `json:"content"`
	}
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("decode occupants: %w", err)
	}
	if page.Content == nil {
		return []models.Occupant{}, nil
	}
	return page.Content, nil
}
