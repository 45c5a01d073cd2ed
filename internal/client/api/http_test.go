package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method  string
	path    string
	rawPath string
	query   string
	header  http.Header
	body    []byte
}

// newTestClient starts a backend answering every call with status/body and
// records the last request it saw.
func newTestClient(t *testing.T, status int, body string) (*HTTPClient, *recorded) {
	t.Helper()
	rec := &recorded{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.rawPath = r.URL.EscapedPath()
		rec.query = r.URL.RawQuery
		rec.header = r.Header.Clone()
		rec.body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(ts.Close)

	c, err := NewHTTPClient(Options{BaseURL: ts.URL + "/"}, logging.Discard())
	require.NoError(t, err)
	return c, rec
}

func TestNewHTTPClient(t *testing.T) {
	t.Run("missing base", func(t *testing.T) {
		_, err := NewHTTPClient(Options{}, logging.Discard())
		require.Error(t, err)
	})

	t.Run("prefix handling", func(t *testing.T) {
		tests := []struct {
			prefix string
			want   string
		}{
			{prefix: "", want: "http://h/api/x"},
			{prefix: "v2/", want: "http://h/v2/x"},
			{prefix: "/", want: "http://h/x"},
		}
		for _, tt := range tests {
			c, err := NewHTTPClient(Options{BaseURL: "http://h/", Prefix: tt.prefix}, logging.Discard())
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.endpoint("x"))
		}
	})
}

func TestHTTPClient_HeadersAndTenantBills(t *testing.T) {
	orig := newRequestID
	newRequestID = func() string { return "req-1" }
	t.Cleanup(func() { newRequestID = orig })

	c, rec := newTestClient(t, http.StatusOK,
		`[{"id":1,"tenantName":"a b","monthYear":"2025-01","rent":1000,"water":100,"electricity":200,"misc":50}]`)
	c.SetToken("tok")

	bills, err := c.TenantBills(context.Background(), "a b")
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, 50.0, bills[0].Miscellaneous)

	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/api/tenants/a%20b", rec.rawPath)
	assert.Equal(t, "req-1", rec.header.Get("X-Request-ID"))
	assert.Equal(t, "Bearer tok", rec.header.Get("Authorization"))

	c.SetToken("")
	_, err = c.TenantBills(context.Background(), "a")
	require.NoError(t, err)
	assert.Empty(t, rec.header.Get("Authorization"))
}

func TestHTTPClient_Endpoints(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		call       func(c *HTTPClient) error
		wantMethod string
		wantPath   string
		wantBody   map[string]any
	}{
		{
			name:       "login",
			call:       func(c *HTTPClient) error { _, err := c.Login(ctx, "u", "p"); return err },
			wantMethod: http.MethodPost, wantPath: "/api/users/login",
			wantBody: map[string]any{"username": "u", "password": "p"},
		},
		{
			name:       "mark paid",
			call:       func(c *HTTPClient) error { return c.MarkPaid(ctx, "7") },
			wantMethod: http.MethodPut, wantPath: "/api/tenants/markPaid/7",
		},
		{
			name: "log success",
			call: func(c *HTTPClient) error {
				return c.LogPaymentSuccess(ctx, models.PaymentSuccess{TenantName: "a", PaymentID: "pay_1"})
			},
			wantMethod: http.MethodPost, wantPath: "/api/tenants/logSuccess",
			wantBody: map[string]any{"tenantName": "a", "paymentId": "pay_1"},
		},
		{
			name: "log failure",
			call: func(c *HTTPClient) error {
				return c.LogPaymentFailure(ctx, models.PaymentFailure{Code: "BAD_REQUEST_ERROR", Description: "declined"})
			},
			wantMethod: http.MethodPost, wantPath: "/api/tenants/logFailure",
			wantBody: map[string]any{"code": "BAD_REQUEST_ERROR", "description": "declined"},
		},
		{
			name: "update bill",
			call: func(c *HTTPClient) error {
				return c.UpdateBill(ctx, "3", models.Bill{ID: "3", TenantName: "a", MonthYear: "2025-01", Rent: 10})
			},
			wantMethod: http.MethodPut, wantPath: "/api/tenants/updateBill/3",
			wantBody: map[string]any{
				"tenantName": "a", "monthYear": "2025-01", "rent": 10.0, "water": 0.0,
				"electricity": 0.0, "miscellaneous": 0.0, "paid": false,
			},
		},
		{
			name:       "delete bill",
			call:       func(c *HTTPClient) error { return c.DeleteBill(ctx, "3") },
			wantMethod: http.MethodDelete, wantPath: "/api/tenants/deleteBill/3",
		},
		{
			name:       "close complaint",
			call:       func(c *HTTPClient) error { return c.CloseComplaint(ctx, "5", "fixed") },
			wantMethod: http.MethodPut, wantPath: "/api/tenants/complaints/5/close",
			wantBody: map[string]any{"resolutionComment": "fixed"},
		},
		{
			name:       "reopen complaint",
			call:       func(c *HTTPClient) error { return c.ReopenComplaint(ctx, "5") },
			wantMethod: http.MethodPut, wantPath: "/api/tenants/complaints/5/reopen",
		},
		{
			name:       "verify occupant",
			call:       func(c *HTTPClient) error { return c.VerifyOccupant(ctx, "9") },
			wantMethod: http.MethodPatch, wantPath: "/api/tenants/occupants/verify/9",
		},
		{
			name:       "delete user",
			call:       func(c *HTTPClient) error { return c.DeleteUser(ctx, "2") },
			wantMethod: http.MethodDelete, wantPath: "/api/users/delete/2",
		},
		{
			name:       "reset password",
			call:       func(c *HTTPClient) error { return c.ResetPassword(ctx, "u", "123456", "new") },
			wantMethod: http.MethodPost, wantPath: "/api/users/reset-password",
			wantBody: map[string]any{"username": "u", "otp": "123456", "newPassword": "new"},
		},
		{
			name: "add security deposit",
			call: func(c *HTTPClient) error {
				return c.AddSecurityDeposit(ctx, "alice", models.SecurityDeposit{TenantName: "alice", Amount: 5000})
			},
			wantMethod: http.MethodPost, wantPath: "/api/tenants/securityDeposits/alice",
			wantBody: map[string]any{"tenantName": "alice", "amount": 5000.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestClient(t, http.StatusOK, "")
			require.NoError(t, tt.call(c))

			assert.Equal(t, tt.wantMethod, rec.method)
			assert.Equal(t, tt.wantPath, rec.path)
			if tt.wantBody == nil {
				assert.Empty(t, rec.body)
				return
			}
			assert.Equal(t, "application/json", rec.header.Get("Content-Type"))
			var got map[string]any
			require.NoError(t, json.Unmarshal(rec.body, &got))
			assert.Equal(t, tt.wantBody, got)
		})
	}
}

func TestHTTPClient_MoveInDepositQuery(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `{"id":4,"username":"a&b","depositAmount":15000}`)

	d, err := c.MoveInDeposit(context.Background(), "a&b")
	require.NoError(t, err)
	assert.Equal(t, "/api/users/me/movein-deposit", rec.path)
	assert.Equal(t, "username=a%26b", rec.query)
	assert.Equal(t, 15000.0, d.DepositAmount)
	assert.Equal(t, models.ID("4"), d.ID)
}

func TestHTTPClient_Occupants(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		c, rec := newTestClient(t, http.StatusOK, `[{"id":1,"name":"Bob","verified":true}]`)
		got, err := c.TenantOccupants(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, "/api/tenants/occupants/alice", rec.path)
		require.Len(t, got, 1)
		assert.True(t, got[0].Verified)
	})

	t.Run("page object", func(t *testing.T) {
		c, rec := newTestClient(t, http.StatusOK, `{"content":[{"id":1,"name":"Bob"},{"id":2,"name":"Eve"}],"totalElements":2}`)
		got, err := c.AllOccupants(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "/api/admin/occupants", rec.path)
		assert.Len(t, got, 2)
	})

	t.Run("page object without content", func(t *testing.T) {
		c, _ := newTestClient(t, http.StatusOK, `{}`)
		got, err := c.AllOccupants(context.Background())
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestHTTPClient_AddOccupantMultipart(t *testing.T) {
	var (
		name, fileName, partType string
		fileData                 []byte
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		name = r.FormValue("name")
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		fileName = hdr.Filename
		partType = hdr.Header.Get("Content-Type")
		fileData, _ = io.ReadAll(f)
		w.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	c, err := NewHTTPClient(Options{BaseURL: ts.URL}, logging.Discard())
	require.NoError(t, err)

	err = c.AddOccupant(context.Background(), "alice", models.OccupantUpload{
		Name: "Bob", FileName: "aadhar.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Bob", name)
	assert.Equal(t, "aadhar.pdf", fileName)
	assert.Equal(t, "application/pdf", partType)
	assert.Equal(t, []byte("%PDF-1.4"), fileData)
}

func TestHTTPClient_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantBackend bool
		wantIs      error
	}{
		{name: "error field", status: http.StatusBadRequest, body: `{"error":"Bill exists","message":"ignored"}`, wantMessage: "Bill exists", wantBackend: true},
		{name: "message field", status: http.StatusConflict, body: `{"message":"Duplicate"}`, wantMessage: "Duplicate", wantBackend: true},
		{name: "status text", status: http.StatusNotFound, body: ``, wantMessage: "Not Found"},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{}`, wantMessage: "Unauthorized", wantIs: ErrUnauthorized},
		{name: "registration incomplete", status: http.StatusForbidden, body: `{"error":"Registration incomplete for user"}`,
			wantMessage: "Registration incomplete for user", wantBackend: true, wantIs: ErrRegistrationIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, tt.status, tt.body)
			_, err := c.AllBills(ctx)
			require.Error(t, err)

			var he *HTTPError
			require.True(t, errors.As(err, &he))
			assert.Equal(t, tt.status, he.Status)
			assert.Equal(t, tt.wantMessage, he.Message)
			assert.Equal(t, tt.wantBackend, he.FromBackend)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}

	t.Run("network error", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		c, err := NewHTTPClient(Options{BaseURL: ts.URL}, logging.Discard())
		require.NoError(t, err)

		_, err = c.AllBills(ctx)
		require.ErrorIs(t, err, ErrNetwork)
	})

	t.Run("bad json on success", func(t *testing.T) {
		c, _ := newTestClient(t, http.StatusOK, `{not json`)
		_, err := c.Users(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode response")
	})
}
