package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/rentkeeper/internal/client/api"
	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/validation"
)

// billForm carries the validation rules for bills entered by an admin.
type billForm struct {
	TenantName    string  `label:"Tenant" validate:"required"`
	MonthYear     string  `label:"Month" validate:"required,monthyear"`
	Rent          float64 `label:"Rent" validate:"gte=0"`
	Water         float64 `label:"Water" validate:"gte=0"`
	Electricity   float64 `label:"Electricity" validate:"gte=0"`
	Miscellaneous float64 `label:"Miscellaneous" validate:"gte=0"`
}

// ValidateBill checks a bill before it is added or updated.
func ValidateBill(b models.Bill) error {
	return validation.ValidateStruct(billForm{
		TenantName:    strings.TrimSpace(b.TenantName),
		MonthYear:     strings.TrimSpace(b.MonthYear),
		Rent:          b.Rent,
		Water:         b.Water,
		Electricity:   b.Electricity,
		Miscellaneous: b.Miscellaneous,
	})
}

// ValidateUser checks a user record from the admin user screen.
func ValidateUser(u models.User) error {
	u.Username = strings.TrimSpace(u.Username)
	return validation.ValidateStruct(u)
}

// NewBillsView is the admin view over every bill (GET /tenants/all).
func NewBillsView(c api.Client) *View[models.Bill] {
	return NewView(Store[models.Bill]{
		List:     c.AllBills,
		Create:   c.AddBill,
		Update:   c.UpdateBill,
		Delete:   c.DeleteBill,
		ID:       func(b models.Bill) models.ID { return b.ID },
		Validate: ValidateBill,
	})
}

// NewUsersView is the admin user-management view.
func NewUsersView(c api.Client) *View[models.User] {
	return NewView(Store[models.User]{
		List:   c.Users,
		Create: c.AddUser,
		Update: c.UpdateUser,
		Delete: c.DeleteUser,
		ID:     func(u models.User) models.ID { return u.ID },
		Validate: func(u models.User) error {
			if err := ValidateUser(u); err != nil {
				return err
			}
			if u.ID == "" && u.Password == "" {
				return validation.New("password", "Password required")
			}
			return nil
		},
	})
}

// BillMatches is the local search used by the bills view: tenant or month
// substring, case-insensitive.
func BillMatches(query string) func(models.Bill) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	return func(b models.Bill) bool {
		if q == "" {
			return true
		}
		return strings.Contains(strings.ToLower(b.TenantName), q) || strings.Contains(b.MonthYear, q)
	}
}

// UserMatches searches username, email and role.
func UserMatches(query string) func(models.User) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	return func(u models.User) bool {
		if q == "" {
			return true
		}
		return strings.Contains(strings.ToLower(u.Username), q) ||
			strings.Contains(strings.ToLower(u.Email), q) ||
			strings.EqualFold(string(u.Role), q)
	}
}

// PaidBillsReport is the admin report of bills paid in one month.
type PaidBillsReport struct {
	Month  string
	Bills  []models.Bill
	Totals models.BillTotals
}

// ReportService builds admin reports.
type ReportService struct {
	client api.Client
}

func NewReportService(c api.Client) *ReportService {
	return &ReportService{client: c}
}

// PaidBills fetches the bills paid in month (YYYY-MM) and totals them.
func (s *ReportService) PaidBills(ctx context.Context, month string) (PaidBillsReport, error) {
	month = strings.TrimSpace(month)
	if month == "" {
		return PaidBillsReport{}, validation.New("month", "Month required")
	}
	if !validation.IsMonthYear(month) {
		return PaidBillsReport{}, validation.New("month", "Month must be in YYYY-MM format")
	}

	bills, err := s.client.PaidBills(ctx, month)
	if err != nil {
		return PaidBillsReport{}, err
	}

	return PaidBillsReport{Month: month, Bills: bills, Totals: models.SumBills(bills)}, nil
}
