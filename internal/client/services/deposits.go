package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/rentkeeper/internal/client/api"
	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/validation"
)

// DepositService covers security deposits and the move-in deposit.
type DepositService struct {
	client api.Client
}

func NewDepositService(c api.Client) *DepositService {
	return &DepositService{client: c}
}

// SecurityDeposits lists a tenant's deposits and their sum.
func (s *DepositService) SecurityDeposits(ctx context.Context, tenant string) ([]models.SecurityDeposit, float64, error) {
	tenant = strings.TrimSpace(tenant)
	if tenant == "" {
		return nil, 0, validation.New("tenant", "Tenant required")
	}

	items, err := s.client.SecurityDeposits(ctx, tenant)
	if err != nil {
		return nil, 0, err
	}

	var total float64
	for _, d := range items {
		total += d.Amount
	}
	return items, total, nil
}

// AddSecurityDeposit records a deposit for tenant (admin).
func (s *DepositService) AddSecurityDeposit(ctx context.Context, tenant string, d models.SecurityDeposit) error {
	tenant = strings.TrimSpace(tenant)
	if tenant == "" {
		return validation.New("tenant", "Tenant required")
	}
	d.TenantName = tenant
	if err := validation.ValidateStruct(d); err != nil {
		return err
	}
	return s.client.AddSecurityDeposit(ctx, tenant, d)
}

// MoveIn returns the move-in details of username.
func (s *DepositService) MoveIn(ctx context.Context, username string) (models.MoveInDeposit, error) {
	return s.client.MoveInDeposit(ctx, username)
}

// UpdateMoveIn changes the move-in date and deposit of a user (admin).
func (s *DepositService) UpdateMoveIn(ctx context.Context, d models.MoveInDeposit) error {
	if d.ID == "" {
		return validation.New("id", "User id required")
	}
	d.MoveInDate = strings.TrimSpace(d.MoveInDate)
	if d.MoveInDate != "" {
		if _, ok := models.ParseTimestamp(d.MoveInDate); !ok {
			return validation.New("moveInDate", "Move-in date must be YYYY-MM-DD")
		}
	}
	if err := validation.ValidateStruct(d); err != nil {
		return err
	}
	return s.client.UpdateMoveInDeposit(ctx, d.ID, d)
}
