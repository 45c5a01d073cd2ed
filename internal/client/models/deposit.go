package models

// SecurityDeposit is one deposit payment recorded against a tenant.
type SecurityDeposit struct {
	ID         ID      `json:"id,omitempty"`
	TenantName string  `json:"tenantName"`
	Amount     float64 `json:"amount" validate:"gt=0"`
	PaidDate   string  `json:"paidDate,omitempty"`
	Note       string  `json:"note,omitempty"`
}

// MoveInDeposit is the move-in date and agreed deposit stored on the user.
type MoveInDeposit struct {
	ID            ID      `json:"id,omitempty"`
	Username      string  `json:"username"`
	MoveInDate    string  `json:"moveInDate,omitempty"`
	DepositAmount float64 `json:"depositAmount" validate:"gte=0"`
}
