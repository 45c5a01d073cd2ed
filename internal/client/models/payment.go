package models

// PaymentRequest is what the console hands to a checkout gateway.
type PaymentRequest struct {
	BillID      ID
	AmountMinor int64
	Currency    string
	Description string
	PayerName   string
}

// PaymentResult is the two-outcome answer of a gateway: OK with a payment
// reference, or not OK with a failure description.
type PaymentResult struct {
	OK        bool
	PaymentID string
	Failure   PaymentFailure
}

// PaymentSuccess is the body of POST /tenants/logSuccess.
type PaymentSuccess struct {
	TenantName string `json:"tenantName"`
	PaymentID  string `json:"paymentId"`
}

// PaymentFailure mirrors the error object a checkout widget reports; it is
// sent as-is to POST /tenants/logFailure.
type PaymentFailure struct {
	Code        string            `json:"code,omitempty"`
	Description string            `json:"description"`
	Source      string            `json:"source,omitempty"`
	Step        string            `json:"step,omitempty"`
	Reason      string            `json:"reason,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}
