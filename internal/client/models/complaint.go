package models

type ComplaintStatus string

const (
	ComplaintOpen   ComplaintStatus = "OPEN"
	ComplaintClosed ComplaintStatus = "CLOSED"
)

type Complaint struct {
	ID                ID              `json:"id"`
	TenantName        string          `json:"tenantName"`
	Description       string          `json:"description"`
	Status            ComplaintStatus `json:"status"`
	CreatedDate       string          `json:"createdDate"`
	ResolutionComment string          `json:"resolutionComment,omitempty"`
}

// StatusFilter selects complaints by status; StatusAll matches everything.
type StatusFilter string

const (
	StatusAll    StatusFilter = "ALL"
	StatusOpen   StatusFilter = "OPEN"
	StatusClosed StatusFilter = "CLOSED"
)

func (f StatusFilter) Match(c Complaint) bool {
	switch f {
	case StatusOpen:
		return c.Status == ComplaintOpen
	case StatusClosed:
		return c.Status == ComplaintClosed
	default:
		return true
	}
}
