package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/client/api"
	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/logging"
	"github.com/dmitrijs2005/rentkeeper/internal/validation"
	"github.com/google/uuid"
)

// newTemporaryID mints ids for optimistic rows.
var newTemporaryID = func() models.ID {
	return models.ID(models.TemporaryIDPrefix + uuid.NewString())
}

func sortComplaints(items []models.Complaint) {
	sort.SliceStable(items, func(i, j int) bool {
		return models.NewerFirst(items[i].CreatedDate, items[j].CreatedDate)
	})
}

// TenantComplaints is the tenant's own complaint list.
type TenantComplaints struct {
	client api.Client
	logger logging.Logger
	tenant string
	now    func() time.Time

	mu    sync.Mutex
	items []models.Complaint
}

func NewTenantComplaints(c api.Client, logger logging.Logger, tenant string) *TenantComplaints {
	return &TenantComplaints{client: c, logger: logger, tenant: tenant, now: time.Now}
}

// Load re-fetches and sorts newest first. The previous list is kept on error.
func (t *TenantComplaints) Load(ctx context.Context) ([]models.Complaint, error) {
	items, err := t.client.TenantComplaints(ctx, t.tenant)
	if err != nil {
		return t.Items(), err
	}
	sortComplaints(items)

	t.mu.Lock()
	t.items = items
	t.mu.Unlock()
	return t.Items(), nil
}

func (t *TenantComplaints) Items() []models.Complaint {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.Complaint, len(t.items))
	copy(out, t.items)
	return out
}

func (t *TenantComplaints) Filter(status models.StatusFilter) []models.Complaint {
	out := []models.Complaint{}
	for _, c := range t.Items() {
		if status.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

// Submit files a complaint. The row appears at once with a temporary id and
// is replaced by the backend's copy on the following re-fetch.
func (t *TenantComplaints) Submit(ctx context.Context, description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return validation.New("description", "Description required")
	}

	tmp := models.Complaint{
		ID:          newTemporaryID(),
		TenantName:  t.tenant,
		Description: description,
		Status:      models.ComplaintOpen,
		CreatedDate: t.now().UTC().Format(time.RFC3339),
	}

	t.mu.Lock()
	t.items = append([]models.Complaint{tmp}, t.items...)
	t.mu.Unlock()

	if err := t.client.AddComplaint(ctx, t.tenant, description); err != nil {
		t.drop(tmp.ID)
		return err
	}

	if _, err := t.Load(ctx); err != nil {
		t.logger.Warn(ctx, "complaint saved but list refresh failed", "error", err)
	}
	return nil
}

func (t *TenantComplaints) drop(id models.ID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.items[:0]
	for _, c := range t.items {
		if c.ID != id {
			out = append(out, c)
		}
	}
	t.items = out
}

// ComplaintsBoard is the admin view over all complaints.
type ComplaintsBoard struct {
	*View[models.Complaint]
	client api.Client
}

func NewComplaintsBoard(c api.Client) *ComplaintsBoard {
	view := NewView(Store[models.Complaint]{
		List: func(ctx context.Context) ([]models.Complaint, error) {
			items, err := c.AllComplaints(ctx)
			if err != nil {
				return nil, err
			}
			sortComplaints(items)
			return items, nil
		},
		ID: func(c models.Complaint) models.ID { return c.ID },
	})
	return &ComplaintsBoard{View: view, client: c}
}

// Search filters by status and a case-insensitive tenant substring.
func (b *ComplaintsBoard) Search(status models.StatusFilter, tenant string) []models.Complaint {
	q := strings.ToLower(strings.TrimSpace(tenant))
	return b.Filter(func(c models.Complaint) bool {
		return status.Match(c) && (q == "" || strings.Contains(strings.ToLower(c.TenantName), q))
	})
}

// Close resolves a complaint. An empty comment is rejected before any request.
func (b *ComplaintsBoard) Close(ctx context.Context, id models.ID, comment string) error {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return validation.New("resolutionComment", "Resolution comment required")
	}
	c, ok := b.Find(id)
	if !ok {
		return ErrNotFound
	}
	if c.Status == models.ComplaintClosed {
		return validation.New("status", "Complaint is already closed")
	}

	return b.Do(ctx, id, func(ctx context.Context) error {
		return b.client.CloseComplaint(ctx, id, comment)
	})
}

// Reopen sets a closed complaint back to OPEN after confirmation. It reports
// whether the request was sent.
func (b *ComplaintsBoard) Reopen(ctx context.Context, id models.ID, confirm Confirm) (bool, error) {
	c, ok := b.Find(id)
	if !ok {
		return false, ErrNotFound
	}
	if c.Status != models.ComplaintClosed {
		return false, validation.New("status", "Only closed complaints can be reopened")
	}
	if confirm == nil || !confirm(fmt.Sprintf("Reopen complaint %s?", id)) {
		return false, nil
	}

	return true, b.Do(ctx, id, func(ctx context.Context) error {
		return b.client.ReopenComplaint(ctx, id)
	})
}
