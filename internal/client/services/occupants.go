package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrijs2005/rentkeeper/internal/client/api"
	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/filex"
	"github.com/dmitrijs2005/rentkeeper/internal/logging"
	"github.com/dmitrijs2005/rentkeeper/internal/netx"
	"github.com/dmitrijs2005/rentkeeper/internal/validation"
	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxDocumentSize is the identity document size limit when none is configured.
const DefaultMaxDocumentSize int64 = 2 << 20

// ErrOccupantLocked is returned when deleting an occupant that is already verified.
var ErrOccupantLocked = validation.New("verified", "Verified occupants cannot be deleted")

var allowedDocumentTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
}

// download is a test seam for fetching identity documents.
var download = netx.Download

// PrepareOccupantUpload validates the occupant form and sniffs the document
// type from its content. maxSize <= 0 means DefaultMaxDocumentSize.
func PrepareOccupantUpload(name, fileName string, data []byte, maxSize int64) (models.OccupantUpload, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxDocumentSize
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return models.OccupantUpload{}, validation.New("name", "Name required")
	}
	if len(data) == 0 {
		return models.OccupantUpload{}, validation.New("file", "Aadhaar file required")
	}

	mt := mimetype.Detect(data)
	contentType := mt.String()
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	if _, ok := allowedDocumentTypes[contentType]; !ok {
		return models.OccupantUpload{}, validation.New("file", "Only PDF / JPG / PNG allowed")
	}

	if int64(len(data)) > maxSize {
		if contentType == "application/pdf" {
			return models.OccupantUpload{}, validation.New("file", fmt.Sprintf("PDF must be <= %s", formatSize(maxSize)))
		}
		return models.OccupantUpload{}, validation.New("file", fmt.Sprintf("File too large (>%s)", formatSize(maxSize)))
	}

	if strings.TrimSpace(fileName) == "" {
		fileName = "aadhar" + mt.Extension()
	}

	return models.OccupantUpload{Name: name, FileName: fileName, ContentType: contentType, Data: data}, nil
}

func formatSize(n int64) string {
	const mb = 1 << 20
	if n%mb == 0 {
		return strconv.FormatInt(n/mb, 10) + "MB"
	}
	if n >= mb {
		return strconv.FormatFloat(float64(n)/mb, 'f', 1, 64) + "MB"
	}
	return strconv.FormatInt(n, 10) + "B"
}

// sortOccupants orders newest upload first, then higher id first.
func sortOccupants(items []models.Occupant) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.UploadedAt != b.UploadedAt {
			return models.NewerFirst(a.UploadedAt, b.UploadedAt)
		}
		return idGreater(a.ID, b.ID)
	})
}

func idGreater(a, b models.ID) bool {
	na, errA := strconv.ParseInt(a.String(), 10, 64)
	nb, errB := strconv.ParseInt(b.String(), 10, 64)
	if errA == nil && errB == nil {
		return na > nb
	}
	return a > b
}

// TenantOccupants manages the occupants a tenant has registered.
type TenantOccupants struct {
	client      api.Client
	logger      logging.Logger
	tenant      string
	maxSize     int64
	downloadDir string

	mu    sync.Mutex
	items []models.Occupant
}

func NewTenantOccupants(c api.Client, logger logging.Logger, tenant string, maxSize int64, downloadDir string) *TenantOccupants {
	return &TenantOccupants{client: c, logger: logger, tenant: tenant, maxSize: maxSize, downloadDir: downloadDir}
}

// Load re-fetches the list; the previous list is kept on error.
func (t *TenantOccupants) Load(ctx context.Context) ([]models.Occupant, error) {
	items, err := t.client.TenantOccupants(ctx, t.tenant)
	if err != nil {
		return t.Items(), err
	}
	sortOccupants(items)

	t.mu.Lock()
	t.items = items
	t.mu.Unlock()
	return t.Items(), nil
}

func (t *TenantOccupants) Items() []models.Occupant {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.Occupant, len(t.items))
	copy(out, t.items)
	return out
}

func (t *TenantOccupants) find(id models.ID) (models.Occupant, bool) {
	for _, o := range t.Items() {
		if o.ID == id {
			return o, true
		}
	}
	return models.Occupant{}, false
}

// Add validates and uploads a new occupant, then re-fetches.
func (t *TenantOccupants) Add(ctx context.Context, name, fileName string, data []byte) error {
	up, err := PrepareOccupantUpload(name, fileName, data, t.maxSize)
	if err != nil {
		return err
	}
	if err := t.client.AddOccupant(ctx, t.tenant, up); err != nil {
		return err
	}
	_, err = t.Load(ctx)
	return err
}

// Delete removes an unverified occupant after confirmation. It reports
// whether the request was sent.
func (t *TenantOccupants) Delete(ctx context.Context, id models.ID, confirm Confirm) (bool, error) {
	o, ok := t.find(id)
	if !ok {
		return false, ErrNotFound
	}
	if o.Verified {
		return false, ErrOccupantLocked
	}
	if confirm == nil || !confirm(fmt.Sprintf("Delete occupant %s?", o.Name)) {
		return false, nil
	}

	if err := t.client.DeleteOccupant(ctx, id); err != nil {
		return true, err
	}
	_, err := t.Load(ctx)
	return true, err
}

// Download saves the occupant's identity document and returns its path.
func (t *TenantOccupants) Download(ctx context.Context, id models.ID) (string, error) {
	o, ok := t.find(id)
	if !ok {
		return "", ErrNotFound
	}
	return DownloadDocument(ctx, o, t.downloadDir)
}

// DownloadDocument fetches o's identity document into dir.
func DownloadDocument(ctx context.Context, o models.Occupant, dir string) (string, error) {
	u, err := url.Parse(o.AadharURL)
	if err != nil || !u.IsAbs() {
		return "", validation.New("aadharUrl", "Document link is not available")
	}

	data, err := download(ctx, nil, u.String())
	if err != nil {
		return "", fmt.Errorf("%w: %w", api.ErrNetwork, err)
	}

	name := o.AadharFileName
	if name == "" {
		name = "occupant-" + o.ID.String() + mimetype.Detect(data).Extension()
	}
	return filex.WriteInSubdir(dir, name, data)
}

// OccupantsBoard is the admin verification view over every occupant.
type OccupantsBoard struct {
	*View[models.Occupant]
	client      api.Client
	downloadDir string
}

func NewOccupantsBoard(c api.Client, downloadDir string) *OccupantsBoard {
	view := NewView(Store[models.Occupant]{
		List: func(ctx context.Context) ([]models.Occupant, error) {
			items, err := c.AllOccupants(ctx)
			if err != nil {
				return nil, err
			}
			sortOccupants(items)
			return items, nil
		},
		ID: func(o models.Occupant) models.ID { return o.ID },
	})
	return &OccupantsBoard{View: view, client: c, downloadDir: downloadDir}
}

// Search filters pending-only and by a name/tenant substring.
func (b *OccupantsBoard) Search(pendingOnly bool, query string) []models.Occupant {
	q := strings.ToLower(strings.TrimSpace(query))
	return b.Filter(func(o models.Occupant) bool {
		if pendingOnly && o.Verified {
			return false
		}
		return q == "" ||
			strings.Contains(strings.ToLower(o.Name), q) ||
			strings.Contains(strings.ToLower(o.TenantUsername), q)
	})
}

// Verify marks an occupant verified after confirmation. A backend answer
// saying the occupant is already verified counts as success.
func (b *OccupantsBoard) Verify(ctx context.Context, id models.ID, confirm Confirm) (bool, error) {
	o, ok := b.Find(id)
	if !ok {
		return false, ErrNotFound
	}
	if o.Verified {
		return false, nil
	}
	if confirm == nil || !confirm(fmt.Sprintf("Verify occupant %s of %s?", o.Name, o.TenantUsername)) {
		return false, nil
	}

	return true, b.Do(ctx, id, func(ctx context.Context) error {
		err := b.client.VerifyOccupant(ctx, id)
		var he *api.HTTPError
		if errors.As(err, &he) && strings.Contains(strings.ToLower(he.Message), "already verified") {
			return nil
		}
		return err
	})
}

// Download saves an occupant's identity document for review.
func (b *OccupantsBoard) Download(ctx context.Context, id models.ID) (string, error) {
	o, ok := b.Find(id)
	if !ok {
		return "", ErrNotFound
	}
	return DownloadDocument(ctx, o, b.downloadDir)
}
