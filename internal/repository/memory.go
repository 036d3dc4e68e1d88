package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"vendor-compliance/backend/pkg/models"
)

// MemoryRepository is an in-memory implementation of the Repository
// interface, used by tests and local development without Postgres.
type MemoryRepository struct {
	mu            sync.RWMutex
	applications  map[string]*models.Application
	documents     map[string][]*models.ApplicationDocument
	audit         []*models.AuditEntry
	notifications []*models.Notification
	vendors       map[string]*models.Vendor
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		applications: make(map[string]*models.Application),
		documents:    make(map[string][]*models.ApplicationDocument),
		vendors:      make(map[string]*models.Vendor),
	}
}

// GetApplication retrieves an application owned by the given user.
func (r *MemoryRepository) GetApplication(ctx context.Context, id, userID string) (*models.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.applications[id]
	if !ok || app.CreatedBy != userID {
		return nil, ErrApplicationNotFound
	}
	clone := *app
	return &clone, nil
}

// CreateApplication stores a new application.
func (r *MemoryRepository) CreateApplication(ctx context.Context, app *models.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	stored := *app
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.applications[app.ID] = &stored
	return nil
}

// SaveResult persists a result payload and advances the application status.
func (r *MemoryRepository) SaveResult(ctx context.Context, id, userID string, result map[string]interface{}, status models.ApplicationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.applications[id]
	if !ok || app.CreatedBy != userID {
		return ErrApplicationNotFound
	}
	app.Result = result
	app.Status = status
	app.UpdatedAt = time.Now()
	return nil
}

// ListDocuments returns an application's documents, newest first.
func (r *MemoryRepository) ListDocuments(ctx context.Context, applicationID string) ([]*models.ApplicationDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	docs := append([]*models.ApplicationDocument(nil), r.documents[applicationID]...)
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

// AddDocument attaches a document to an application.
func (r *MemoryRepository) AddDocument(ctx context.Context, doc *models.ApplicationDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *doc
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	r.documents[doc.ApplicationID] = append(r.documents[doc.ApplicationID], &stored)
	return nil
}

// AppendAudit appends one audit log record.
func (r *MemoryRepository) AppendAudit(ctx context.Context, entry *models.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *entry
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	r.audit = append(r.audit, &stored)
	return nil
}

// LatestAuditByAction returns the most recent matching audit entry.
// Entries with equal timestamps resolve by insertion order, last write wins.
func (r *MemoryRepository) LatestAuditByAction(ctx context.Context, applicationID, action string) (*models.AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.audit) - 1; i >= 0; i-- {
		if r.audit[i].ApplicationID == applicationID && r.audit[i].Action == action {
			clone := *r.audit[i]
			return &clone, nil
		}
	}
	return nil, ErrNoAuditEntry
}

// CreateNotifications queues outbound notifications.
func (r *MemoryRepository) CreateNotifications(ctx context.Context, notifications []*models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range notifications {
		stored := *n
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = time.Now()
		}
		r.notifications = append(r.notifications, &stored)
	}
	return nil
}

// Notifications returns all queued notifications; test helper.
func (r *MemoryRepository) Notifications() []*models.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*models.Notification(nil), r.notifications...)
}

// AuditEntries returns all audit records; test helper.
func (r *MemoryRepository) AuditEntries() []*models.AuditEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*models.AuditEntry(nil), r.audit...)
}

// SaveVendor upserts a vendor registry entry.
func (r *MemoryRepository) SaveVendor(ctx context.Context, vendor *models.Vendor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *vendor
	r.vendors[vendor.ID] = &stored
	return nil
}

// Ping verifies connectivity; always succeeds for the in-memory store.
func (r *MemoryRepository) Ping(ctx context.Context) error {
	return nil
}
