package repository

import (
	"context"
	"errors"

	"vendor-compliance/backend/pkg/models"
)

// Errors
var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrNoAuditEntry        = errors.New("no matching audit entry")
)

// Repository is the persistence boundary for the review flow: applications,
// their uploaded documents, the append-only audit log, outbound notifications
// and the vendor registry.
type Repository interface {
	// GetApplication retrieves an application owned by the given user.
	GetApplication(ctx context.Context, id, userID string) (*models.Application, error)
	// CreateApplication stores a new application.
	CreateApplication(ctx context.Context, app *models.Application) error
	// SaveResult persists a normalized result payload and advances the
	// application status.
	SaveResult(ctx context.Context, id, userID string, result map[string]interface{}, status models.ApplicationStatus) error

	// ListDocuments returns an application's uploaded documents, newest first.
	ListDocuments(ctx context.Context, applicationID string) ([]*models.ApplicationDocument, error)
	// AddDocument attaches an uploaded document to an application.
	AddDocument(ctx context.Context, doc *models.ApplicationDocument) error

	// AppendAudit appends one audit log record.
	AppendAudit(ctx context.Context, entry *models.AuditEntry) error
	// LatestAuditByAction returns the most recent audit entry with the given
	// action for an application, or ErrNoAuditEntry.
	LatestAuditByAction(ctx context.Context, applicationID, action string) (*models.AuditEntry, error)

	// CreateNotifications queues outbound notifications.
	CreateNotifications(ctx context.Context, notifications []*models.Notification) error

	// SaveVendor upserts a vendor registry entry.
	SaveVendor(ctx context.Context, vendor *models.Vendor) error

	// Ping verifies connectivity.
	Ping(ctx context.Context) error
}
