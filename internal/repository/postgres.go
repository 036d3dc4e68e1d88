package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vendor-compliance/backend/pkg/models"
)

// PostgresRepository is a PostgreSQL implementation of the Repository interface.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetApplication retrieves an application owned by the given user.
func (r *PostgresRepository) GetApplication(ctx context.Context, id, userID string) (*models.Application, error) {
	var app models.Application
	err := r.db.QueryRow(ctx,
		`SELECT id, vendor_name, status, contact_json, result_json, created_by, created_at, updated_at
		 FROM applications WHERE id = $1 AND created_by = $2`,
		id, userID,
	).Scan(&app.ID, &app.VendorName, &app.Status, &app.Contact, &app.Result, &app.CreatedBy, &app.CreatedAt, &app.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrApplicationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// CreateApplication stores a new application.
func (r *PostgresRepository) CreateApplication(ctx context.Context, app *models.Application) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO applications (id, vendor_name, status, contact_json, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, now(), now())`,
		app.ID, app.VendorName, app.Status, app.Contact, app.CreatedBy,
	)
	return err
}

// SaveResult persists a result payload and advances the application status.
func (r *PostgresRepository) SaveResult(ctx context.Context, id, userID string, result map[string]interface{}, status models.ApplicationStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE applications SET result_json = $1, status = $2, updated_at = now()
		 WHERE id = $3 AND created_by = $4`,
		result, status, id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

// ListDocuments returns an application's uploaded documents, newest first.
func (r *PostgresRepository) ListDocuments(ctx context.Context, applicationID string) ([]*models.ApplicationDocument, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, application_id, input_key, storage_path, filename, mime_type, created_at
		 FROM application_documents WHERE application_id = $1 ORDER BY created_at DESC`,
		applicationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.ApplicationDocument
	for rows.Next() {
		var doc models.ApplicationDocument
		if err := rows.Scan(&doc.ID, &doc.ApplicationID, &doc.InputKey, &doc.StoragePath, &doc.Filename, &doc.MimeType, &doc.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

// AddDocument attaches an uploaded document to an application.
func (r *PostgresRepository) AddDocument(ctx context.Context, doc *models.ApplicationDocument) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO application_documents (id, application_id, input_key, storage_path, filename, mime_type, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now())`,
		doc.ID, doc.ApplicationID, doc.InputKey, doc.StoragePath, doc.Filename, doc.MimeType,
	)
	return err
}

// AppendAudit appends one audit log record.
func (r *PostgresRepository) AppendAudit(ctx context.Context, entry *models.AuditEntry) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO audit_log (id, application_id, actor_user_id, action, meta, created_at)
		 VALUES ($1, $2, $3, $4, $5, now())`,
		entry.ID, entry.ApplicationID, entry.ActorUserID, entry.Action, entry.Meta,
	)
	return err
}

// LatestAuditByAction returns the most recent matching audit entry.
func (r *PostgresRepository) LatestAuditByAction(ctx context.Context, applicationID, action string) (*models.AuditEntry, error) {
	var entry models.AuditEntry
	err := r.db.QueryRow(ctx,
		`SELECT id, application_id, actor_user_id, action, meta, created_at
		 FROM audit_log WHERE application_id = $1 AND action = $2
		 ORDER BY created_at DESC LIMIT 1`,
		applicationID, action,
	).Scan(&entry.ID, &entry.ApplicationID, &entry.ActorUserID, &entry.Action, &entry.Meta, &entry.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoAuditEntry
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// CreateNotifications queues outbound notifications in one batch.
func (r *PostgresRepository) CreateNotifications(ctx context.Context, notifications []*models.Notification) error {
	batch := &pgx.Batch{}
	for _, n := range notifications {
		batch.Queue(
			`INSERT INTO notifications (id, application_id, category, recipient_email, recipient_user_id, message, created_by, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, now())`,
			n.ID, n.ApplicationID, n.Category, n.RecipientEmail, n.RecipientUserID, n.Message, n.CreatedBy,
		)
	}
	results := r.db.SendBatch(ctx, batch)
	defer results.Close()
	for range notifications {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// SaveVendor upserts a vendor registry entry.
func (r *PostgresRepository) SaveVendor(ctx context.Context, vendor *models.Vendor) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO vendors (id, name, contact_json, source_application_id, compliance_ok, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, now(), now())
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name, contact_json = EXCLUDED.contact_json,
		   compliance_ok = EXCLUDED.compliance_ok, updated_at = now()`,
		vendor.ID, vendor.Name, vendor.Contact, vendor.SourceAppID, vendor.ComplianceOK,
	)
	return err
}

// Ping verifies connectivity.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.db.Ping(ctx)
}
