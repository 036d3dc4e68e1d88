package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"vendor-compliance/backend/pkg/models"
)

const schemaDDL = `
CREATE TABLE applications (
	id UUID PRIMARY KEY,
	vendor_name TEXT NOT NULL,
	status TEXT NOT NULL,
	contact_json JSONB,
	result_json JSONB,
	created_by TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE application_documents (
	id UUID PRIMARY KEY,
	application_id UUID NOT NULL REFERENCES applications(id),
	input_key TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	filename TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE audit_log (
	id UUID PRIMARY KEY,
	application_id UUID NOT NULL REFERENCES applications(id),
	actor_user_id TEXT NOT NULL,
	action TEXT NOT NULL,
	meta JSONB,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE notifications (
	id UUID PRIMARY KEY,
	application_id UUID NOT NULL REFERENCES applications(id),
	category TEXT NOT NULL,
	recipient_email TEXT,
	recipient_user_id TEXT,
	message TEXT NOT NULL,
	created_by TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE vendors (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	contact_json JSONB,
	source_application_id UUID,
	compliance_ok BOOLEAN NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`

func TestPostgresRepository(t *testing.T) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test-db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2)),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		t.Fatal(err)
	}

	repo := NewPostgresRepository(pool)
	userID := "reviewer@example.com"
	appID := uuid.New().String()

	t.Run("Create and Get application", func(t *testing.T) {
		app := &models.Application{
			ID:         appID,
			VendorName: "Acme Logistics",
			Status:     models.ApplicationStatusSubmitted,
			Contact:    map[string]interface{}{"email": "dana.reyes@acme-logistics.example"},
			CreatedBy:  userID,
		}
		assert.NoError(t, repo.CreateApplication(ctx, app))

		retrieved, err := repo.GetApplication(ctx, appID, userID)
		assert.NoError(t, err)
		assert.Equal(t, app.VendorName, retrieved.VendorName)
		assert.Equal(t, app.Status, retrieved.Status)
		assert.Equal(t, app.Contact, retrieved.Contact)
		assert.Nil(t, retrieved.Result)
	})

	t.Run("Ownership scoping", func(t *testing.T) {
		_, err := repo.GetApplication(ctx, appID, "someone-else@example.com")
		assert.ErrorIs(t, err, ErrApplicationNotFound)
	})

	t.Run("Save result advances status", func(t *testing.T) {
		result := map[string]interface{}{"doc_status": "Valid"}
		assert.NoError(t, repo.SaveResult(ctx, appID, userID, result, models.ApplicationStatusReviewed))

		retrieved, err := repo.GetApplication(ctx, appID, userID)
		assert.NoError(t, err)
		assert.Equal(t, models.ApplicationStatusReviewed, retrieved.Status)
		assert.Equal(t, result, retrieved.Result)

		err = repo.SaveResult(ctx, uuid.New().String(), userID, result, models.ApplicationStatusReviewed)
		assert.ErrorIs(t, err, ErrApplicationNotFound)
	})

	t.Run("Documents round trip", func(t *testing.T) {
		doc := &models.ApplicationDocument{
			ID:            uuid.New().String(),
			ApplicationID: appID,
			InputKey:      "tax_certificate",
			StoragePath:   BuildDocumentPath(userID, appID, "tax_certificate", "cert.pdf"),
			Filename:      "cert.pdf",
			MimeType:      "application/pdf",
		}
		assert.NoError(t, repo.AddDocument(ctx, doc))

		docs, err := repo.ListDocuments(ctx, appID)
		assert.NoError(t, err)
		assert.Len(t, docs, 1)
		assert.Equal(t, doc.InputKey, docs[0].InputKey)
		assert.Equal(t, doc.StoragePath, docs[0].StoragePath)
	})

	t.Run("Audit log last write wins", func(t *testing.T) {
		_, err := repo.LatestAuditByAction(ctx, appID, models.ActionJobStarted)
		assert.ErrorIs(t, err, ErrNoAuditEntry)

		for _, jobID := range []string{"je-old", "je-new"} {
			entry := &models.AuditEntry{
				ID:            uuid.New().String(),
				ApplicationID: appID,
				ActorUserID:   userID,
				Action:        models.ActionJobStarted,
				Meta:          map[string]interface{}{"jobExecutionId": jobID},
			}
			assert.NoError(t, repo.AppendAudit(ctx, entry))
		}

		latest, err := repo.LatestAuditByAction(ctx, appID, models.ActionJobStarted)
		assert.NoError(t, err)
		assert.Equal(t, "je-new", latest.Meta["jobExecutionId"])
	})

	t.Run("Notifications batch", func(t *testing.T) {
		email := "dana.reyes@acme-logistics.example"
		notes := []*models.Notification{
			{
				ID:             uuid.New().String(),
				ApplicationID:  appID,
				Category:       models.NotificationCategoryVendor,
				RecipientEmail: &email,
				Message:        "Please address the following compliance items:",
				CreatedBy:      userID,
			},
			{
				ID:              uuid.New().String(),
				ApplicationID:   appID,
				Category:        models.NotificationCategoryAdmin,
				RecipientUserID: &userID,
				Message:         "Compliance review generated 1 follow-up item(s).",
				CreatedBy:       userID,
			},
		}
		assert.NoError(t, repo.CreateNotifications(ctx, notes))

		var count int
		assert.NoError(t, pool.QueryRow(ctx,
			`SELECT count(*) FROM notifications WHERE application_id = $1`, appID).Scan(&count))
		assert.Equal(t, 2, count)
	})

	t.Run("Vendor upsert", func(t *testing.T) {
		vendor := &models.Vendor{
			ID:           uuid.New().String(),
			Name:         "Acme Logistics",
			Contact:      map[string]interface{}{"email": "dana.reyes@acme-logistics.example"},
			SourceAppID:  &appID,
			ComplianceOK: false,
		}
		assert.NoError(t, repo.SaveVendor(ctx, vendor))

		vendor.ComplianceOK = true
		assert.NoError(t, repo.SaveVendor(ctx, vendor))

		var ok bool
		assert.NoError(t, pool.QueryRow(ctx,
			`SELECT compliance_ok FROM vendors WHERE id = $1`, vendor.ID).Scan(&ok))
		assert.True(t, ok)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, repo.Ping(ctx))
	})
}
