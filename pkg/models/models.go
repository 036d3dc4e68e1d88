// Package models defines the domain models for the compliance review service
package models

import (
	"time"
)

// ApplicationStatus represents the lifecycle stage of a vendor application
type ApplicationStatus string

const (
	ApplicationStatusDraft     ApplicationStatus = "draft"
	ApplicationStatusSubmitted ApplicationStatus = "submitted"
	ApplicationStatusReviewed  ApplicationStatus = "reviewed"
	ApplicationStatusApproved  ApplicationStatus = "approved"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
)

// Audit log actions recorded by the review flow.
const (
	ActionJobStarted        = "job_started"
	ActionJobStartFailed    = "job_start_failed"
	ActionResultSaved       = "result_saved"
	ActionManualResultSaved = "manual_result_saved"
)

// NotificationCategory distinguishes vendor-facing from admin-facing messages
type NotificationCategory string

const (
	NotificationCategoryVendor NotificationCategory = "vendor"
	NotificationCategoryAdmin  NotificationCategory = "admin"
)

// Application represents one vendor compliance application
type Application struct {
	ID         string                 `json:"id" db:"id"`
	VendorName string                 `json:"vendor_name" db:"vendor_name"`
	Status     ApplicationStatus      `json:"status" db:"status"`
	Contact    map[string]interface{} `json:"contact_json,omitempty" db:"contact_json"`
	Result     map[string]interface{} `json:"result_json,omitempty" db:"result_json"`
	CreatedBy  string                 `json:"created_by" db:"created_by"`
	CreatedAt  time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at" db:"updated_at"`
}

// ApplicationDocument is one uploaded file attached to an application,
// keyed by the workflow input it satisfies.
type ApplicationDocument struct {
	ID            string    `json:"id" db:"id"`
	ApplicationID string    `json:"application_id" db:"application_id"`
	InputKey      string    `json:"input_key" db:"input_key"`
	StoragePath   string    `json:"storage_path" db:"storage_path"`
	Filename      string    `json:"filename" db:"filename"`
	MimeType      string    `json:"mime_type" db:"mime_type"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// AuditEntry is one append-only audit log record
type AuditEntry struct {
	ID            string                 `json:"id" db:"id"`
	ApplicationID string                 `json:"application_id" db:"application_id"`
	ActorUserID   string                 `json:"actor_user_id" db:"actor_user_id"`
	Action        string                 `json:"action" db:"action"`
	Meta          map[string]interface{} `json:"meta,omitempty" db:"meta"`
	CreatedAt     time.Time              `json:"created_at" db:"created_at"`
}

// Notification is an outbound message queued for delivery by an external worker
type Notification struct {
	ID              string               `json:"id" db:"id"`
	ApplicationID   string               `json:"application_id" db:"application_id"`
	Category        NotificationCategory `json:"category" db:"category"`
	RecipientEmail  *string              `json:"recipient_email,omitempty" db:"recipient_email"`
	RecipientUserID *string              `json:"recipient_user_id,omitempty" db:"recipient_user_id"`
	Message         string               `json:"message" db:"message"`
	CreatedBy       string               `json:"created_by" db:"created_by"`
	CreatedAt       time.Time            `json:"created_at" db:"created_at"`
}
