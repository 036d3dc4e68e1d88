package models

import (
	"time"
)

// Vendor is a registry entry created from an approved application
type Vendor struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Contact      map[string]interface{} `json:"contact_json,omitempty"`
	SourceAppID  *string                `json:"source_application_id,omitempty"`
	ComplianceOK bool                   `json:"compliance_ok"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}
