package compliance

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"vendor-compliance/backend/internal/engine"
	"vendor-compliance/backend/internal/workflow"
	"vendor-compliance/backend/pkg/models"
)

// StartReviewResult is what a successful start leaves behind.
type StartReviewResult struct {
	JobExecutionID string `json:"jobExecutionId"`
}

// StartReview drives one review run end to end: validate preconditions,
// initiate a remote job, upload each schema-declared file input, submit the
// assembled payload, execute, and record the jobExecutionId in the audit log.
//
// Any failure aborts the whole attempt; no partial payload is ever submitted.
// A job stub initiated before a later failure is left orphaned remotely,
// which the engine tolerates. Re-running always produces a fresh job.
func (s *Service) StartReview(ctx context.Context, userID, applicationID string) (*StartReviewResult, error) {
	client, _, err := s.liveClient()
	if err != nil {
		return nil, err
	}

	schema, err := s.schemas.Load()
	if err != nil {
		return nil, err
	}

	app, err := s.repo.GetApplication(ctx, applicationID, userID)
	if err != nil {
		return nil, err
	}
	if app.Status == models.ApplicationStatusDraft {
		return nil, ErrInvalidState
	}

	docs, err := s.repo.ListDocuments(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	workflowID := s.workflowIDOverride
	if workflowID == "" {
		workflowID = schema.WorkflowID
	}
	if workflowID == "" {
		return nil, ErrConfigurationMissing
	}

	// Fail fast if the remote workflow no longer exists; remote errors
	// propagate verbatim with their status.
	if _, err := client.WorkflowDetails(ctx, workflowID); err != nil {
		return nil, err
	}

	jobExecutionID, err := client.InitiateJob(ctx, workflowID,
		app.VendorName+" Compliance Review",
		"Vendor compliance validation run",
	)
	if err != nil {
		return nil, err
	}

	payload, err := s.assemblePayload(ctx, client, schema, app, docs)
	if err != nil {
		return nil, err
	}

	if err := client.ExecuteJob(ctx, jobExecutionID, payload); err != nil {
		return nil, err
	}

	entry := &models.AuditEntry{
		ID:            uuid.New().String(),
		ApplicationID: applicationID,
		ActorUserID:   userID,
		Action:        models.ActionJobStarted,
		Meta:          map[string]interface{}{"jobExecutionId": jobExecutionID},
	}
	if err := s.repo.AppendAudit(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record job start: %w", err)
	}

	s.logger.Info("review job started", "application_id", applicationID, "job_execution_id", jobExecutionID)
	return &StartReviewResult{JobExecutionID: jobExecutionID}, nil
}

// assemblePayload builds one payload entry per schema input variable. File
// inputs are uploaded sequentially: each upload needs a fresh one-time URL
// obtained just before use. Nullable inputs with no value are omitted
// entirely, never sent as null.
func (s *Service) assemblePayload(
	ctx context.Context,
	client EngineClient,
	schema *workflow.Schema,
	app *models.Application,
	docs []*models.ApplicationDocument,
) (map[string]engine.PayloadEntry, error) {
	// First (newest) document per input key wins.
	docsByKey := make(map[string]*models.ApplicationDocument)
	for _, doc := range docs {
		if _, ok := docsByKey[doc.InputKey]; !ok {
			docsByKey[doc.InputKey] = doc
		}
	}

	keys := make([]string, 0, len(schema.Inputs))
	for key := range schema.Inputs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	payload := make(map[string]engine.PayloadEntry, len(keys))
	for _, key := range keys {
		variable := schema.Inputs[key]
		if variable == nil {
			continue
		}

		switch variable.Type {
		case workflow.TypeFile:
			doc, ok := docsByKey[key]
			if !ok {
				if variable.Nullable {
					continue
				}
				return nil, &MissingInputError{Key: key, Label: variable.Label(key)}
			}

			target, err := client.UploadURL(ctx, extensionFromFilename(doc.Filename))
			if err != nil {
				return nil, err
			}

			data, err := s.blobs.Fetch(ctx, doc.StoragePath)
			if err != nil {
				return nil, err
			}

			contentType := doc.MimeType
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			if err := client.UploadToPresignedURL(ctx, target.PresignedURL, data, contentType); err != nil {
				return nil, err
			}

			payload[key] = engine.PayloadEntry{
				Value:       target.FileURL,
				Type:        string(workflow.TypeFile),
				DisplayName: variable.Label(key),
			}

		case workflow.TypeObject:
			contact := app.Contact
			if contact == nil {
				contact = map[string]interface{}{}
			}
			if !variable.Nullable && len(contact) == 0 {
				return nil, &MissingInputError{Key: key, Label: variable.Label(key)}
			}
			payload[key] = engine.PayloadEntry{
				Value:       contact,
				Type:        string(workflow.TypeObject),
				DisplayName: variable.Label(key),
			}

		default:
			if variable.Value == nil {
				if variable.Nullable {
					continue
				}
				return nil, &MissingInputError{Key: key, Label: variable.Label(key)}
			}
			payload[key] = engine.PayloadEntry{
				Value:       variable.Value,
				Type:        string(variable.Type),
				DisplayName: variable.Label(key),
			}
		}
	}

	return payload, nil
}

func extensionFromFilename(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return ".pdf"
	}
	return filename[idx:]
}
