package compliance

import (
	"context"

	"github.com/google/uuid"

	"vendor-compliance/backend/internal/workflow"
	"vendor-compliance/backend/pkg/models"
)

// SaveResultsInput selects where a result payload comes from: a live fetch by
// jobExecutionId (explicit, or recovered from the audit log when empty), or a
// manually entered result map used when the engine is unreachable.
type SaveResultsInput struct {
	JobExecutionID string
	ManualResult   map[string]interface{}
}

// SaveResultsOutput carries the persisted result, the raw engine response,
// and the work items extracted from the normalized result.
type SaveResultsOutput struct {
	JobExecutionID string                 `json:"jobExecutionId,omitempty"`
	Result         map[string]interface{} `json:"result_json"`
	Raw            map[string]interface{} `json:"raw_response"`
	WorkItems      []WorkItem             `json:"workItems"`
	AlreadySaved   bool                   `json:"alreadySaved,omitempty"`
}

// SaveResults fetches (or accepts) a result payload, normalizes it, persists
// it on the application, extracts work items and queues vendor and admin
// notifications. Saving is idempotent per jobExecutionId: polling callers can
// invoke it redundantly without duplicating side effects.
func (s *Service) SaveResults(ctx context.Context, userID, applicationID string, input SaveResultsInput) (*SaveResultsOutput, error) {
	app, err := s.repo.GetApplication(ctx, applicationID, userID)
	if err != nil {
		return nil, err
	}
	if app.Status == models.ApplicationStatusDraft {
		return nil, ErrInvalidState
	}

	manual := input.ManualResult != nil

	var result, raw map[string]interface{}
	var jobExecutionID string

	if manual {
		result = input.ManualResult
		raw = input.ManualResult
	} else {
		jobExecutionID = input.JobExecutionID
		if jobExecutionID == "" {
			jobExecutionID, err = s.LatestJobExecutionID(ctx, applicationID)
			if err != nil {
				return nil, err
			}
		}

		// A result already saved for this job means a redundant poll; return
		// the stored result without re-persisting or re-notifying.
		if s.resultAlreadySaved(ctx, applicationID, jobExecutionID) && app.Result != nil {
			return &SaveResultsOutput{
				JobExecutionID: jobExecutionID,
				Result:         app.Result,
				Raw:            app.Result,
				WorkItems:      ExtractWorkItems(app.Result),
				AlreadySaved:   true,
			}, nil
		}

		client, _, err := s.liveClient()
		if err != nil {
			return nil, err
		}
		raw, err = client.JobResults(ctx, jobExecutionID)
		if err != nil {
			return nil, err
		}
		result = workflow.NormalizeResults(raw)
	}

	if err := s.repo.SaveResult(ctx, applicationID, userID, result, models.ApplicationStatusReviewed); err != nil {
		return nil, err
	}

	items := ExtractWorkItems(result)
	if err := s.queueNotifications(ctx, userID, app, items); err != nil {
		s.logger.Error("failed to queue notifications", "application_id", applicationID, "error", err)
	}

	action := models.ActionResultSaved
	meta := map[string]interface{}{
		"source":          "engine",
		"work_item_count": len(items),
		"jobExecutionId":  jobExecutionID,
	}
	if manual {
		action = models.ActionManualResultSaved
		meta["source"] = "manual"
		delete(meta, "jobExecutionId")
	}
	entry := &models.AuditEntry{
		ID:            uuid.New().String(),
		ApplicationID: applicationID,
		ActorUserID:   userID,
		Action:        action,
		Meta:          meta,
	}
	if err := s.repo.AppendAudit(ctx, entry); err != nil {
		s.logger.Error("failed to record result save", "application_id", applicationID, "error", err)
	}

	return &SaveResultsOutput{
		JobExecutionID: jobExecutionID,
		Result:         result,
		Raw:            raw,
		WorkItems:      items,
	}, nil
}

// resultAlreadySaved reports whether a result_saved audit record exists for
// the given jobExecutionId.
func (s *Service) resultAlreadySaved(ctx context.Context, applicationID, jobExecutionID string) bool {
	entry, err := s.repo.LatestAuditByAction(ctx, applicationID, models.ActionResultSaved)
	if err != nil {
		return false
	}
	saved, _ := entry.Meta["jobExecutionId"].(string)
	return saved == jobExecutionID
}

func (s *Service) queueNotifications(ctx context.Context, userID string, app *models.Application, items []WorkItem) error {
	var recipientEmail *string
	if email, ok := app.Contact["email"].(string); ok && email != "" {
		recipientEmail = &email
	}

	vendorNote := &models.Notification{
		ID:             uuid.New().String(),
		ApplicationID:  app.ID,
		Category:       models.NotificationCategoryVendor,
		RecipientEmail: recipientEmail,
		Message:        BuildVendorNotification(items),
		CreatedBy:      userID,
	}
	adminNote := &models.Notification{
		ID:              uuid.New().String(),
		ApplicationID:   app.ID,
		Category:        models.NotificationCategoryAdmin,
		RecipientUserID: &userID,
		Message:         BuildAdminNotification(items),
		CreatedBy:       userID,
	}
	return s.repo.CreateNotifications(ctx, []*models.Notification{vendorNote, adminNote})
}

// JobStatus polls the engine for a job's execution status. Redundant polls
// are expected; a short-TTL cache absorbs them when configured. The call has
// no side effects on the application.
func (s *Service) JobStatus(ctx context.Context, userID, applicationID, jobExecutionID string) (map[string]interface{}, string, error) {
	if _, err := s.repo.GetApplication(ctx, applicationID, userID); err != nil {
		return nil, "", err
	}

	var err error
	if jobExecutionID == "" {
		jobExecutionID, err = s.LatestJobExecutionID(ctx, applicationID)
		if err != nil {
			return nil, "", err
		}
	}

	if s.statuses != nil {
		if status, ok := s.statuses.Get(ctx, jobExecutionID); ok {
			return status, jobExecutionID, nil
		}
	}

	client, _, err := s.liveClient()
	if err != nil {
		return nil, "", err
	}
	status, err := client.JobStatus(ctx, jobExecutionID)
	if err != nil {
		return nil, "", err
	}

	if s.statuses != nil {
		s.statuses.Set(ctx, jobExecutionID, status)
	}
	return status, jobExecutionID, nil
}

// EngineAudit fetches the engine-side audit trail for a job.
func (s *Service) EngineAudit(ctx context.Context, userID, applicationID, jobExecutionID string) (map[string]interface{}, string, error) {
	if _, err := s.repo.GetApplication(ctx, applicationID, userID); err != nil {
		return nil, "", err
	}

	var err error
	if jobExecutionID == "" {
		jobExecutionID, err = s.LatestJobExecutionID(ctx, applicationID)
		if err != nil {
			return nil, "", err
		}
	}

	client, _, err := s.liveClient()
	if err != nil {
		return nil, "", err
	}
	audit, err := client.JobAudit(ctx, jobExecutionID)
	if err != nil {
		return nil, "", err
	}
	return audit, jobExecutionID, nil
}
