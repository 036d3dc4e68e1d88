// Package compliance orchestrates the review job lifecycle against the
// remote engine: starting runs, recovering correlation ids, fetching and
// persisting results, and extracting actionable work items.
package compliance

import (
	"context"

	"vendor-compliance/backend/internal/engine"
	"vendor-compliance/backend/internal/repository"
	"vendor-compliance/backend/internal/workflow"
	"vendor-compliance/backend/pkg/models"
)

// Logger defines the logging interface compatible with the application logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// SchemaLoader loads the workflow schema; reloaded per request because the
// schema is external truth that may change between deployments.
type SchemaLoader interface {
	Load() (*workflow.Schema, error)
}

// CapabilityResolver derives the current engine capability.
type CapabilityResolver interface {
	Resolve() engine.Capability
}

// EngineClient is the subset of engine operations the review flow performs.
// Satisfied by *engine.Client; tests inject fakes.
type EngineClient interface {
	WorkflowDetails(ctx context.Context, workflowID string) (map[string]interface{}, error)
	InitiateJob(ctx context.Context, workflowID, title, description string) (string, error)
	UploadURL(ctx context.Context, fileExtension string) (engine.UploadTarget, error)
	UploadToPresignedURL(ctx context.Context, presignedURL string, data []byte, contentType string) error
	ExecuteJob(ctx context.Context, jobExecutionID string, payload map[string]engine.PayloadEntry) error
	JobStatus(ctx context.Context, jobExecutionID string) (map[string]interface{}, error)
	JobResults(ctx context.Context, jobExecutionID string) (map[string]interface{}, error)
	JobAudit(ctx context.Context, jobExecutionID string) (map[string]interface{}, error)
}

// ClientFactory builds an engine client for a resolved capability.
type ClientFactory func(capability engine.Capability) EngineClient

// StatusCache is an optional short-TTL cache consulted by status polling.
type StatusCache interface {
	Get(ctx context.Context, jobExecutionID string) (map[string]interface{}, bool)
	Set(ctx context.Context, jobExecutionID string, status map[string]interface{})
}

// Service ties the review flow together. It holds no cross-call state: the
// only durable fact a run leaves behind is a job_started audit record
// carrying the jobExecutionId.
type Service struct {
	repo     repository.Repository
	blobs    repository.BlobStore
	schemas  SchemaLoader
	resolver CapabilityResolver
	clients  ClientFactory
	statuses StatusCache
	logger   Logger

	// workflowIDOverride, when set, wins over the schema's own identifier.
	workflowIDOverride string
}

// NewService wires the review service. statuses may be nil to disable status
// caching; clients may be nil to use the real engine client.
func NewService(
	repo repository.Repository,
	blobs repository.BlobStore,
	schemas SchemaLoader,
	resolver CapabilityResolver,
	clients ClientFactory,
	statuses StatusCache,
	workflowIDOverride string,
	logger Logger,
) *Service {
	return &Service{
		repo:               repo,
		blobs:              blobs,
		schemas:            schemas,
		resolver:           resolver,
		clients:            clients,
		statuses:           statuses,
		logger:             logger,
		workflowIDOverride: workflowIDOverride,
	}
}

// LatestJobExecutionID recovers the correlation key of the most recently
// started review job for an application; last-write-wins.
func (s *Service) LatestJobExecutionID(ctx context.Context, applicationID string) (string, error) {
	entry, err := s.repo.LatestAuditByAction(ctx, applicationID, models.ActionJobStarted)
	if err != nil {
		return "", ErrNoJobStarted
	}
	candidate, ok := entry.Meta["jobExecutionId"].(string)
	if !ok || candidate == "" {
		return "", ErrNoJobStarted
	}
	return candidate, nil
}

// liveClient resolves the capability and returns a client for it, or
// ErrBackendUnavailable when the engine cannot be reached.
func (s *Service) liveClient() (EngineClient, engine.Capability, error) {
	capability := s.resolver.Resolve()
	if !capability.Enabled || capability.Endpoints == nil {
		return nil, capability, ErrBackendUnavailable
	}
	return s.clients(capability), capability, nil
}
