// Package api contains the HTTP handlers for the compliance review service
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"vendor-compliance/backend/internal/auth"
	"vendor-compliance/backend/internal/compliance"
	"vendor-compliance/backend/internal/engine"
	"vendor-compliance/backend/internal/repository"
	"vendor-compliance/backend/internal/workflow"
	"vendor-compliance/backend/pkg/models"
)

// Server holds the dependencies for the API server.
type Server struct {
	Reviews  *compliance.Service
	Repo     repository.Repository
	Schemas  compliance.SchemaLoader
	Resolver compliance.CapabilityResolver
	Logger   compliance.Logger
}

// NewServer creates a new Server.
func NewServer(reviews *compliance.Service, repo repository.Repository, schemas compliance.SchemaLoader, resolver compliance.CapabilityResolver, logger compliance.Logger) *Server {
	return &Server{
		Reviews:  reviews,
		Repo:     repo,
		Schemas:  schemas,
		Resolver: resolver,
		Logger:   logger,
	}
}

// RegisterRoutes mounts the review API onto an echo group.
func RegisterRoutes(g *echo.Group, s *Server) {
	g.GET("/workflow/schema", s.GetWorkflowSchema)
	g.POST("/applications/:id/review/run", s.RunReview)
	g.POST("/applications/:id/review/results", s.SaveResults)
	g.GET("/applications/:id/review/status", s.GetStatus)
	g.GET("/applications/:id/review/audit", s.GetEngineAudit)
	g.GET("/applications/:id/review/rendered", s.GetRenderedResults)
}

// HealthStatus represents the health check response
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

// HandleHealth returns basic health status (always returns 200 OK)
func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Service:   "vendor-compliance",
		Version:   "1.0.0",
	})
}

// errorResponse is the error body every failure is translated into. The
// underlying reason text is always surfaced, never swallowed; ManualFallback
// tells the UI to offer the manual-data-entry path instead of "try again".
type errorResponse struct {
	Error          string `json:"error"`
	ManualFallback bool   `json:"manual_fallback,omitempty"`
}

func reviewError(c echo.Context, err error) error {
	var missing *compliance.MissingInputError
	switch {
	case errors.Is(err, repository.ErrApplicationNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "Application not found"})
	case errors.Is(err, compliance.ErrBackendUnavailable),
		errors.Is(err, compliance.ErrConfigurationMissing),
		errors.Is(err, workflow.ErrSchemaNotFound),
		errors.Is(err, workflow.ErrSchemaInvalid):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), ManualFallback: true})
	case errors.Is(err, compliance.ErrInvalidState),
		errors.Is(err, compliance.ErrNoJobStarted),
		errors.As(err, &missing):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		// Remote failures keep their upstream status where derivable.
		return c.JSON(engine.StatusFromError(err), errorResponse{Error: err.Error()})
	}
}

func requestUser(c echo.Context) (string, error) {
	userID, ok := auth.UserID(c.Request().Context())
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "user identity not found in context")
	}
	return userID, nil
}

// GetWorkflowSchema returns the loaded schema plus the current capability,
// so the UI knows whether live review is available.
// (GET /api/v1/workflow/schema)
func (s *Server) GetWorkflowSchema(c echo.Context) error {
	if _, err := requestUser(c); err != nil {
		return err
	}

	schema, err := s.Schemas.Load()
	if err != nil {
		return reviewError(c, err)
	}

	capability := s.Resolver.Resolve()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"schema": schema,
		"capability": map[string]interface{}{
			"enabled": capability.Enabled,
			"mode":    capability.Mode,
			"reason":  capability.Reason,
		},
	})
}

// RunReview starts a live review job for an application.
// (POST /api/v1/applications/:id/review/run)
func (s *Server) RunReview(c echo.Context) error {
	userID, err := requestUser(c)
	if err != nil {
		return err
	}
	applicationID := c.Param("id")
	ctx := c.Request().Context()

	started, err := s.Reviews.StartReview(ctx, userID, applicationID)
	if err != nil {
		// Unexpected failures are recorded so admins can see what went wrong;
		// user-correctable preconditions are not.
		if !isPreconditionFailure(err) {
			auditErr := s.Repo.AppendAudit(ctx, &models.AuditEntry{
				ID:            uuid.New().String(),
				ApplicationID: applicationID,
				ActorUserID:   userID,
				Action:        models.ActionJobStartFailed,
				Meta:          map[string]interface{}{"error": err.Error()},
			})
			if auditErr != nil {
				s.Logger.Error("failed to record job start failure", "application_id", applicationID, "error", auditErr)
			}
		}
		return reviewError(c, err)
	}

	return c.JSON(http.StatusOK, started)
}

func isPreconditionFailure(err error) bool {
	var missing *compliance.MissingInputError
	return errors.Is(err, compliance.ErrBackendUnavailable) ||
		errors.Is(err, compliance.ErrInvalidState) ||
		errors.Is(err, repository.ErrApplicationNotFound) ||
		errors.As(err, &missing)
}

type saveResultsRequest struct {
	JobExecutionID   string                 `json:"jobExecutionId"`
	ManualResultJSON map[string]interface{} `json:"manualResultJson"`
}

// SaveResults fetches (or accepts) a result payload and persists it.
// (POST /api/v1/applications/:id/review/results)
func (s *Server) SaveResults(c echo.Context) error {
	userID, err := requestUser(c)
	if err != nil {
		return err
	}

	var req saveResultsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}

	output, err := s.Reviews.SaveResults(c.Request().Context(), userID, c.Param("id"), compliance.SaveResultsInput{
		JobExecutionID: req.JobExecutionID,
		ManualResult:   req.ManualResultJSON,
	})
	if err != nil {
		return reviewError(c, err)
	}
	return c.JSON(http.StatusOK, output)
}

// GetStatus polls the engine for the current job execution status.
// (GET /api/v1/applications/:id/review/status)
func (s *Server) GetStatus(c echo.Context) error {
	userID, err := requestUser(c)
	if err != nil {
		return err
	}

	status, jobExecutionID, err := s.Reviews.JobStatus(
		c.Request().Context(), userID, c.Param("id"), c.QueryParam("jobExecutionId"))
	if err != nil {
		return reviewError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":         status,
		"jobExecutionId": jobExecutionID,
	})
}

// GetEngineAudit returns the engine-side audit trail for a job.
// (GET /api/v1/applications/:id/review/audit)
func (s *Server) GetEngineAudit(c echo.Context) error {
	userID, err := requestUser(c)
	if err != nil {
		return err
	}

	audit, jobExecutionID, err := s.Reviews.EngineAudit(
		c.Request().Context(), userID, c.Param("id"), c.QueryParam("jobExecutionId"))
	if err != nil {
		return reviewError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"audit":          audit,
		"jobExecutionId": jobExecutionID,
	})
}

// GetRenderedResults flattens a saved result against the result schema into
// display-ready rows.
// (GET /api/v1/applications/:id/review/rendered)
func (s *Server) GetRenderedResults(c echo.Context) error {
	userID, err := requestUser(c)
	if err != nil {
		return err
	}

	app, err := s.Repo.GetApplication(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return reviewError(c, err)
	}

	schema, err := s.Schemas.Load()
	if err != nil {
		return reviewError(c, err)
	}

	if app.Result == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"rows":      []workflow.ResultRow{},
			"workItems": []compliance.WorkItem{},
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"rows":      workflow.FlattenResults(schema.Results, app.Result),
		"workItems": compliance.ExtractWorkItems(workflow.NormalizeResults(app.Result)),
	})
}
