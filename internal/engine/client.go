package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrNotLive is returned when a live call is attempted against a capability
// that resolved to manual mode.
var ErrNotLive = errors.New("engine capability is not live")

// PayloadEntry is the value envelope the execute-job call expects for every
// input: the raw value together with its declared type and display name.
type PayloadEntry struct {
	Value       interface{} `json:"value"`
	Type        string      `json:"type"`
	DisplayName string      `json:"displayName"`
}

// UploadTarget is the engine's answer to a get-upload-url call.
type UploadTarget struct {
	PresignedURL string `json:"presignedUrl"`
	FileURL      string `json:"fileUrl"`
}

// Client issues authenticated JSON calls against the review engine as
// described by a resolved Capability.
type Client struct {
	capability Capability
	serviceKey string
	httpClient *http.Client
}

// NewClient creates a Client. The same http.Client is reused for engine calls
// and presigned uploads.
func NewClient(capability Capability, serviceKey string) *Client {
	return &Client{
		capability: capability,
		serviceKey: serviceKey,
		httpClient: http.DefaultClient,
	}
}

// Endpoints exposes the resolved endpoint templates; nil unless live.
func (c *Client) Endpoints() *Endpoints {
	return c.capability.Endpoints
}

// Request performs one engine call. body is JSON-encoded when non-nil; the
// response is decoded into out when non-nil. Non-2xx responses become
// RemoteError carrying the upstream status and raw body; 204 leaves out untouched.
func (c *Client) Request(ctx context.Context, method, endpoint string, body, out interface{}) error {
	if !c.capability.Enabled || c.capability.Mode != ModeLive ||
		c.capability.BaseURL == "" || c.capability.AuthHeaderName == "" || c.capability.Endpoints == nil {
		return ErrNotLive
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.capability.BaseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(c.capability.AuthHeaderName, c.serviceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call engine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return &RemoteError{Status: resp.StatusCode, Body: string(raw)}
	}

	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode engine response: %w", err)
	}
	return nil
}

// UploadToPresignedURL streams file bytes directly to a one-time upload URL.
// The presigned host does its own authorization, so no engine auth header is sent.
func (c *Client) UploadToPresignedURL(ctx context.Context, presignedURL string, data []byte, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, presignedURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return &RemoteError{Status: resp.StatusCode, Body: string(raw)}
	}
	return nil
}

// WorkflowDetails fetches the remote workflow definition; used as a fail-fast
// validity check before initiating a job.
func (c *Client) WorkflowDetails(ctx context.Context, workflowID string) (map[string]interface{}, error) {
	var details map[string]interface{}
	endpoint := ExpandWorkflowID(c.capability.Endpoints.WorkflowDetails, workflowID)
	if err := c.Request(ctx, http.MethodGet, endpoint, nil, &details); err != nil {
		return nil, err
	}
	return details, nil
}

// InitiateJob creates a remote job stub and returns its jobExecutionId.
func (c *Client) InitiateJob(ctx context.Context, workflowID, title, description string) (string, error) {
	var initiated struct {
		JobExecutionID string `json:"jobExecutionId"`
	}
	body := map[string]string{
		"workflowId":  workflowID,
		"title":       title,
		"description": description,
	}
	if err := c.Request(ctx, http.MethodPost, c.capability.Endpoints.InitiateJob, body, &initiated); err != nil {
		return "", err
	}
	return initiated.JobExecutionID, nil
}

// UploadURL obtains a fresh one-time upload target scoped by file extension.
func (c *Client) UploadURL(ctx context.Context, fileExtension string) (UploadTarget, error) {
	var target UploadTarget
	body := map[string]string{
		"fileExtension": fileExtension,
		"accessScope":   "workspace",
	}
	err := c.Request(ctx, http.MethodPost, c.capability.Endpoints.GetUploadURL, body, &target)
	return target, err
}

// ExecuteJob submits the assembled payload for a previously initiated job.
func (c *Client) ExecuteJob(ctx context.Context, jobExecutionID string, payload map[string]PayloadEntry) error {
	body := map[string]interface{}{
		"jobExecutionId":           jobExecutionID,
		"jobPayloadSchemaInstance": payload,
	}
	return c.Request(ctx, http.MethodPost, c.capability.Endpoints.ExecuteJob, body, nil)
}

// JobStatus polls the execution status of a job. Safe to call redundantly.
func (c *Client) JobStatus(ctx context.Context, jobExecutionID string) (map[string]interface{}, error) {
	var status map[string]interface{}
	endpoint := ExpandJobExecutionID(c.capability.Endpoints.Status, jobExecutionID)
	if err := c.Request(ctx, http.MethodGet, endpoint, nil, &status); err != nil {
		return nil, err
	}
	return status, nil
}

// JobResults fetches the raw result payload of a job.
func (c *Client) JobResults(ctx context.Context, jobExecutionID string) (map[string]interface{}, error) {
	var results map[string]interface{}
	endpoint := ExpandJobExecutionID(c.capability.Endpoints.Results, jobExecutionID)
	if err := c.Request(ctx, http.MethodGet, endpoint, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// JobAudit fetches the engine-side audit trail of a job.
func (c *Client) JobAudit(ctx context.Context, jobExecutionID string) (map[string]interface{}, error) {
	var audit map[string]interface{}
	endpoint := ExpandJobExecutionID(c.capability.Endpoints.Audit, jobExecutionID)
	if err := c.Request(ctx, http.MethodGet, endpoint, nil, &audit); err != nil {
		return nil, err
	}
	return audit, nil
}
