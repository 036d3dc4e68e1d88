// Package engine talks to the remote compliance review engine: it resolves
// whether the engine is reachable from a human-authored API reference
// document, and issues authenticated HTTP calls against it.
package engine

import (
	"os"
	"regexp"
	"strings"
)

// Mode says how the product operates against the engine.
type Mode string

const (
	ModeLive   Mode = "live"
	ModeManual Mode = "manual"
)

// ReasonUnconfigured is the downgrade reason used whenever the API reference
// document is missing or incomplete.
const ReasonUnconfigured = "compliance engine integration requires API reference configuration"

// Endpoints holds the seven path templates the engine exposes. Templates
// contain {workflowId} or {jobExecutionId} placeholders substituted by callers.
type Endpoints struct {
	WorkflowDetails string
	InitiateJob     string
	GetUploadURL    string
	ExecuteJob      string
	Status          string
	Results         string
	Audit           string
}

// Capability describes whether and how the engine can currently be reached.
// Endpoints is non-nil exactly when Enabled is true.
type Capability struct {
	Enabled        bool
	Mode           Mode
	Reason         string
	BaseURL        string
	AuthHeaderName string
	Endpoints      *Endpoints
}

// CapabilityResolver extracts engine configuration from a semi-structured
// markdown API reference. It is deliberately tolerant: a missing or malformed
// document downgrades to manual mode instead of failing, because the product
// must stay usable without live engine access.
type CapabilityResolver struct {
	docsPath        string
	baseURLOverride string
	serviceKey      string
}

// NewCapabilityResolver wires the resolver with its configuration. The base
// URL override, when set, takes precedence over the document-derived value.
func NewCapabilityResolver(docsPath, baseURLOverride, serviceKey string) *CapabilityResolver {
	return &CapabilityResolver{
		docsPath:        docsPath,
		baseURLOverride: baseURLOverride,
		serviceKey:      serviceKey,
	}
}

var (
	baseURLPattern    = regexp.MustCompile("(?i)Base URL:\\s*`([^`]+)`")
	authHeaderPattern = regexp.MustCompile("(?i)Auth header[^`]*`([^`]+)`")
)

// extractEndpoint pulls the Method/Path line out of a numbered "### n) Title"
// section of the reference document.
func extractEndpoint(markdown, sectionTitle, method string) string {
	pattern := regexp.MustCompile(
		"(?is)###\\s+\\d+\\)\\s*" + regexp.QuoteMeta(sectionTitle) +
			".*?-\\s*Method/Path:\\s*`" + method + "\\s+([^`]+)`",
	)
	match := pattern.FindStringSubmatch(markdown)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}

// hasRequiredBaseSetup sanity-checks that the document carries both a base-URL
// marker and the auth-header marker, guarding against truncated documents.
func hasRequiredBaseSetup(markdown string) bool {
	return strings.Contains(markdown, "Base URL:") && strings.Contains(markdown, "x-service-key")
}

func manualCapability(base Capability) Capability {
	base.Enabled = false
	base.Mode = ModeManual
	base.Reason = ReasonUnconfigured
	return base
}

// Resolve reads the reference document and derives the engine capability.
// enabled=true requires all seven endpoints, a base URL, an auth header name,
// the document sanity markers and a configured service credential; any gap
// yields manual mode.
func (r *CapabilityResolver) Resolve() Capability {
	markdown, err := os.ReadFile(r.docsPath)
	if err != nil {
		return manualCapability(Capability{})
	}
	doc := string(markdown)

	capability := Capability{
		BaseURL:        r.baseURLOverride,
		AuthHeaderName: "x-service-key",
	}
	if capability.BaseURL == "" {
		if m := baseURLPattern.FindStringSubmatch(doc); m != nil {
			capability.BaseURL = strings.TrimSpace(m[1])
		}
	}
	if m := authHeaderPattern.FindStringSubmatch(doc); m != nil {
		if name := strings.TrimSpace(strings.SplitN(m[1], ":", 2)[0]); name != "" {
			capability.AuthHeaderName = name
		}
	}

	endpoints := Endpoints{
		WorkflowDetails: extractEndpoint(doc, "Get Workflow Details", "GET"),
		InitiateJob:     extractEndpoint(doc, "Initiate Job", "POST"),
		GetUploadURL:    extractEndpoint(doc, "Get Upload URL", "POST"),
		ExecuteJob:      extractEndpoint(doc, "Execute Job", "POST"),
		Status:          extractEndpoint(doc, "Get Job Execution Status", "GET"),
		Results:         extractEndpoint(doc, "Get Job Execution Results", "GET"),
		Audit:           extractEndpoint(doc, "Job Audit Log", "GET"),
	}

	// Absence of any single template invalidates the whole endpoint set.
	complete := endpoints.WorkflowDetails != "" && endpoints.InitiateJob != "" &&
		endpoints.GetUploadURL != "" && endpoints.ExecuteJob != "" &&
		endpoints.Status != "" && endpoints.Results != "" && endpoints.Audit != ""
	if complete {
		capability.Endpoints = &endpoints
	}

	if capability.BaseURL == "" || capability.Endpoints == nil ||
		!hasRequiredBaseSetup(doc) || r.serviceKey == "" {
		return manualCapability(capability)
	}

	capability.Enabled = true
	capability.Mode = ModeLive
	return capability
}

// ExpandWorkflowID substitutes the {workflowId} placeholder in a template.
func ExpandWorkflowID(template, workflowID string) string {
	return strings.ReplaceAll(template, "{workflowId}", workflowID)
}

// ExpandJobExecutionID substitutes the {jobExecutionId} placeholder in a template.
func ExpandJobExecutionID(template, jobExecutionID string) string {
	return strings.ReplaceAll(template, "{jobExecutionId}", jobExecutionID)
}
