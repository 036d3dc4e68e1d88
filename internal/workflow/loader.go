package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Errors returned by the schema loader.
var (
	ErrSchemaNotFound = errors.New("workflow schema not found")
	ErrSchemaInvalid  = errors.New("workflow schema invalid")
)

// DefaultSchemaPaths are the candidate locations checked when the
// configuration does not name an explicit schema file.
var DefaultSchemaPaths = []string{
	filepath.Join("documentation", "workflow.json"),
	filepath.Join("documentation", "agents", "workflow.json"),
}

// Loader reads the workflow schema from the first available candidate path.
// The schema is external truth that may change between deployments, so no
// caching is done; callers reload per request.
type Loader struct {
	candidates []string
}

// NewLoader creates a Loader over the given candidate paths, falling back to
// DefaultSchemaPaths when none are provided.
func NewLoader(paths ...string) *Loader {
	if len(paths) == 0 {
		paths = DefaultSchemaPaths
	}
	return &Loader{candidates: paths}
}

// Load reads and parses the schema document. A missing file moves on to the
// next candidate; a present but unparseable file fails with ErrSchemaInvalid.
// Missing jobPayloadSchema/jobResultsPayloadSchema sections default to empty
// mappings rather than failing.
func (l *Loader) Load() (*Schema, error) {
	for _, candidate := range l.candidates {
		data, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		return parseSchema(data, candidate)
	}
	return nil, fmt.Errorf("%w: expected one of %v", ErrSchemaNotFound, l.candidates)
}

func parseSchema(data []byte, source string) (*Schema, error) {
	// The document must be a JSON object; anything else is a config error.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSchemaInvalid, source, err)
	}

	var schema Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSchemaInvalid, source, err)
	}
	if schema.Inputs == nil {
		schema.Inputs = map[string]*Variable{}
	}
	if schema.Results == nil {
		schema.Results = map[string]*Variable{}
	}
	return &schema, nil
}
