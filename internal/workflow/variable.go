// Package workflow models the externally-defined job schema: the named,
// typed input and result slots a review job exchanges with the engine.
package workflow

import (
	"encoding/json"
	"strings"
)

// VariableType enumerates the wire-level types a schema variable may declare.
type VariableType string

const (
	TypeString    VariableType = "str"
	TypeFloat     VariableType = "float"
	TypeBool      VariableType = "bool"
	TypeDate      VariableType = "date"
	TypeFile      VariableType = "file"
	TypeArray     VariableType = "array"
	TypeFileArray VariableType = "array_files"
	TypeObject    VariableType = "object"
)

// Variable describes one named input or output slot of a workflow job.
type Variable struct {
	Name        string          `json:"variable_name"`
	DisplayName string          `json:"display_name,omitempty"`
	Description string          `json:"description,omitempty"`
	Type        VariableType    `json:"type"`
	Nullable    bool            `json:"is_nullable,omitempty"`
	TypeDef     *TypeDefinition `json:"type_definition,omitempty"`
	// Value holds a literal sample/default supplied by the schema document.
	Value interface{} `json:"value,omitempty"`
}

// Label returns the display name, falling back to a prettified key.
func (v *Variable) Label(key string) string {
	if v != nil && v.DisplayName != "" {
		return v.DisplayName
	}
	return PrettyLabel(key)
}

// PrettyLabel turns a snake_case key into a title-cased label.
func PrettyLabel(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// TypeDefinition is the recursive shape behind object and array variables.
// For an object variable Fields maps field name to its variable description;
// for an array variable Element describes the element type. At most one is set.
type TypeDefinition struct {
	Fields  map[string]*Variable
	Element *Variable
}

// UnmarshalJSON distinguishes the two shapes the schema document uses for
// type_definition: a single variable description (arrays) or a mapping of
// field name to variable description (objects). Any other shape, including
// free-form strings some documents carry, is ignored rather than rejected.
func (td *TypeDefinition) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || strings.HasPrefix(trimmed, "\"") {
		return nil
	}

	// A variable description always declares a string "type".
	var probe struct {
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err == nil && probe.Type != nil {
		var elem Variable
		if err := json.Unmarshal(data, &elem); err != nil {
			return err
		}
		td.Element = &elem
		return nil
	}

	var fields map[string]*Variable
	if err := json.Unmarshal(data, &fields); err != nil {
		// Tolerate unknown shapes; the schema is external truth.
		return nil
	}
	td.Fields = fields
	return nil
}

// MarshalJSON emits the same shape the document used.
func (td *TypeDefinition) MarshalJSON() ([]byte, error) {
	if td.Element != nil {
		return json.Marshal(td.Element)
	}
	if td.Fields != nil {
		return json.Marshal(td.Fields)
	}
	return []byte("null"), nil
}

// Schema is the immutable pair of input and result variable mappings for a
// deployment's workflow, loaded from an external declarative document.
type Schema struct {
	WorkflowID string               `json:"workflowId,omitempty"`
	Name       string               `json:"name,omitempty"`
	Inputs     map[string]*Variable `json:"jobPayloadSchema"`
	Results    map[string]*Variable `json:"jobResultsPayloadSchema"`
}
