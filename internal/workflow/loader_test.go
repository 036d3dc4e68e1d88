package workflow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSchemaFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workflow.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		loader := NewLoader(filepath.Join(t.TempDir(), "missing.json"))
		_, err := loader.Load()
		assert.ErrorIs(t, err, ErrSchemaNotFound)
	})

	t.Run("FallsThroughToSecondCandidate", func(t *testing.T) {
		path := writeSchemaFile(t, `{"workflowId":"wf-1"}`)
		loader := NewLoader(filepath.Join(t.TempDir(), "missing.json"), path)
		schema, err := loader.Load()
		require.NoError(t, err)
		assert.Equal(t, "wf-1", schema.WorkflowID)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		path := writeSchemaFile(t, `{not json`)
		_, err := NewLoader(path).Load()
		assert.ErrorIs(t, err, ErrSchemaInvalid)
	})

	t.Run("NonObjectDocument", func(t *testing.T) {
		path := writeSchemaFile(t, `[1,2,3]`)
		_, err := NewLoader(path).Load()
		assert.ErrorIs(t, err, ErrSchemaInvalid)
	})

	t.Run("PartialDocumentDefaultsToEmptyMappings", func(t *testing.T) {
		path := writeSchemaFile(t, `{"workflowId":"wf-2"}`)
		schema, err := NewLoader(path).Load()
		require.NoError(t, err)
		assert.NotNil(t, schema.Inputs)
		assert.NotNil(t, schema.Results)
		assert.Empty(t, schema.Inputs)
		assert.Empty(t, schema.Results)
	})

	t.Run("FullDocument", func(t *testing.T) {
		path := writeSchemaFile(t, `{
			"workflowId": "wf-3",
			"name": "Vendor Compliance",
			"jobPayloadSchema": {
				"tax_certificate": {
					"variable_name": "tax_certificate",
					"display_name": "Tax Certificate",
					"type": "file",
					"is_nullable": false
				},
				"contact": {
					"variable_name": "contact",
					"type": "object",
					"type_definition": {
						"email": {"variable_name": "email", "type": "str", "value": "a@b.c"}
					}
				},
				"references": {
					"variable_name": "references",
					"type": "array",
					"type_definition": {"variable_name": "reference", "type": "str", "value": "ref"}
				}
			},
			"jobResultsPayloadSchema": {
				"doc_status": {"variable_name": "doc_status", "type": "str"}
			}
		}`)

		schema, err := NewLoader(path).Load()
		require.NoError(t, err)
		assert.Equal(t, "wf-3", schema.WorkflowID)
		assert.Len(t, schema.Inputs, 3)
		assert.Len(t, schema.Results, 1)

		file := schema.Inputs["tax_certificate"]
		require.NotNil(t, file)
		assert.Equal(t, TypeFile, file.Type)
		assert.False(t, file.Nullable)
		assert.Equal(t, "Tax Certificate", file.Label("tax_certificate"))

		// object type_definition parses into field mappings
		contact := schema.Inputs["contact"]
		require.NotNil(t, contact)
		require.NotNil(t, contact.TypeDef)
		require.Contains(t, contact.TypeDef.Fields, "email")
		assert.Equal(t, TypeString, contact.TypeDef.Fields["email"].Type)
		assert.Nil(t, contact.TypeDef.Element)

		// array type_definition parses into an element variable
		refs := schema.Inputs["references"]
		require.NotNil(t, refs)
		require.NotNil(t, refs.TypeDef)
		require.NotNil(t, refs.TypeDef.Element)
		assert.Equal(t, TypeString, refs.TypeDef.Element.Type)
		assert.Nil(t, refs.TypeDef.Fields)
	})

	t.Run("StringTypeDefinitionTolerated", func(t *testing.T) {
		path := writeSchemaFile(t, `{
			"jobPayloadSchema": {
				"note": {"variable_name": "note", "type": "str", "type_definition": "free text"}
			}
		}`)
		schema, err := NewLoader(path).Load()
		require.NoError(t, err)
		note := schema.Inputs["note"]
		require.NotNil(t, note)
		require.NotNil(t, note.TypeDef)
		assert.Nil(t, note.TypeDef.Fields)
		assert.Nil(t, note.TypeDef.Element)
	})
}

func TestSampleValue(t *testing.T) {
	t.Run("LiteralWins", func(t *testing.T) {
		v := &Variable{Type: TypeString, Value: "hello"}
		assert.Equal(t, "hello", SampleValue(v))
	})

	t.Run("ArrayFromElementDefinition", func(t *testing.T) {
		v := &Variable{
			Type:    TypeArray,
			TypeDef: &TypeDefinition{Element: &Variable{Type: TypeString, Value: "ref"}},
		}
		assert.Equal(t, []interface{}{"ref"}, SampleValue(v))
	})

	t.Run("ObjectFromFieldDefinitions", func(t *testing.T) {
		v := &Variable{
			Type: TypeObject,
			TypeDef: &TypeDefinition{Fields: map[string]*Variable{
				"email": {Type: TypeString, Value: "a@b.c"},
			}},
		}
		assert.Equal(t, map[string]interface{}{"email": "a@b.c"}, SampleValue(v))
	})

	t.Run("NilVariable", func(t *testing.T) {
		assert.Nil(t, SampleValue(nil))
	})
}

func TestMimeTypeForFilename(t *testing.T) {
	assert.Equal(t, "application/pdf", MimeTypeForFilename("certificate.pdf"))
	assert.Equal(t, "image/jpeg", MimeTypeForFilename("photo.JPG"))
	assert.Equal(t, "application/octet-stream", MimeTypeForFilename("noext"))
	assert.Equal(t, "application/octet-stream", MimeTypeForFilename("weird.xyz"))
}
