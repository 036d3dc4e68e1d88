package workflow

import (
	"strings"
)

// DocumentSample describes a demo document derived from a file-typed schema
// variable, used by the seed command.
type DocumentSample struct {
	InputKey string
	URL      string
	Filename string
	MimeType string
}

var mimeByExt = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".csv":  "text/csv",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".txt":  "text/plain",
	".json": "application/json",
	".html": "text/html",
	".xml":  "application/xml",
}

// MimeTypeForFilename maps a filename's extension to a content type,
// defaulting to application/octet-stream.
func MimeTypeForFilename(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return "application/octet-stream"
	}
	if mime, ok := mimeByExt[strings.ToLower(filename[idx:])]; ok {
		return mime
	}
	return "application/octet-stream"
}

// SampleValue derives a demo value for a variable: the schema-declared
// literal when present, otherwise a value built recursively from the type
// definition. Returns nil when nothing can be derived.
func SampleValue(v *Variable) interface{} {
	if v == nil {
		return nil
	}

	if v.Value != nil {
		switch v.Type {
		case TypeArray:
			if arr, ok := v.Value.([]interface{}); ok && len(arr) > 0 {
				return arr
			}
		case TypeObject:
			if obj, ok := isRecord(v.Value); ok && len(obj) > 0 {
				return obj
			}
		default:
			return v.Value
		}
	}

	if v.TypeDef == nil {
		return v.Value
	}

	if v.Type == TypeArray && v.TypeDef.Element != nil {
		return []interface{}{SampleValue(v.TypeDef.Element)}
	}

	if v.Type == TypeObject && v.TypeDef.Fields != nil {
		result := make(map[string]interface{}, len(v.TypeDef.Fields))
		for key, nested := range v.TypeDef.Fields {
			if nested != nil {
				result[key] = SampleValue(nested)
			}
		}
		return result
	}

	return v.Value
}
