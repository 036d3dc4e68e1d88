package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeResults(t *testing.T) {
	t.Run("FlatPayloadIsIdentity", func(t *testing.T) {
		payload := map[string]interface{}{
			"doc_status": "Valid",
			"score":      0.92,
		}
		assert.Equal(t, payload, NormalizeResults(payload))
	})

	t.Run("DeepestNestingWithEnvelopes", func(t *testing.T) {
		payload := map[string]interface{}{
			"results": map[string]interface{}{
				"data": map[string]interface{}{
					"jobResultsPayloadSchema": map[string]interface{}{
						"a": map[string]interface{}{"value": float64(1), "type": "float"},
					},
				},
			},
		}
		assert.Equal(t, map[string]interface{}{"a": float64(1)}, NormalizeResults(payload))
	})

	t.Run("UnwrapPriorityOrder", func(t *testing.T) {
		tests := []struct {
			name    string
			payload map[string]interface{}
			want    map[string]interface{}
		}{
			{
				name: "results.data",
				payload: map[string]interface{}{
					"results": map[string]interface{}{
						"data": map[string]interface{}{"a": "x"},
					},
				},
				want: map[string]interface{}{"a": "x"},
			},
			{
				name: "results.jobResultsPayloadSchema",
				payload: map[string]interface{}{
					"results": map[string]interface{}{
						"jobResultsPayloadSchema": map[string]interface{}{"a": "x"},
					},
				},
				want: map[string]interface{}{"a": "x"},
			},
			{
				name: "results",
				payload: map[string]interface{}{
					"results": map[string]interface{}{"a": "x"},
				},
				want: map[string]interface{}{"a": "x"},
			},
			{
				name: "jobResultsPayloadSchema",
				payload: map[string]interface{}{
					"jobResultsPayloadSchema": map[string]interface{}{"a": "x"},
				},
				want: map[string]interface{}{"a": "x"},
			},
			{
				name: "data",
				payload: map[string]interface{}{
					"data": map[string]interface{}{"a": "x"},
				},
				want: map[string]interface{}{"a": "x"},
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.want, NormalizeResults(tt.payload))
			})
		}
	})

	t.Run("NonObjectWrapperFallsThrough", func(t *testing.T) {
		// A string "results" key is not a wrapper; the top level is the map.
		payload := map[string]interface{}{"results": "done", "a": "x"}
		assert.Equal(t, payload, NormalizeResults(payload))
	})

	t.Run("MixedEnvelopePayload", func(t *testing.T) {
		// One envelope triggers unwrapping for envelope entries only; plain
		// entries pass through.
		payload := map[string]interface{}{
			"a": map[string]interface{}{"value": "yes", "type": "str"},
			"b": "plain",
		}
		assert.Equal(t, map[string]interface{}{"a": "yes", "b": "plain"}, NormalizeResults(payload))
	})

	t.Run("ObjectWithoutTypeIsNotEnvelope", func(t *testing.T) {
		payload := map[string]interface{}{
			"a": map[string]interface{}{"value": "yes"},
		}
		assert.Equal(t, payload, NormalizeResults(payload))
	})

	t.Run("Idempotent", func(t *testing.T) {
		payload := map[string]interface{}{
			"results": map[string]interface{}{
				"a": map[string]interface{}{"value": true, "type": "bool"},
			},
		}
		once := NormalizeResults(payload)
		assert.Equal(t, once, NormalizeResults(once))
	})

	t.Run("NonObjectPayload", func(t *testing.T) {
		assert.Equal(t, map[string]interface{}{}, NormalizeResults(nil))
		assert.Equal(t, map[string]interface{}{}, NormalizeResults("oops"))
		assert.Equal(t, map[string]interface{}{}, NormalizeResults([]interface{}{1, 2}))
	})
}
