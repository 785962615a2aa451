package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "type": "object",
  "properties": {
    "question": {"type": "string", "maxLength": 20},
    "segment":  {"type": ["string", "null"]}
  },
  "required": ["question"],
  "additionalProperties": false
}`

func TestSchema_ValidateBytes(t *testing.T) {
	s := MustCompile(testSchema)

	tests := []struct {
		name      string
		doc       string
		wantValid bool
		wantField string
	}{
		{name: "valid", doc: `{"question":"top spenders?","segment":"SMB"}`, wantValid: true},
		{name: "null segment", doc: `{"question":"q","segment":null}`, wantValid: true},
		{name: "missing question", doc: `{"segment":"SMB"}`, wantValid: false},
		{name: "wrong type", doc: `{"question":42}`, wantValid: false, wantField: "question"},
		{name: "too long", doc: `{"question":"this question is far too long"}`, wantValid: false, wantField: "question"},
		{name: "extra field", doc: `{"question":"q","as_of":"2024-01-01"}`, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.ValidateBytes([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, res.Valid)
			if !tt.wantValid {
				require.NotEmpty(t, res.Errors)
				if tt.wantField != "" {
					assert.Equal(t, tt.wantField, res.Errors[0].Field)
				}
				assert.NotEmpty(t, res.String())
			}
		})
	}
}

func TestSchema_MalformedDocument(t *testing.T) {
	s := MustCompile(testSchema)
	_, err := s.ValidateBytes([]byte(`{"question":`))
	assert.Error(t, err)
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
	assert.Panics(t, func() { MustCompile(`not json`) })
}
