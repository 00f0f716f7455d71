package schemas

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResumeRecordSchema_ValidJSONSchema(t *testing.T) {
	var v map[string]any
	require.NoError(t, json.Unmarshal(ResumeRecordSchema(), &v))
	assert.Equal(t, "ResumeRecord", v["title"])
}

func TestValidateResumeRecord(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name: "full record",
			input: `{
				"name": "Jane",
				"summary": "Engineer",
				"education": ["BSc"],
				"skills": [{"Languages": ["Go"]}, {"Tools": "Git"}],
				"certifications": "Not available",
				"professional_experience": ["did things"],
				"projects": ["Not available"],
				"experience_data": [{"company": "A", "responsibilities": ["x"]}]
			}`,
		},
		{
			name:  "sentinel everywhere",
			input: `{"name": "Jane", "skills": "Not available", "experience_data": "Not available", "education": "Not available"}`,
		},
		{
			name:    "missing name",
			input:   `{"summary": "Engineer"}`,
			wantErr: true,
		},
		{
			name:    "skills wrong type",
			input:   `{"name": "Jane", "skills": 12}`,
			wantErr: true,
		},
		{
			name:    "experience entries must be objects",
			input:   `{"name": "Jane", "experience_data": [42]}`,
			wantErr: true,
		},
		{
			name:    "not an object",
			input:   `["Jane"]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResumeRecord([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateResumeRecord_FieldPaths(t *testing.T) {
	err := ValidateResumeRecord([]byte(`{"name": "Jane", "projects": {"a": 1}}`))
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.NotEmpty(t, validationErr.Errors)
	fields := make([]string, 0, len(validationErr.Errors))
	for _, fe := range validationErr.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, "projects")
}

func TestValidateResumeRecord_MalformedJSON(t *testing.T) {
	for _, input := range []string{`{"name": `, `{`, ``, `not json`} {
		err := ValidateResumeRecord([]byte(input))
		require.Error(t, err, "input %q", input)

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr, "input %q", input)
		require.Len(t, validationErr.Errors, 1)
		assert.Equal(t, "(root)", validationErr.Errors[0].Field)

		var loadErr *SchemaLoadError
		assert.False(t, errors.As(err, &loadErr), "malformed input is not a schema failure")
	}
}

func TestValidateJSONString_BrokenSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": `, `{"name": "test"}`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidateJSONString_MalformedDocument(t *testing.T) {
	err := ValidateJSONString(`{"type": "object"}`, `{"name":`)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
}

func TestResumeRecordSchema_ReturnsCopy(t *testing.T) {
	first := ResumeRecordSchema()
	first[0] = 'x'
	assert.NotEqual(t, byte('x'), ResumeRecordSchema()[0])
}

func TestValidateJSONString_Valid(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"}
		}
	}`
	jsonContent := `{"name": "test"}`

	err := ValidateJSONString(schemaContent, jsonContent)
	assert.NoError(t, err)
}

func TestValidateJSONString_Invalid(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"}
		}
	}`
	jsonContent := `{"age": 30}`

	err := ValidateJSONString(schemaContent, jsonContent)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "age", Message: "must be a number"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "name")
	assert.Contains(t, errorMsg, "age")
}
