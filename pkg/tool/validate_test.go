package tool

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danang/perkakas/pkg/schema"
)

func noopHandler(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	return "ok", nil
}

func validDefinition() Definition {
	return Definition{
		Name:        "read_file",
		Description: "Read a file from the workspace.",
		Parameters: schema.Object{
			Properties: map[string]schema.Property{
				"path": {Type: schema.TypeString},
			},
			Required: []string{"path"},
		},
	}
}

func TestValidateDefinition_Valid(t *testing.T) {
	err := ValidateDefinition(validDefinition(), noopHandler)
	assert.NoError(t, err)
}

func TestValidateDefinition_NameRules(t *testing.T) {
	cases := []struct {
		name  string
		valid bool
	}{
		{"read_file", true},
		{"fs.read", true},
		{"Tool2", true},
		{"", false},
		{"2fast", false},
		{"has space", false},
		{"dash-name", false},
		{"_leading", false},
	}

	for _, tc := range cases {
		def := validDefinition()
		def.Name = tc.name
		err := ValidateDefinition(def, noopHandler)
		if tc.valid {
			assert.NoError(t, err, "name %q should be valid", tc.name)
		} else {
			assert.ErrorIs(t, err, ErrInvalidDefinition, "name %q should be invalid", tc.name)
		}
	}
}

func TestValidateDefinition_DescriptionRequired(t *testing.T) {
	def := validDefinition()
	def.Description = ""

	err := ValidateDefinition(def, noopHandler)

	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestValidateDefinition_DescriptionTooLong(t *testing.T) {
	def := validDefinition()
	def.Description = strings.Repeat("x", maxDescriptionLength+1)

	err := ValidateDefinition(def, noopHandler)

	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestValidateDefinition_NilHandler(t *testing.T) {
	err := ValidateDefinition(validDefinition(), nil)

	var defErr *InvalidDefinitionError
	require.ErrorAs(t, err, &defErr)
	assert.Contains(t, defErr.Issues, "handler is required")
}

func TestValidateDefinition_CollectsAllIssues(t *testing.T) {
	def := Definition{}

	err := ValidateDefinition(def, nil)

	var defErr *InvalidDefinitionError
	require.ErrorAs(t, err, &defErr)
	assert.GreaterOrEqual(t, len(defErr.Issues), 3)
}

func TestValidateDefinition_InvalidPropertyType(t *testing.T) {
	def := validDefinition()
	def.Parameters.Properties["bad"] = schema.Property{Type: "tuple"}

	err := ValidateDefinition(def, noopHandler)

	var defErr *InvalidDefinitionError
	require.ErrorAs(t, err, &defErr)
	assert.Contains(t, defErr.Error(), "invalid type")
}

func TestValidateDefinition_RequiredReferencesDeclared(t *testing.T) {
	def := validDefinition()
	def.Parameters.Required = append(def.Parameters.Required, "ghost")

	err := ValidateDefinition(def, noopHandler)

	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestValidateDefinition_ItemsOnNonArray(t *testing.T) {
	def := validDefinition()
	def.Parameters.Properties["path"] = schema.Property{
		Type:  schema.TypeString,
		Items: &schema.Property{Type: schema.TypeString},
	}

	err := ValidateDefinition(def, noopHandler)

	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestValidateDefinition_NestedConstraints(t *testing.T) {
	def := validDefinition()
	def.Parameters.Properties["opts"] = schema.Property{
		Type: schema.TypeObject,
		Properties: map[string]schema.Property{
			"pattern": {Type: schema.TypeString, Pattern: "["},
		},
	}

	err := ValidateDefinition(def, noopHandler)

	var defErr *InvalidDefinitionError
	require.ErrorAs(t, err, &defErr)
	assert.Contains(t, defErr.Error(), "invalid pattern")
}

func TestValidateDefinition_BoundsOrdering(t *testing.T) {
	minLen, maxLen := 10, 2
	def := validDefinition()
	def.Parameters.Properties["path"] = schema.Property{
		Type:      schema.TypeString,
		MinLength: &minLen,
		MaxLength: &maxLen,
	}

	err := ValidateDefinition(def, noopHandler)

	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestValidateDefinition_RateLimit(t *testing.T) {
	def := validDefinition()
	def.RateLimit = &RateLimit{Requests: 0, Window: time.Minute}

	err := ValidateDefinition(def, noopHandler)
	assert.ErrorIs(t, err, ErrInvalidDefinition)

	def.RateLimit = &RateLimit{Requests: 10, Window: time.Minute}
	assert.NoError(t, ValidateDefinition(def, noopHandler))
}

func TestValidateDefinition_Examples(t *testing.T) {
	def := validDefinition()
	def.Examples = []Example{{Input: nil, Output: ""}}

	err := ValidateDefinition(def, noopHandler)

	var defErr *InvalidDefinitionError
	require.ErrorAs(t, err, &defErr)
	assert.Len(t, defErr.Issues, 2)
}

func TestInvalidDefinitionError_Unwrap(t *testing.T) {
	err := &InvalidDefinitionError{Name: "x", Issues: []string{"boom"}}

	assert.True(t, errors.Is(err, ErrInvalidDefinition))
	assert.Contains(t, err.Error(), "boom")
}
