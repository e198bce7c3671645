// Package schema validates and coerces tool parameters against a
// JSON-Schema-like description.
//
// Invariants:
// - Validation reports every error found, not just the first.
// - Coercion never mutates the input value; a new value tree is returned.
// - Property types form a closed set; unknown types are rejected up front.
package schema

import "fmt"

// Type is the closed set of property types a tool schema may declare.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
	TypeNull    Type = "null"
)

// AllTypes returns every valid property type.
func AllTypes() []Type {
	return []Type{
		TypeString,
		TypeNumber,
		TypeInteger,
		TypeBoolean,
		TypeArray,
		TypeObject,
		TypeNull,
	}
}

// IsValidType checks if a type is one of the closed set.
func IsValidType(t Type) bool {
	switch t {
	case TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeArray, TypeObject, TypeNull:
		return true
	}
	return false
}

// Property describes a single named parameter. Only the constraint fields
// valid for the declared Type are consulted during validation.
type Property struct {
	Type        Type                `json:"type"`
	Description string              `json:"description,omitempty"`
	Enum        []interface{}       `json:"enum,omitempty"`
	MinLength   *int                `json:"minLength,omitempty"`
	MaxLength   *int                `json:"maxLength,omitempty"`
	Minimum     *float64            `json:"minimum,omitempty"`
	Maximum     *float64            `json:"maximum,omitempty"`
	Pattern     string              `json:"pattern,omitempty"`
	Items       *Property           `json:"items,omitempty"`
	Properties  map[string]Property `json:"properties,omitempty"`
	Required    []string            `json:"required,omitempty"`
	Default     interface{}         `json:"default,omitempty"`

	// AdditionalProperties applies to object-typed properties only. Nil or
	// true passes unknown keys through; false rejects them.
	AdditionalProperties *bool `json:"additionalProperties,omitempty"`
}

// Object is the top-level parameter schema of a tool. Input payloads must be
// non-array objects.
type Object struct {
	Properties           map[string]Property `json:"properties"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties *bool               `json:"additionalProperties,omitempty"`
}

// Error codes reported by Validate.
const (
	CodeInvalidInput    = "INVALID_INPUT"
	CodeInvalidType     = "INVALID_TYPE"
	CodeRequiredField   = "REQUIRED_FIELD"
	CodeEnumMismatch    = "ENUM_MISMATCH"
	CodeMinLength       = "MIN_LENGTH"
	CodeMaxLength       = "MAX_LENGTH"
	CodeMinimum         = "MINIMUM"
	CodeMaximum         = "MAXIMUM"
	CodePatternMismatch = "PATTERN_MISMATCH"
	CodeUnknownProperty = "UNKNOWN_PROPERTY"
	CodeInvalidPattern  = "INVALID_PATTERN"
)

// ValidationError is a single structured validation failure.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}
