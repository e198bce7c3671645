package tool

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/danang/perkakas/pkg/schema"
)

const maxDescriptionLength = 500

var namePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.]*$`)

// InvalidDefinitionError collects every problem found in a definition.
// Registration fails with the full list rather than the first violation.
type InvalidDefinitionError struct {
	Name   string
	Issues []string
}

// Error implements the error interface.
func (e *InvalidDefinitionError) Error() string {
	name := e.Name
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("invalid tool definition %q: %s", name, strings.Join(e.Issues, "; "))
}

// Unwrap lets callers branch on ErrInvalidDefinition.
func (e *InvalidDefinitionError) Unwrap() error {
	return ErrInvalidDefinition
}

// ValidateDefinition checks a definition before it may enter a registry.
// Returns nil when valid, otherwise an *InvalidDefinitionError listing every
// violation found.
func ValidateDefinition(def Definition, handler Handler) error {
	var issues []string

	if def.Name == "" {
		issues = append(issues, "name is required")
	} else if !namePattern.MatchString(def.Name) {
		issues = append(issues, fmt.Sprintf("name %q must start with a letter and contain only letters, digits, dots, and underscores", def.Name))
	}

	if def.Description == "" {
		issues = append(issues, "description is required")
	} else if len(def.Description) > maxDescriptionLength {
		issues = append(issues, fmt.Sprintf("description exceeds %d characters", maxDescriptionLength))
	}

	if handler == nil {
		issues = append(issues, "handler is required")
	}

	issues = append(issues, validateProperties(def.Parameters.Properties, "parameters")...)
	issues = append(issues, validateRequired(def.Parameters.Required, def.Parameters.Properties, "parameters")...)

	if def.Timeout < 0 {
		issues = append(issues, "timeout must be positive")
	}
	if def.RateLimit != nil {
		if def.RateLimit.Requests <= 0 {
			issues = append(issues, "rate limit requests must be positive")
		}
		if def.RateLimit.Window <= 0 {
			issues = append(issues, "rate limit window must be positive")
		}
	}
	for i, example := range def.Examples {
		if example.Input == nil {
			issues = append(issues, fmt.Sprintf("example %d is missing input", i))
		}
		if example.Output == "" {
			issues = append(issues, fmt.Sprintf("example %d is missing output", i))
		}
	}

	// A definition that passes the structural checks must also compile as a
	// JSON Schema document, since that is what model providers receive.
	if len(issues) == 0 {
		loader := gojsonschema.NewGoLoader(def.Parameters.JSONSchema())
		if _, err := gojsonschema.NewSchema(loader); err != nil {
			issues = append(issues, fmt.Sprintf("parameter schema does not compile: %v", err))
		}
	}

	if len(issues) > 0 {
		return &InvalidDefinitionError{Name: def.Name, Issues: issues}
	}
	return nil
}

func validateProperties(props map[string]schema.Property, path string) []string {
	var issues []string
	for name, prop := range props {
		propPath := path + "." + name
		if name == "" {
			issues = append(issues, fmt.Sprintf("%s: property name cannot be empty", path))
		}
		issues = append(issues, validateProperty(prop, propPath)...)
	}
	return issues
}

func validateProperty(prop schema.Property, path string) []string {
	var issues []string

	if !schema.IsValidType(prop.Type) {
		issues = append(issues, fmt.Sprintf("%s: invalid type %q", path, prop.Type))
		return issues
	}

	if prop.MinLength != nil && prop.MaxLength != nil && *prop.MinLength > *prop.MaxLength {
		issues = append(issues, fmt.Sprintf("%s: minLength exceeds maxLength", path))
	}
	if prop.Minimum != nil && prop.Maximum != nil && *prop.Minimum > *prop.Maximum {
		issues = append(issues, fmt.Sprintf("%s: minimum exceeds maximum", path))
	}
	if prop.Pattern != "" {
		if _, err := regexp.Compile(prop.Pattern); err != nil {
			issues = append(issues, fmt.Sprintf("%s: invalid pattern: %v", path, err))
		}
	}

	if prop.Items != nil {
		if prop.Type != schema.TypeArray {
			issues = append(issues, fmt.Sprintf("%s: items is only valid for array properties", path))
		} else {
			issues = append(issues, validateProperty(*prop.Items, path+".items")...)
		}
	}
	if len(prop.Properties) > 0 {
		if prop.Type != schema.TypeObject {
			issues = append(issues, fmt.Sprintf("%s: nested properties are only valid for object properties", path))
		} else {
			issues = append(issues, validateProperties(prop.Properties, path)...)
			issues = append(issues, validateRequired(prop.Required, prop.Properties, path)...)
		}
	}

	return issues
}

func validateRequired(required []string, props map[string]schema.Property, path string) []string {
	var issues []string
	for _, name := range required {
		if _, ok := props[name]; !ok {
			issues = append(issues, fmt.Sprintf("%s: required field %q is not a declared property", path, name))
		}
	}
	return issues
}
