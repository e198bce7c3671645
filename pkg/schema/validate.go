package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Validate checks input against the schema and returns the coerced value tree
// along with every validation error found. The coerced map is usable only
// when the error list is empty.
func Validate(input interface{}, s Object) (map[string]interface{}, []ValidationError) {
	obj, ok := asObject(input)
	if !ok {
		return nil, []ValidationError{{
			Path:    "",
			Message: "parameters must be an object",
			Code:    CodeInvalidInput,
		}}
	}

	return validateObject(obj, s.Properties, s.Required, s.AdditionalProperties, "")
}

func validateObject(in map[string]interface{}, props map[string]Property, required []string, additional *bool, path string) (map[string]interface{}, []ValidationError) {
	coerced := make(map[string]interface{}, len(in))
	var errs []ValidationError

	for _, name := range required {
		if _, ok := in[name]; !ok {
			errs = append(errs, ValidationError{
				Path:    joinPath(path, name),
				Message: fmt.Sprintf("missing required field %q", name),
				Code:    CodeRequiredField,
			})
		}
	}

	for name, prop := range props {
		value, present := in[name]
		if !present {
			if prop.Default != nil {
				coerced[name] = prop.Default
			}
			continue
		}
		out, propErrs := coerceValue(value, prop, joinPath(path, name))
		errs = append(errs, propErrs...)
		if len(propErrs) == 0 {
			coerced[name] = out
		}
	}

	for name, value := range in {
		if _, declared := props[name]; declared {
			continue
		}
		if additional != nil && !*additional {
			errs = append(errs, ValidationError{
				Path:    joinPath(path, name),
				Message: fmt.Sprintf("unknown property %q", name),
				Code:    CodeUnknownProperty,
			})
			continue
		}
		coerced[name] = value
	}

	return coerced, errs
}

// coerceValue coerces a single value to its declared type and checks the
// constraints valid for that type. The switch is exhaustive over Type.
func coerceValue(value interface{}, prop Property, path string) (interface{}, []ValidationError) {
	switch prop.Type {
	case TypeString:
		return coerceString(value, prop, path)
	case TypeNumber:
		return coerceNumber(value, prop, path)
	case TypeInteger:
		return coerceInteger(value, prop, path)
	case TypeBoolean:
		return coerceBoolean(value, prop, path)
	case TypeArray:
		return coerceArray(value, prop, path)
	case TypeObject:
		obj, ok := asObject(value)
		if !ok {
			return nil, typeError(path, "object", value)
		}
		return validateObject(obj, prop.Properties, prop.Required, prop.AdditionalProperties, path)
	case TypeNull:
		if value == nil {
			return nil, nil
		}
		return nil, typeError(path, "null", value)
	default:
		return nil, []ValidationError{{
			Path:    path,
			Message: fmt.Sprintf("unsupported schema type %q", prop.Type),
			Code:    CodeInvalidType,
		}}
	}
}

func coerceString(value interface{}, prop Property, path string) (interface{}, []ValidationError) {
	var str string
	switch v := value.(type) {
	case string:
		str = v
	case float64:
		str = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		str = strconv.Itoa(v)
	case int64:
		str = strconv.FormatInt(v, 10)
	default:
		return nil, typeError(path, "string", value)
	}

	var errs []ValidationError
	if prop.MinLength != nil && len(str) < *prop.MinLength {
		errs = append(errs, ValidationError{
			Path:    path,
			Message: fmt.Sprintf("length %d is below minimum %d", len(str), *prop.MinLength),
			Code:    CodeMinLength,
		})
	}
	if prop.MaxLength != nil && len(str) > *prop.MaxLength {
		errs = append(errs, ValidationError{
			Path:    path,
			Message: fmt.Sprintf("length %d exceeds maximum %d", len(str), *prop.MaxLength),
			Code:    CodeMaxLength,
		})
	}
	if prop.Pattern != "" {
		re, err := regexp.Compile(prop.Pattern)
		if err != nil {
			errs = append(errs, ValidationError{
				Path:    path,
				Message: fmt.Sprintf("invalid pattern %q: %v", prop.Pattern, err),
				Code:    CodeInvalidPattern,
			})
		} else if !re.MatchString(str) {
			errs = append(errs, ValidationError{
				Path:    path,
				Message: fmt.Sprintf("value does not match pattern %q", prop.Pattern),
				Code:    CodePatternMismatch,
			})
		}
	}
	errs = append(errs, checkEnum(str, prop.Enum, path)...)
	return str, errs
}

func coerceNumber(value interface{}, prop Property, path string) (interface{}, []ValidationError) {
	num, ok := asNumber(value)
	if !ok {
		return nil, typeError(path, "number", value)
	}
	return num, checkNumeric(num, prop, path)
}

func coerceInteger(value interface{}, prop Property, path string) (interface{}, []ValidationError) {
	num, ok := asNumber(value)
	if !ok || num != float64(int64(num)) {
		return nil, typeError(path, "integer", value)
	}
	return int(num), checkNumeric(num, prop, path)
}

func coerceBoolean(value interface{}, prop Property, path string) (interface{}, []ValidationError) {
	var b bool
	switch v := value.(type) {
	case bool:
		b = v
	case string:
		switch strings.ToLower(v) {
		case "true":
			b = true
		case "false":
			b = false
		default:
			return nil, typeError(path, "boolean", value)
		}
	case float64:
		b = v != 0
	case int:
		b = v != 0
	case int64:
		b = v != 0
	default:
		return nil, typeError(path, "boolean", value)
	}
	return b, checkEnum(b, prop.Enum, path)
}

func coerceArray(value interface{}, prop Property, path string) (interface{}, []ValidationError) {
	arr, ok := value.([]interface{})
	if !ok {
		return nil, typeError(path, "array", value)
	}
	if prop.Items == nil {
		out := make([]interface{}, len(arr))
		copy(out, arr)
		return out, nil
	}

	out := make([]interface{}, len(arr))
	var errs []ValidationError
	for i, elem := range arr {
		elemPath := fmt.Sprintf("%s[%d]", path, i)
		coerced, elemErrs := coerceValue(elem, *prop.Items, elemPath)
		errs = append(errs, elemErrs...)
		if len(elemErrs) == 0 {
			out[i] = coerced
		}
	}
	return out, errs
}

func checkNumeric(num float64, prop Property, path string) []ValidationError {
	var errs []ValidationError
	if prop.Minimum != nil && num < *prop.Minimum {
		errs = append(errs, ValidationError{
			Path:    path,
			Message: fmt.Sprintf("value %v is below minimum %v", num, *prop.Minimum),
			Code:    CodeMinimum,
		})
	}
	if prop.Maximum != nil && num > *prop.Maximum {
		errs = append(errs, ValidationError{
			Path:    path,
			Message: fmt.Sprintf("value %v exceeds maximum %v", num, *prop.Maximum),
			Code:    CodeMaximum,
		})
	}
	errs = append(errs, checkEnum(num, prop.Enum, path)...)
	return errs
}

func checkEnum(value interface{}, enum []interface{}, path string) []ValidationError {
	if len(enum) == 0 {
		return nil
	}
	for _, allowed := range enum {
		if looseEqual(value, allowed) {
			return nil
		}
	}
	return []ValidationError{{
		Path:    path,
		Message: fmt.Sprintf("value %v is not one of the allowed values", value),
		Code:    CodeEnumMismatch,
	}}
}

// looseEqual compares scalars treating all numeric representations alike.
func looseEqual(a, b interface{}) bool {
	if na, ok := numericValue(a); ok {
		if nb, ok := numericValue(b); ok {
			return na == nb
		}
		return false
	}
	return a == b
}

func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// asNumber applies the string-to-number coercion rule on top of the usual
// numeric representations.
func asNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		num, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return num, true
	}
	return 0, false
}

func asObject(value interface{}) (map[string]interface{}, bool) {
	obj, ok := value.(map[string]interface{})
	return obj, ok
}

func typeError(path, want string, got interface{}) []ValidationError {
	return []ValidationError{{
		Path:    path,
		Message: fmt.Sprintf("expected %s, got %T", want, got),
		Code:    CodeInvalidType,
	}}
}

func joinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}
