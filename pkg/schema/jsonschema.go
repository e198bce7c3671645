package schema

// JSONSchema renders the object schema as a plain JSON Schema document, the
// shape model providers and gojsonschema expect.
func (s Object) JSONSchema() map[string]interface{} {
	doc := map[string]interface{}{
		"type":       "object",
		"properties": propertiesJSON(s.Properties),
	}
	if len(s.Required) > 0 {
		doc["required"] = append([]string(nil), s.Required...)
	}
	if s.AdditionalProperties != nil {
		doc["additionalProperties"] = *s.AdditionalProperties
	}
	return doc
}

// JSONSchema renders a single property schema.
func (p Property) JSONSchema() map[string]interface{} {
	doc := map[string]interface{}{
		"type": string(p.Type),
	}
	if p.Description != "" {
		doc["description"] = p.Description
	}
	if len(p.Enum) > 0 {
		doc["enum"] = append([]interface{}(nil), p.Enum...)
	}
	if p.MinLength != nil {
		doc["minLength"] = *p.MinLength
	}
	if p.MaxLength != nil {
		doc["maxLength"] = *p.MaxLength
	}
	if p.Minimum != nil {
		doc["minimum"] = *p.Minimum
	}
	if p.Maximum != nil {
		doc["maximum"] = *p.Maximum
	}
	if p.Pattern != "" {
		doc["pattern"] = p.Pattern
	}
	if p.Default != nil {
		doc["default"] = p.Default
	}
	if p.Items != nil {
		doc["items"] = p.Items.JSONSchema()
	}
	if len(p.Properties) > 0 {
		doc["properties"] = propertiesJSON(p.Properties)
		if len(p.Required) > 0 {
			doc["required"] = append([]string(nil), p.Required...)
		}
	}
	if p.AdditionalProperties != nil {
		doc["additionalProperties"] = *p.AdditionalProperties
	}
	return doc
}

func propertiesJSON(props map[string]Property) map[string]interface{} {
	out := make(map[string]interface{}, len(props))
	for name, prop := range props {
		out[name] = prop.JSONSchema()
	}
	return out
}
