package parser

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	pkgcontract "github.com/goliatone/go-workforce-insights/pkg/contract"
)

const (
	fieldOrderExtension = "x-field-order"
	formHintsExtension  = "x-form"
)

func convertSchema(ref *openapi3.SchemaRef) pkgcontract.Schema {
	if ref == nil {
		return pkgcontract.Schema{}
	}
	if ref.Value == nil {
		return pkgcontract.Schema{Ref: ref.Ref}
	}
	src := ref.Value
	schema := pkgcontract.Schema{
		Ref:              ref.Ref,
		Type:             firstSchemaType(src.Type),
		Format:           src.Format,
		Title:            src.Title,
		Description:      src.Description,
		Default:          src.Default,
		ExclusiveMinimum: src.ExclusiveMin,
		ExclusiveMaximum: src.ExclusiveMax,
		Pattern:          src.Pattern,
	}

	if len(src.Required) > 0 {
		schema.Required = append([]string(nil), src.Required...)
	}
	if len(src.Enum) > 0 {
		schema.Enum = append([]any(nil), src.Enum...)
	}
	if len(src.Properties) > 0 {
		schema.Properties = make(map[string]pkgcontract.Schema, len(src.Properties))
		for name, property := range src.Properties {
			schema.Properties[name] = convertSchema(property)
		}
	}
	if src.Items != nil {
		items := convertSchema(src.Items)
		schema.Items = &items
	}
	if src.Min != nil {
		value := *src.Min
		schema.Minimum = &value
	}
	if src.Max != nil {
		value := *src.Max
		schema.Maximum = &value
	}
	if src.MinLength != 0 {
		value := int(src.MinLength)
		schema.MinLength = &value
	}
	if src.MaxLength != nil {
		value := int(*src.MaxLength)
		schema.MaxLength = &value
	}
	schema.Order = fieldOrder(src.Extensions[fieldOrderExtension], schema.Properties)
	schema.Hints = formHints(src.Extensions[formHintsExtension])
	return schema
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	default:
		return strings.Join(values, ",")
	}
}

// fieldOrder keeps declared names that exist as properties and drops the rest.
func fieldOrder(raw any, properties map[string]pkgcontract.Schema) []string {
	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, entry := range list {
		name, ok := entry.(string)
		if !ok {
			continue
		}
		if _, exists := properties[name]; exists {
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func formHints(raw any) map[string]string {
	mapped, ok := raw.(map[string]any)
	if !ok || len(mapped) == 0 {
		return nil
	}
	out := make(map[string]string, len(mapped))
	for key, value := range mapped {
		if value == nil {
			continue
		}
		out[key] = fmt.Sprint(value)
	}
	return out
}
