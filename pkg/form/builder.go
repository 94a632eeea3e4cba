package form

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-workforce-insights/pkg/contract"
)

var (
	errOperationIDMissing     = errors.New("form builder: operation id is required")
	errOperationPathMissing   = errors.New("form builder: operation path is required")
	errOperationMethodMissing = errors.New("form builder: operation method is required")
	errRequestNotObject       = errors.New("form builder: request body must be an object")
)

// Builder converts contract operations into form models.
type Builder struct {
	labeler func(string) string
}

// Option configures a Builder.
type Option func(*Builder)

// WithLabeler overrides how labels are derived for fields without a title.
func WithLabeler(fn func(string) string) Option {
	return func(b *Builder) {
		if fn != nil {
			b.labeler = fn
		}
	}
}

// NewBuilder constructs a Builder with the default labeler.
func NewBuilder(options ...Option) *Builder {
	b := &Builder{labeler: DefaultLabeler}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Build produces the form model for op. Fields follow the declared order of
// the request schema; undeclared properties are appended alphabetically.
func (b *Builder) Build(op contract.Operation) (FormModel, error) {
	if err := validateOperation(op); err != nil {
		return FormModel{}, err
	}

	body := op.RequestBody
	form := FormModel{
		OperationID: op.ID,
		Endpoint:    op.Path,
		Method:      strings.ToUpper(op.Method),
		Summary:     op.Summary,
		Description: op.Description,
	}
	for _, name := range orderedProperties(body) {
		field, err := b.buildField(name, body.Properties[name], body.IsRequired(name))
		if err != nil {
			return FormModel{}, fmt.Errorf("form builder: field %q: %w", name, err)
		}
		form.Fields = append(form.Fields, field)
	}
	return form, nil
}

func validateOperation(op contract.Operation) error {
	if op.ID == "" {
		return errOperationIDMissing
	}
	if op.Path == "" {
		return errOperationPathMissing
	}
	if op.Method == "" {
		return errOperationMethodMissing
	}
	if op.RequestBody.Type != "object" || len(op.RequestBody.Properties) == 0 {
		return errRequestNotObject
	}
	return nil
}

func orderedProperties(schema contract.Schema) []string {
	seen := make(map[string]struct{}, len(schema.Properties))
	out := make([]string, 0, len(schema.Properties))
	for _, name := range schema.Order {
		if _, ok := schema.Properties[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	var rest []string
	for name := range schema.Properties {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func (b *Builder) buildField(name string, schema contract.Schema, required bool) (Field, error) {
	fieldType, err := fieldTypeOf(schema.Type)
	if err != nil {
		return Field{}, err
	}

	label := strings.TrimSpace(schema.Title)
	if label == "" {
		label = b.labeler(name)
	}

	field := Field{
		Name:        name,
		Type:        fieldType,
		Required:    required,
		Label:       label,
		Description: schema.Description,
		Default:     schema.Default,
		Placeholder: schema.Hints["placeholder"],
		Step:        schema.Hints["step"],
	}

	switch {
	case len(schema.Enum) > 0:
		field.Widget = WidgetSelect
		for _, option := range schema.Enum {
			field.Options = append(field.Options, fmt.Sprint(option))
		}
	case fieldType == FieldTypeInteger || fieldType == FieldTypeNumber:
		field.Widget = WidgetNumber
		if fieldType == FieldTypeInteger && field.Step == "" {
			field.Step = "1"
		}
		if fieldType == FieldTypeNumber && field.Step == "" {
			field.Step = "any"
		}
	default:
		field.Widget = WidgetText
	}

	if schema.Minimum != nil {
		field.Min = formatBound(*schema.Minimum)
		field.Validations = append(field.Validations, boundRule(ValidationRuleMin, *schema.Minimum, schema.ExclusiveMinimum))
	}
	if schema.Maximum != nil {
		field.Max = formatBound(*schema.Maximum)
		field.Validations = append(field.Validations, boundRule(ValidationRuleMax, *schema.Maximum, schema.ExclusiveMaximum))
	}
	if schema.MinLength != nil {
		field.Validations = append(field.Validations, ValidationRule{
			Kind:   ValidationRuleMinLength,
			Params: map[string]string{"value": strconv.Itoa(*schema.MinLength)},
		})
	}
	if schema.MaxLength != nil {
		field.Validations = append(field.Validations, ValidationRule{
			Kind:   ValidationRuleMaxLength,
			Params: map[string]string{"value": strconv.Itoa(*schema.MaxLength)},
		})
	}
	if schema.Pattern != "" {
		field.Validations = append(field.Validations, ValidationRule{
			Kind:   ValidationRulePattern,
			Params: map[string]string{"pattern": schema.Pattern},
		})
	}
	return field, nil
}

func fieldTypeOf(raw string) (FieldType, error) {
	switch raw {
	case "string", "":
		return FieldTypeString, nil
	case "integer":
		return FieldTypeInteger, nil
	case "number":
		return FieldTypeNumber, nil
	case "boolean":
		return FieldTypeBoolean, nil
	default:
		return "", fmt.Errorf("unsupported type %q", raw)
	}
}

func boundRule(kind string, value float64, exclusive bool) ValidationRule {
	params := map[string]string{"value": formatBound(value)}
	if exclusive {
		params["exclusive"] = "true"
	}
	return ValidationRule{Kind: kind, Params: params}
}

func formatBound(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
