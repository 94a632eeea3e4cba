package prompt

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-workforce-insights/pkg/form"
)

// ApplyFunc stores one collected value.
type ApplyFunc func(name, value string) error

// Fill asks for every field of model, offering the current values as
// defaults, and hands each answer to apply. Numeric answers are checked
// against the field bounds; every other rule is left to submission.
func Fill(ctx context.Context, driver Driver, model form.FormModel, current map[string]any, apply ApplyFunc) error {
	if heading := strings.TrimSpace(model.Summary); heading != "" {
		if err := driver.Info(ctx, heading); err != nil {
			return err
		}
	}

	for _, field := range model.Fields {
		value, err := ask(ctx, driver, field, formatDefault(current[field.Name]))
		if err != nil {
			return fmt.Errorf("prompt: %s: %w", field.Name, err)
		}
		if err := apply(field.Name, value); err != nil {
			return fmt.Errorf("prompt: %s: %w", field.Name, err)
		}
	}
	return nil
}

func ask(ctx context.Context, driver Driver, field form.Field, current string) (string, error) {
	message := field.Label
	if message == "" {
		message = field.Name
	}

	if field.Widget == form.WidgetSelect && len(field.Options) > 0 {
		defaultIndex := indexOf(field.Options, current)
		if defaultIndex < 0 {
			defaultIndex = 0
		}
		choice, err := driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      field.Options,
			DefaultIndex: defaultIndex,
			Help:         field.Description,
		})
		if err != nil {
			return "", err
		}
		if choice < 0 || choice >= len(field.Options) {
			return "", fmt.Errorf("selection %d out of range", choice)
		}
		return field.Options[choice], nil
	}

	cfg := InputConfig{
		Message: message,
		Default: current,
		Help:    field.Description,
	}
	if cfg.Help == "" {
		cfg.Help = field.Placeholder
	}
	if field.Widget == form.WidgetNumber {
		cfg.Validator = numberValidator(field)
	}
	return driver.Input(ctx, cfg)
}

// numberValidator accepts blank input, which the form coerces to zero, and
// numbers inside the field bounds.
func numberValidator(field form.Field) func(string) error {
	return func(raw string) error {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return nil
		}
		value, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return fmt.Errorf("%q is not a number", raw)
		}
		if field.Type == form.FieldTypeInteger && value != float64(int64(value)) {
			return fmt.Errorf("%s must be a whole number", field.Label)
		}
		if bound, ok := parseBound(field.Min); ok && value < bound {
			return fmt.Errorf("%s must be at least %s", field.Label, field.Min)
		}
		if bound, ok := parseBound(field.Max); ok && value > bound {
			return fmt.Errorf("%s must be at most %s", field.Label, field.Max)
		}
		return nil
	}
}

func parseBound(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	return value, err == nil
}

func formatDefault(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
