package view

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-workforce-insights/pkg/prediction"
	"github.com/goliatone/go-workforce-insights/pkg/render/template"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// PlainText strips markup from text received from a remote service so it can
// be shown as plain text. The result is unescaped; templates escape it again
// on output.
func PlainText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(trimmed)))
}

// Filters returns the template filters the dashboard templates rely on.
func Filters() map[string]template.Filter {
	return map[string]template.Filter{
		"percent": func(input any, _ any) (any, error) {
			value, err := toFloat(input)
			if err != nil {
				return nil, err
			}
			return prediction.FormatPercent(value), nil
		},
		"decimal": func(input any, _ any) (any, error) {
			value, err := toFloat(input)
			if err != nil {
				return nil, err
			}
			return prediction.FormatDecimal(value), nil
		},
		"raw_number": func(input any, _ any) (any, error) {
			value, err := toFloat(input)
			if err != nil {
				return nil, err
			}
			return strconv.FormatFloat(value, 'f', -1, 64), nil
		},
		"prob_tone": func(input any, _ any) (any, error) {
			value, err := toFloat(input)
			if err != nil {
				return nil, err
			}
			return string(prediction.ProbabilityTone(value)), nil
		},
		"risk_tone": func(input any, _ any) (any, error) {
			return string(prediction.RiskTone(toString(input))), nil
		},
		"yes_no": func(input any, _ any) (any, error) {
			value, err := toFloat(input)
			if err != nil {
				return nil, err
			}
			return prediction.YesNo(int(value)), nil
		},
		"feature_label": func(input any, _ any) (any, error) {
			return prediction.FeatureLabel(toString(input)), nil
		},
		"plaintext": func(input any, _ any) (any, error) {
			return PlainText(toString(input)), nil
		},
	}
}

func toFloat(input any) (float64, error) {
	switch v := input.(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, nil
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("view: %q is not a number", v)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("view: unsupported numeric value %T", input)
	}
}

func toString(input any) string {
	if input == nil {
		return ""
	}
	if s, ok := input.(string); ok {
		return s
	}
	return fmt.Sprint(input)
}
