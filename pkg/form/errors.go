package form

import (
	"maps"
	"slices"
	"strings"

	"github.com/goliatone/go-workforce-insights/pkg/contract"
)

// ErrorMapping splits validation issues into field-level and form-level
// messages keyed by field name.
type ErrorMapping struct {
	Fields map[string][]string `json:"fields,omitempty"`
	Form   []string            `json:"form,omitempty"`
}

// Empty reports whether the mapping carries no messages.
func (m ErrorMapping) Empty() bool {
	return len(m.Fields) == 0 && len(m.Form) == 0
}

// First returns the first message recorded for field.
func (m ErrorMapping) First(field string) string {
	if messages := m.Fields[field]; len(messages) > 0 {
		return messages[0]
	}
	return ""
}

// Messages flattens the mapping into "Label: message" lines, following the
// field order of form. Form-level messages come last.
func (m ErrorMapping) Messages(form FormModel) []string {
	var out []string
	for _, field := range form.Fields {
		for _, message := range m.Fields[field.Name] {
			out = append(out, field.Label+": "+message)
		}
	}
	return append(out, m.Form...)
}

// MapIssues attaches contract issues to the fields of form. Issues whose path
// does not resolve to a known field become form-level messages so nothing is
// lost.
func MapIssues(form FormModel, issues contract.Issues) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	known := make(map[string]struct{}, len(form.Fields))
	for _, field := range form.Fields {
		known[field.Name] = struct{}{}
	}

	for _, issue := range issues {
		name := rootSegment(issue.Field)
		if name == "" {
			name = rootSegment(contract.FieldPathFromPointer(issue.Path))
		}
		if _, ok := known[name]; !ok {
			mapping.Form = append(mapping.Form, issue.String())
			continue
		}
		mapping.Fields[name] = append(mapping.Fields[name], issue.Message)
	}

	for name, messages := range mapping.Fields {
		mapping.Fields[name] = normalizeMessages(messages)
	}
	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// MapFieldErrors is MapIssues for messages already grouped by field name.
func MapFieldErrors(form FormModel, fields map[string][]string) ErrorMapping {
	var issues contract.Issues
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		for _, message := range fields[name] {
			issues = append(issues, contract.Issue{Field: name, Message: message})
		}
	}
	return MapIssues(form, issues)
}

func rootSegment(path string) string {
	path = strings.TrimSpace(path)
	if idx := strings.IndexByte(path, '.'); idx >= 0 {
		return path[:idx]
	}
	return path
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
