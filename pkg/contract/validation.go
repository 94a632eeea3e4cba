package contract

import (
	"context"
	"errors"
	"strings"
)

// ErrUnknownOperation is returned when an operation id is not part of any
// loaded contract.
var ErrUnknownOperation = errors.New("contract: unknown operation")

// Validator checks an outgoing request payload against the request body
// schema of an operation. A payload that violates the schema yields Issues.
type Validator interface {
	Validate(ctx context.Context, operationID string, payload any) error
}

// Issue is a single schema violation with optional location metadata.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Field == "" {
		return i.Message
	}
	return i.Field + ": " + i.Message
}

// Issues collects every violation found in a payload.
type Issues []Issue

func (issues Issues) Error() string {
	parts := make([]string, 0, len(issues))
	for _, issue := range issues {
		parts = append(parts, issue.String())
	}
	return strings.Join(parts, "; ")
}

// ByField groups messages by dotted field path. Issues without a field are
// keyed by the empty string.
func (issues Issues) ByField() map[string][]string {
	if len(issues) == 0 {
		return nil
	}
	out := make(map[string][]string)
	for _, issue := range issues {
		out[issue.Field] = append(out[issue.Field], issue.Message)
	}
	return out
}

// AsIssues extracts Issues from err when present.
func AsIssues(err error) (Issues, bool) {
	var issues Issues
	if errors.As(err, &issues) {
		return issues, true
	}
	return nil, false
}

// FieldPathFromPointer converts a JSON pointer such as "/age" or
// "#/properties/owner/properties/email" into a dotted field path.
func FieldPathFromPointer(pointer string) string {
	trimmed := strings.TrimSpace(pointer)
	trimmed = strings.TrimPrefix(trimmed, "#")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return ""
	}

	parts := strings.Split(trimmed, "/")
	out := make([]string, 0, len(parts))
	for idx := 0; idx < len(parts); idx++ {
		segment := unescapePointer(parts[idx])
		switch segment {
		case "properties":
			if idx+1 < len(parts) {
				out = append(out, unescapePointer(parts[idx+1]))
				idx++
			}
		case "":
			continue
		default:
			out = append(out, segment)
		}
	}
	return strings.Join(out, ".")
}

func unescapePointer(segment string) string {
	segment = strings.ReplaceAll(segment, "~1", "/")
	return strings.ReplaceAll(segment, "~0", "~")
}
