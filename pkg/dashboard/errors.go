package dashboard

import (
	"errors"
	"slices"
	"strings"
)

// Fallback messages shown when a failure carries no presentable text.
const (
	FallbackAttritionMessage    = "An error occurred while predicting"
	FallbackProductivityMessage = "An error occurred while predicting productivity"
)

var (
	// ErrUnknownForm is returned when a form name is not recognised.
	ErrUnknownForm = errors.New("dashboard: unknown form")
	// ErrClosed is returned by submissions on a closed dashboard.
	ErrClosed = errors.New("dashboard: closed")
)

// ValidationError reports a submission rejected before any request was sent,
// either by the local form checks or by the target service's contract.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AsValidationError extracts a ValidationError from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var target *ValidationError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

func mergeFieldErrors(dst map[string][]string, src map[string][]string) map[string][]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string][]string, len(src))
	}
	for field, messages := range src {
		for _, message := range messages {
			message = strings.TrimSpace(message)
			if message == "" || slices.Contains(dst[field], message) {
				continue
			}
			dst[field] = append(dst[field], message)
		}
	}
	return dst
}
