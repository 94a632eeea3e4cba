package client

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-workforce-insights/pkg/prediction"
)

// ErrServiceUnreachable wraps transport failures: refused connections,
// timeouts and cancelled requests.
var ErrServiceUnreachable = errors.New("client: service unreachable")

// APIError is a failure reported by a prediction service, either through a
// non-success status or an error field in the response body. Error returns
// Message verbatim so it can be shown to the user unchanged.
type APIError struct {
	Service prediction.Service
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// statusMessage is used when a failing response carries no usable error text.
func statusMessage(status int) string {
	return fmt.Sprintf("HTTP error! status: %d", status)
}

// IsAPIError reports whether err carries a service-reported failure.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
