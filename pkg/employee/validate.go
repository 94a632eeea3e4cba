package employee

import "strings"

// Messages shown verbatim when local validation rejects a submission.
const (
	MessageJobRoleRequired   = "Job role is required"
	MessageLogoutBeforeLogin = "Logout time must be greater than login time"
)

// ValidationError reports a local rejection that never reaches the network.
// Error returns the user-facing message unchanged.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate performs the checks the attrition form runs before any request.
func (d Data) Validate() error {
	if strings.TrimSpace(d.JobRole) == "" {
		return &ValidationError{Field: FieldJobRole, Message: MessageJobRoleRequired}
	}
	return nil
}

// Validate performs the checks the productivity form runs before any request.
func (p Productivity) Validate() error {
	if p.LogoutTime <= p.LoginTime {
		return &ValidationError{Field: FieldLogoutTime, Message: MessageLogoutBeforeLogin}
	}
	return nil
}
