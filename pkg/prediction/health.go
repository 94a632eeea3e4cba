package prediction

// HealthStatus is the liveness of a service as last observed by the dashboard.
type HealthStatus string

const (
	HealthChecking HealthStatus = "checking"
	HealthOnline   HealthStatus = "online"
	HealthOffline  HealthStatus = "offline"
)

// HealthFromProbe converts a liveness probe result into a status.
func HealthFromProbe(ok bool) HealthStatus {
	if ok {
		return HealthOnline
	}
	return HealthOffline
}

// Label returns the badge text for the status.
func (h HealthStatus) Label() string {
	switch h {
	case HealthOnline:
		return "✓ Online"
	case HealthOffline:
		return "✗ Offline"
	default:
		return "Checking..."
	}
}
