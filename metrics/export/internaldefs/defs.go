package internaldefs

import (
	crewauth "github.com/MrEthical07/crewauth"
)

// CounterDef defines a public type used by crewauth APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   crewauth.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by crewauth APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   crewauth.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the authentication engine.
var CounterDefs = []CounterDef{
	{ID: crewauth.MetricLoginSuccess, Name: "crewauth_login_success_total", Help: "Successful login attempts."},
	{ID: crewauth.MetricLoginFailure, Name: "crewauth_login_failure_total", Help: "Failed login attempts."},
	{ID: crewauth.MetricSessionCreated, Name: "crewauth_session_created_total", Help: "Created sessions."},
	{ID: crewauth.MetricSessionDestroyed, Name: "crewauth_session_destroyed_total", Help: "Destroyed sessions."},
	{ID: crewauth.MetricSessionInvalidatedAll, Name: "crewauth_session_invalidated_all_total", Help: "Bulk session invalidation operations."},
	{ID: crewauth.MetricPasswordChangeSuccess, Name: "crewauth_password_change_success_total", Help: "Successful password changes."},
	{ID: crewauth.MetricPasswordChangeInvalidOld, Name: "crewauth_password_change_invalid_old_total", Help: "Password change attempts with invalid old password."},
	{ID: crewauth.MetricPasswordChangeReuseRejected, Name: "crewauth_password_change_reuse_rejected_total", Help: "Password change attempts rejected for reuse."},
	{ID: crewauth.MetricPasswordResetRequest, Name: "crewauth_password_reset_request_total", Help: "Password reset requests."},
	{ID: crewauth.MetricPasswordResetConfirmSuccess, Name: "crewauth_password_reset_confirm_success_total", Help: "Successful password reset confirmations."},
	{ID: crewauth.MetricPasswordResetConfirmFailure, Name: "crewauth_password_reset_confirm_failure_total", Help: "Failed password reset confirmations."},
	{ID: crewauth.MetricPermissionResolutionFailure, Name: "crewauth_permission_resolution_failure_total", Help: "Failed permission resolution queries."},
	{ID: crewauth.MetricPermissionGranted, Name: "crewauth_permission_granted_total", Help: "Role permission grant operations."},
	{ID: crewauth.MetricPermissionRevoked, Name: "crewauth_permission_revoked_total", Help: "Role permission revoke operations."},
}

// HistogramDefs is an exported constant or variable used by the authentication engine.
var HistogramDefs = []HistogramDef{
	{ID: crewauth.MetricValidateLatency, Name: "crewauth_validate_latency_seconds", Help: "Session validate latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the authentication engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
