package crewauth

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/MrEthical07/crewauth/internal/audit"
	"github.com/MrEthical07/crewauth/permission"
)

// UserRecord defines a public type used by crewauth APIs.
//
// UserRecord instances are intended to be configured during initialization
// and then treated as immutable unless documented otherwise.
type UserRecord struct {
	ID          string
	EmployeeID  string
	FirstName   string
	LastName    string
	Email       string
	PrimaryRole string
	IsActive    bool
	LastLogin   time.Time
}

// Credential defines a public type used by crewauth APIs.
//
// Credential instances are intended to be configured during initialization
// and then treated as immutable unless documented otherwise.
//
// ResetToken and ResetTokenExpiry are either both set or both empty. The
// engine nulls them on password change and on successful reset confirmation.
type Credential struct {
	UserID           string
	PasswordHash     string
	ResetToken       string
	ResetTokenExpiry time.Time
}

// PasswordHistoryEntry defines a public type used by crewauth APIs.
//
// PasswordHistoryEntry instances are intended to be configured during
// initialization and then treated as immutable unless documented otherwise.
type PasswordHistoryEntry struct {
	UserID       string
	PasswordHash string
	CreatedAt    time.Time
}

// UserDirectory defines a public type used by crewauth APIs.
//
// UserDirectory is the credential-store boundary the engine authenticates
// against. Implementations are expected to be safe for concurrent use.
// Lookup methods return a nil record and a nil error when no matching
// record exists; a non-nil error always means a backend failure.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*UserRecord, error)
	FindByID(ctx context.Context, id string) (*UserRecord, error)
	Credentials(ctx context.Context, userID string) (*Credential, error)
	PasswordHistory(ctx context.Context, userID string, limit int) ([]PasswordHistoryEntry, error)
	UpdatePassword(ctx context.Context, userID, hash string) error
	SaveResetToken(ctx context.Context, userID, token string, expiry time.Time) error
	FindByResetToken(ctx context.Context, token string) (*UserRecord, error)
	UpdateLastLogin(ctx context.Context, userID string) error
	InvalidateSessions(ctx context.Context, userID string) error
}

// FailureReason defines a public type used by crewauth APIs.
//
// FailureReason instances are intended to be configured during initialization
// and then treated as immutable unless documented otherwise.
type FailureReason int

const (
	// FailureNone is an exported constant or variable used by the authentication engine.
	FailureNone FailureReason = iota

	// FailureUserNotFound is an exported constant or variable used by the authentication engine.
	//
	// Distinguishing not-found from bad-credentials leaks account existence to
	// the caller. The distinction is a deliberate product decision carried
	// over unchanged; collapse the messages at the transport layer if the
	// deployment requires enumeration resistance.
	FailureUserNotFound

	// FailureInactive is an exported constant or variable used by the authentication engine.
	FailureInactive

	// FailureInvalidCredentials is an exported constant or variable used by the authentication engine.
	FailureInvalidCredentials

	// FailureInternal is an exported constant or variable used by the authentication engine.
	FailureInternal
)

// AuthUser defines a public type used by crewauth APIs.
//
// AuthUser instances are intended to be configured during initialization and
// then treated as immutable unless documented otherwise.
type AuthUser struct {
	ID          string
	EmployeeID  string
	FirstName   string
	LastName    string
	Email       string
	Role        string
	Permissions []permission.Permission
	LastLogin   time.Time
}

// AuthResult defines a public type used by crewauth APIs.
//
// AuthResult instances are intended to be configured during initialization
// and then treated as immutable unless documented otherwise.
//
// Success true implies User is non-nil and Reason is FailureNone. Success
// false implies User is nil and Message carries the caller-visible failure
// text.
type AuthResult struct {
	Success bool
	User    *AuthUser
	Reason  FailureReason
	Message string
}

// Principal defines a public type used by crewauth APIs.
//
// Principal instances are intended to be configured during initialization and
// then treated as immutable unless documented otherwise.
type Principal struct {
	User      AuthUser
	SessionID string
}

// AuditEvent defines a public type used by crewauth APIs.
//
// AuditEvent instances are intended to be configured during initialization
// and then treated as immutable unless documented otherwise.
type AuditEvent = internalaudit.Event

// AuditSink defines a public type used by crewauth APIs.
//
// AuditSink instances are intended to be configured during initialization and
// then treated as immutable unless documented otherwise.
type AuditSink = internalaudit.Sink

// NoOpSink defines a public type used by crewauth APIs.
//
// NoOpSink instances are intended to be configured during initialization and
// then treated as immutable unless documented otherwise.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink defines a public type used by crewauth APIs.
//
// ChannelSink instances are intended to be configured during initialization
// and then treated as immutable unless documented otherwise.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink defines a public type used by crewauth APIs.
//
// JSONWriterSink instances are intended to be configured during initialization
// and then treated as immutable unless documented otherwise.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink may return an error when input validation, dependency calls, or security checks fail.
// NewChannelSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink may return an error when input validation, dependency calls, or security checks fail.
// NewJSONWriterSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
