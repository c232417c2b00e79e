package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	crewauth "github.com/MrEthical07/crewauth"
)

// Querier is the subset of pgxpool.Pool used by this package. Tests substitute
// a fake; production code passes a *pgxpool.Pool.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const userColumns = `u.id, u.employee_id, u.first_name, u.last_name, u.email, r.name, u.is_active, u.last_login`

const (
	queryUserByEmail = `SELECT ` + userColumns + `
  FROM users u
  JOIN roles r ON r.id = u.role_id
 WHERE u.email = $1`

	queryUserByID = `SELECT ` + userColumns + `
  FROM users u
  JOIN roles r ON r.id = u.role_id
 WHERE u.id = $1`

	queryUserByResetToken = `SELECT ` + userColumns + `
  FROM users u
  JOIN roles r ON r.id = u.role_id
  JOIN user_credentials c ON c.user_id = u.id
 WHERE c.reset_token = $1`

	queryCredentials = `SELECT password_hash, reset_token, reset_token_expiry
  FROM user_credentials
 WHERE user_id = $1`

	queryPasswordHistory = `SELECT password_hash, created_at
  FROM password_history
 WHERE user_id = $1
 ORDER BY created_at DESC
 LIMIT $2`

	// Clears reset state and appends to history in one statement so a
	// concurrent reset confirm can never observe the new hash with the old
	// token still live.
	execUpdatePassword = `WITH upd AS (
    UPDATE user_credentials
       SET password_hash = $2,
           reset_token = NULL,
           reset_token_expiry = NULL,
           updated_at = now()
     WHERE user_id = $1
 RETURNING user_id, password_hash
)
INSERT INTO password_history (user_id, password_hash, created_at)
SELECT user_id, password_hash, now() FROM upd`

	execSaveResetToken = `UPDATE user_credentials
   SET reset_token = $2,
       reset_token_expiry = $3,
       updated_at = now()
 WHERE user_id = $1`

	execUpdateLastLogin = `UPDATE users
   SET last_login = now()
 WHERE id = $1`

	execInvalidateSessions = `UPDATE users
   SET sessions_invalidated_at = now()
 WHERE id = $1`
)

// PostgresUserDirectory defines a public type used by crewauth APIs.
//
// PostgresUserDirectory instances are intended to be configured during
// initialization and then treated as immutable unless documented otherwise.
type PostgresUserDirectory struct {
	db Querier
}

// NewPostgresUserDirectory describes the newpostgresuserdirectory operation and its observable behavior.
//
// NewPostgresUserDirectory may return an error when input validation, dependency calls, or security checks fail.
// NewPostgresUserDirectory does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewPostgresUserDirectory(db Querier) *PostgresUserDirectory {
	return &PostgresUserDirectory{db: db}
}

// FindByEmail describes the findbyemail operation and its observable behavior.
//
// FindByEmail may return an error when input validation, dependency calls, or security checks fail.
// FindByEmail does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *PostgresUserDirectory) FindByEmail(ctx context.Context, email string) (*crewauth.UserRecord, error) {
	return d.findOne(ctx, queryUserByEmail, email)
}

// FindByID describes the findbyid operation and its observable behavior.
//
// FindByID may return an error when input validation, dependency calls, or security checks fail.
// FindByID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *PostgresUserDirectory) FindByID(ctx context.Context, id string) (*crewauth.UserRecord, error) {
	return d.findOne(ctx, queryUserByID, id)
}

// FindByResetToken describes the findbyresettoken operation and its observable behavior.
//
// FindByResetToken may return an error when input validation, dependency calls, or security checks fail.
// FindByResetToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *PostgresUserDirectory) FindByResetToken(ctx context.Context, token string) (*crewauth.UserRecord, error) {
	if token == "" {
		return nil, nil
	}
	return d.findOne(ctx, queryUserByResetToken, token)
}

func (d *PostgresUserDirectory) findOne(ctx context.Context, query string, arg any) (*crewauth.UserRecord, error) {
	row := d.db.QueryRow(ctx, query, arg)

	var (
		user      crewauth.UserRecord
		lastLogin *time.Time
	)
	err := row.Scan(
		&user.ID,
		&user.EmployeeID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PrimaryRole,
		&user.IsActive,
		&lastLogin,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("directory: user lookup: %w", err)
	}
	if lastLogin != nil {
		user.LastLogin = *lastLogin
	}

	return &user, nil
}

// Credentials describes the credentials operation and its observable behavior.
//
// Credentials may return an error when input validation, dependency calls, or security checks fail.
// Credentials does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *PostgresUserDirectory) Credentials(ctx context.Context, userID string) (*crewauth.Credential, error) {
	row := d.db.QueryRow(ctx, queryCredentials, userID)

	var (
		cred   crewauth.Credential
		token  *string
		expiry *time.Time
	)
	err := row.Scan(&cred.PasswordHash, &token, &expiry)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("directory: credential lookup: %w", err)
	}

	cred.UserID = userID
	if token != nil {
		cred.ResetToken = *token
	}
	if expiry != nil {
		cred.ResetTokenExpiry = *expiry
	}

	return &cred, nil
}

// PasswordHistory describes the passwordhistory operation and its observable behavior.
//
// PasswordHistory may return an error when input validation, dependency calls, or security checks fail.
// PasswordHistory does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *PostgresUserDirectory) PasswordHistory(ctx context.Context, userID string, limit int) ([]crewauth.PasswordHistoryEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := d.db.Query(ctx, queryPasswordHistory, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("directory: password history: %w", err)
	}
	defer rows.Close()

	var entries []crewauth.PasswordHistoryEntry
	for rows.Next() {
		entry := crewauth.PasswordHistoryEntry{UserID: userID}
		if err := rows.Scan(&entry.PasswordHash, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("directory: password history scan: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("directory: password history rows: %w", err)
	}

	return entries, nil
}

// UpdatePassword describes the updatepassword operation and its observable behavior.
//
// UpdatePassword may return an error when input validation, dependency calls, or security checks fail.
// UpdatePassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *PostgresUserDirectory) UpdatePassword(ctx context.Context, userID, hash string) error {
	tag, err := d.db.Exec(ctx, execUpdatePassword, userID, hash)
	if err != nil {
		return fmt.Errorf("directory: update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("directory: update password: no credential row for user %s", userID)
	}
	return nil
}

// SaveResetToken describes the saveresettoken operation and its observable behavior.
//
// SaveResetToken may return an error when input validation, dependency calls, or security checks fail.
// SaveResetToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *PostgresUserDirectory) SaveResetToken(ctx context.Context, userID, token string, expiry time.Time) error {
	tag, err := d.db.Exec(ctx, execSaveResetToken, userID, token, expiry)
	if err != nil {
		return fmt.Errorf("directory: save reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("directory: save reset token: no credential row for user %s", userID)
	}
	return nil
}

// UpdateLastLogin describes the updatelastlogin operation and its observable behavior.
//
// UpdateLastLogin may return an error when input validation, dependency calls, or security checks fail.
// UpdateLastLogin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *PostgresUserDirectory) UpdateLastLogin(ctx context.Context, userID string) error {
	if _, err := d.db.Exec(ctx, execUpdateLastLogin, userID); err != nil {
		return fmt.Errorf("directory: update last login: %w", err)
	}
	return nil
}

// InvalidateSessions describes the invalidatesessions operation and its observable behavior.
//
// InvalidateSessions may return an error when input validation, dependency calls, or security checks fail.
// InvalidateSessions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *PostgresUserDirectory) InvalidateSessions(ctx context.Context, userID string) error {
	if _, err := d.db.Exec(ctx, execInvalidateSessions, userID); err != nil {
		return fmt.Errorf("directory: invalidate sessions: %w", err)
	}
	return nil
}
