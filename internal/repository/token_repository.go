package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo keeps the deny-list of access tokens that were logged out
// before they expired.  Rows are keyed by the token's jti claim.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Revoke records jti as logged out.  Revoking the same token twice is a
// no-op.
func (r *TokenRepo) Revoke(ctx context.Context, jti, username string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO revoked_tokens (jti, username, expires_at) VALUES (?,?,?)",
		jti, username, exp.UTC())
	return err
}

// IsRevoked reports whether jti has been logged out.
func (r *TokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM revoked_tokens WHERE jti=? LIMIT 1", jti).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// PurgeExpired drops rows whose token would be rejected on expiry anyway.
func (r *TokenRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM revoked_tokens WHERE expires_at < ?", now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
