package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrTokenInvalid is returned for refresh tokens that are unknown,
// revoked or expired.
var ErrTokenInvalid = errors.New("invalid refresh token")

// TokenRepo stores refresh tokens by SHA-256 hash. Each token belongs to
// a principal identified by kind (customer|staff) and id, since the two
// identity tables have independent id spaces.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

func (r *TokenRepo) StoreRefresh(ctx context.Context, kind string, principalID int64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (principal_kind, principal_id, token_hash, expires_at, created_at) VALUES (?,?,?,?,?)",
		kind, principalID, tokenHash, exp.UTC(), time.Now().UTC())
	return err
}

// deleteTokensTx drops every refresh token of a principal inside tx. Used
// when the principal itself is deleted.
func deleteTokensTx(ctx context.Context, tx *sql.Tx, kind string, principalID int64) error {
	_, err := tx.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE principal_kind = ? AND principal_id = ?", kind, principalID)
	return err
}

// ValidateRefresh returns the principal owning a live token.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (kind string, principalID int64, err error) {
	var (
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	err = r.DB.QueryRowContext(ctx,
		"SELECT principal_kind, principal_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash = ?",
		tokenHash).Scan(&kind, &principalID, &expiresAt, &revokedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", 0, ErrTokenInvalid
	case err != nil:
		return "", 0, err
	case revokedAt.Valid, !time.Now().UTC().Before(expiresAt):
		return "", 0, ErrTokenInvalid
	}
	return kind, principalID, nil
}

// RevokeByHash marks one token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at = ? WHERE token_hash = ? AND revoked_at IS NULL",
		time.Now().UTC(), tokenHash)
	return err
}

// RevokeAllFor revokes every active token of a principal.
func (r *TokenRepo) RevokeAllFor(ctx context.Context, kind string, principalID int64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at = ? WHERE principal_kind = ? AND principal_id = ? AND revoked_at IS NULL",
		time.Now().UTC(), kind, principalID)
	return err
}

// PurgeExpired deletes tokens that expired or were revoked before cutoff
// and returns how many rows went.
func (r *TokenRepo) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE expires_at < ? OR revoked_at < ?", cutoff.UTC(), cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
