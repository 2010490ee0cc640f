package db

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/otpgate/internal/otp/entity"
)

const queryGetLatestPasscode = `
SELECT id, identity_id, code_hash, expires_at, consumed_at, consumed_reason, created_at
FROM passcodes
WHERE identity_id = $1
ORDER BY created_at DESC, id DESC
LIMIT 1
`

func (s *DB) GetLatestPasscode(ctx context.Context, identityID string) (_ *entity.Passcode, err error) {
	ctx, span := s.startSpan(ctx, "GetLatestPasscode")
	defer func() { s.endSpan(span, err) }()

	var pc entity.Passcode
	var reason *string
	err = s.conn.QueryRow(ctx, queryGetLatestPasscode, identityID).
		Scan(&pc.ID, &pc.IdentityID, &pc.CodeHash, &pc.ExpiresAt, &pc.ConsumedAt, &reason, &pc.CreatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	if reason != nil {
		pc.ConsumedReason = entity.ConsumedReasonFromString(*reason)
	}

	return &pc, nil
}

const querySupersedeLivePasscodes = `
UPDATE passcodes
SET consumed_at = $2, consumed_reason = $3
WHERE identity_id = $1 AND consumed_at IS NULL
`

const queryTouchIdentity = `
UPDATE identities
SET updated_at = $2
WHERE id = $1
`

const queryCreatePasscode = `
INSERT INTO passcodes (id, identity_id, code_hash, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5)
`

// ReplacePasscodes retires every live passcode of the identity and inserts
// the replacement in the same transaction, so at most one passcode is ever
// live per identity.
func (s *DB) ReplacePasscodes(ctx context.Context, in entity.Passcode) (err error) {
	ctx, span := s.startSpan(ctx, "ReplacePasscodes")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rolback", "error", rErr)
		}
	}()

	if _, err := tx.Exec(ctx, querySupersedeLivePasscodes,
		in.IdentityID, in.CreatedAt, entity.ConsumedReasonSuperseded.String()); err != nil {
		return s.mapError(err)
	}

	if _, err := tx.Exec(ctx, queryTouchIdentity, in.IdentityID, in.CreatedAt); err != nil {
		return s.mapError(err)
	}

	if _, err := tx.Exec(ctx, queryCreatePasscode,
		in.ID, in.IdentityID, in.CodeHash, in.ExpiresAt, in.CreatedAt); err != nil {
		return s.mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}

const queryConsumePasscode = `
UPDATE passcodes
SET consumed_at = $2, consumed_reason = $3
WHERE id = $1 AND consumed_at IS NULL
`

// ConsumePasscode marks the passcode consumed if and only if it is still
// live. It reports false when another writer consumed the row first.
func (s *DB) ConsumePasscode(ctx context.Context, id int64, at time.Time, reason entity.ConsumedReason) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "ConsumePasscode")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, queryConsumePasscode, id, at, reason.String())
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() == 1, nil
}
