package db

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
)

const queryGetIdentityByMobileNumber = `
SELECT id, mobile_number, created_at, updated_at
FROM identities
WHERE mobile_number = $1
`

func (s *DB) GetIdentityByMobileNumber(ctx context.Context, mobileNumber string) (_ *entity.Identity, err error) {
	ctx, span := s.startSpan(ctx, "GetIdentityByMobileNumber")
	defer func() { s.endSpan(span, err) }()

	var idn entity.Identity
	err = s.conn.QueryRow(ctx, queryGetIdentityByMobileNumber, mobileNumber).
		Scan(&idn.ID, &idn.MobileNumber, &idn.CreatedAt, &idn.UpdatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &idn, nil
}

const queryCreateIdentity = `
INSERT INTO identities (id, mobile_number)
VALUES ($1, $2)
`

func (s *DB) CreateIdentity(ctx context.Context, in entity.Identity) (err error) {
	ctx, span := s.startSpan(ctx, "CreateIdentity")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryCreateIdentity, in.ID, in.MobileNumber)
	return s.mapError(err)
}
