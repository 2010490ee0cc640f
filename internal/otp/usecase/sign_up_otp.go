package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type SignUpOtpInput struct {
	MobileNumber   string `validate:"required,mobile"`
	IdempotencyKey string
}

func (s *Usecase) SignUpOtp(ctx context.Context, in SignUpOtpInput) (*IssueOutput, error) {
	ctx, span := s.startSpan(ctx, "SignUpOtp")
	defer span.End()

	in.MobileNumber = strings.TrimSpace(in.MobileNumber)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	var out *IssueOutput
	err := s.withIdempotency(ctx, in.IdempotencyKey, func(ctx context.Context) error {
		idn, err := s.resolveIdentity(ctx, in.MobileNumber)
		if err != nil {
			return err
		}

		out, err = s.issuePasscode(ctx, idn)
		return err
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// resolveIdentity returns the identity owning the mobile number, creating it
// on first sight. Two concurrent first requests race on the unique mobile
// number constraint and the loser re-reads the winner's row.
func (s *Usecase) resolveIdentity(ctx context.Context, mobileNumber string) (*entity.Identity, error) {
	idn, err := s.repoDB.GetIdentityByMobileNumber(ctx, mobileNumber)
	if err == nil {
		return idn, nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get identity", "mobile_number", mobileNumber, "error", err)
		return nil, storeError(err)
	}

	newIdentity := entity.Identity{
		ID:           s.uuid.Generate(),
		MobileNumber: mobileNumber,
	}

	err = s.repoDB.CreateIdentity(ctx, newIdentity)
	if errors.Is(err, goerror.ErrConflict) {
		idn, err = s.repoDB.GetIdentityByMobileNumber(ctx, mobileNumber)
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo re-read identity after conflict",
				"mobile_number", mobileNumber, "error", err)
			return nil, storeError(err)
		}
		return idn, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create identity", "mobile_number", mobileNumber, "error", err)
		return nil, storeError(err)
	}

	return &newIdentity, nil
}
