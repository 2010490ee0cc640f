package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type SignInOtpInput struct {
	MobileNumber   string `validate:"required,mobile"`
	IdempotencyKey string
}

func (s *Usecase) SignInOtp(ctx context.Context, in SignInOtpInput) (*IssueOutput, error) {
	ctx, span := s.startSpan(ctx, "SignInOtp")
	defer span.End()

	in.MobileNumber = strings.TrimSpace(in.MobileNumber)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	var out *IssueOutput
	err := s.withIdempotency(ctx, in.IdempotencyKey, func(ctx context.Context) error {
		idn, err := s.repoDB.GetIdentityByMobileNumber(ctx, in.MobileNumber)
		if errors.Is(err, goerror.ErrNotFound) {
			slog.WarnContext(ctx, "identity not found", "mobile_number", in.MobileNumber)
			return goerror.NewBusiness("mobile number is not registered", goerror.CodeNotFound)
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo get identity", "mobile_number", in.MobileNumber, "error", err)
			return storeError(err)
		}

		out, err = s.issuePasscode(ctx, idn)
		return err
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
