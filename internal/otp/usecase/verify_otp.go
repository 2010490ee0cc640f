package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type VerifyOtpInput struct {
	MobileNumber string `validate:"required,mobile"`
	Code         string `validate:"required,otpcode"`
}

type VerifyOtpOutput struct {
	IdentityID   string
	SessionToken string
}

func (s *Usecase) VerifyOtp(ctx context.Context, in VerifyOtpInput) (*VerifyOtpOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyOtp")
	defer span.End()

	in.MobileNumber = strings.TrimSpace(in.MobileNumber)
	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	idn, err := s.repoDB.GetIdentityByMobileNumber(ctx, in.MobileNumber)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "identity not found", "mobile_number", in.MobileNumber)
		return nil, goerror.NewBusiness("mobile number is not registered", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get identity", "mobile_number", in.MobileNumber, "error", err)
		return nil, storeError(err)
	}

	// Only the most recent passcode is a verification candidate. Older rows
	// were already retired when it was issued.
	pc, err := s.repoDB.GetLatestPasscode(ctx, idn.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "no passcode issued", "identity_id", idn.ID)
		return nil, goerror.NewBusiness("no passcode has been issued", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get latest passcode", "identity_id", idn.ID, "error", err)
		return nil, storeError(err)
	}

	if !s.hmac.Verify(pc.CodeHash, in.Code) {
		slog.WarnContext(ctx, "passcode does not match", "identity_id", idn.ID)
		return nil, goerror.NewBusiness("passcode does not match", goerror.CodeMismatch)
	}

	if pc.Expired(s.clock.Now()) {
		slog.WarnContext(ctx, "passcode has expired", "identity_id", idn.ID, "passcode_id", pc.ID)
		return nil, goerror.NewBusiness("passcode has expired", goerror.CodeExpired)
	}

	if pc.Consumed() {
		slog.WarnContext(ctx, "passcode already used", "identity_id", idn.ID, "passcode_id", pc.ID)
		return nil, goerror.NewBusiness("passcode has already been used", goerror.CodeAlreadyUsed)
	}

	ok, err := s.repoDB.ConsumePasscode(ctx, pc.ID, s.clock.Now(), entity.ConsumedReasonVerified)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo consume passcode", "passcode_id", pc.ID, "error", err)
		return nil, storeError(err)
	}
	if !ok {
		// Another verify won the conditional update between our read and now.
		slog.WarnContext(ctx, "passcode consumed concurrently", "identity_id", idn.ID, "passcode_id", pc.ID)
		return nil, goerror.NewBusiness("passcode has already been used", goerror.CodeAlreadyUsed)
	}

	token, err := s.jwt.Generate(idn.ID, idn.MobileNumber)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate session jwt token", "identity_id", idn.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoMessaging.PublishOtpVerified(ctx, OtpVerifiedEvent{
			IdentityID:   idn.ID,
			MobileNumber: idn.MobileNumber,
			PasscodeID:   pc.ID,
		}); err != nil {
			slog.ErrorContext(ctx, "failed to publish otp verified", "identity_id", idn.ID, "error", err)
		}
		return nil
	})

	return &VerifyOtpOutput{IdentityID: idn.ID, SessionToken: token}, nil
}
