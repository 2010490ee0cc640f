package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
)

type IssueOutput struct {
	IdentityID string
	ExpiresAt  time.Time
}

// issuePasscode generates a fresh passcode for the identity, retires every
// live predecessor, and delivers the new code over SMS.
//
// The passcode row is kept even when delivery fails, so a later verify
// against a code the provider did manage to push out still works.
func (s *Usecase) issuePasscode(ctx context.Context, idn *entity.Identity) (*IssueOutput, error) {
	code, err := s.passcode.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate passcode", "identity_id", idn.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	codeHash, err := s.hmac.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash passcode", "identity_id", idn.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	pc := entity.Passcode{
		ID:         s.uid.Generate(),
		IdentityID: idn.ID,
		CodeHash:   string(codeHash),
		ExpiresAt:  now.Add(s.passcodeTTL()),
		CreatedAt:  now,
	}

	if err := s.repoDB.ReplacePasscodes(ctx, pc); err != nil {
		slog.ErrorContext(ctx, "failed to repo replace passcodes", "identity_id", idn.ID, "error", err)
		return nil, storeError(err)
	}

	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoMessaging.PublishOtpIssued(ctx, OtpIssuedEvent{
			IdentityID:   idn.ID,
			MobileNumber: idn.MobileNumber,
			PasscodeID:   pc.ID,
			ExpiresAt:    pc.ExpiresAt,
		}); err != nil {
			slog.ErrorContext(ctx, "failed to publish otp issued", "identity_id", idn.ID, "error", err)
		}
		return nil
	})

	if err := s.repoSMS.SendPasscode(ctx, idn.MobileNumber, code); err != nil {
		slog.ErrorContext(ctx, "failed to deliver passcode", "identity_id", idn.ID, "error", err)
		return nil, goerror.NewBusiness("failed to deliver passcode", goerror.CodeDeliveryFailed)
	}

	return &IssueOutput{IdentityID: idn.ID, ExpiresAt: pc.ExpiresAt}, nil
}

// withIdempotency runs fn once per key. A blank key skips tracking entirely.
func (s *Usecase) withIdempotency(ctx context.Context, key string, fn func(context.Context) error) error {
	if key == "" {
		return fn(ctx)
	}

	err := s.idemp.Exec(ctx, key, fn)
	if errors.Is(err, idempotency.ErrAlreadyInProgress) || errors.Is(err, idempotency.ErrAlreadyCompleted) {
		return goerror.NewBusiness("request already processed", goerror.CodeConflict)
	}
	return err
}
