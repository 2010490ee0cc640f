package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

func (f *fixture) withIdentity() {
	f.repoDB.getIdentity = func(context.Context, string) (*entity.Identity, error) {
		return &entity.Identity{ID: "idn-1", MobileNumber: "+628123456789"}, nil
	}
}

func (f *fixture) livePasscode(t *testing.T, code string) entity.Passcode {
	t.Helper()

	codeHash, err := f.hmac.Hash(code)
	if err != nil {
		t.Fatalf("hash code: %v", err)
	}

	return entity.Passcode{
		ID:         7,
		IdentityID: "idn-1",
		CodeHash:   string(codeHash),
		ExpiresAt:  testNow.Add(5 * time.Minute),
		CreatedAt:  testNow.Add(-time.Minute),
	}
}

func TestVerifyOtp(t *testing.T) {
	in := VerifyOtpInput{MobileNumber: "+628123456789", Code: "482910"}

	t.Run("UnregisteredMobileNumber", func(t *testing.T) {

		// Arrange
		f := newFixture(t)

		// Act
		_, err := f.uc.VerifyOtp(context.Background(), in)

		// Assert
		if codeOf(t, err) != goerror.CodeNotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("NoPasscodeIssued", func(t *testing.T) {

		// Arrange
		f := newFixture(t)
		f.withIdentity()

		// Act
		_, err := f.uc.VerifyOtp(context.Background(), in)

		// Assert
		if codeOf(t, err) != goerror.CodeNotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("WrongCode", func(t *testing.T) {

		// Arrange
		f := newFixture(t)
		f.withIdentity()
		pc := f.livePasscode(t, "111111")
		f.repoDB.getLatest = func(context.Context, string) (*entity.Passcode, error) {
			return &pc, nil
		}

		// Act
		_, err := f.uc.VerifyOtp(context.Background(), in)

		// Assert
		if codeOf(t, err) != goerror.CodeMismatch {
			t.Fatalf("expected mismatch, got %v", err)
		}
	})

	t.Run("WrongCodeOnExpiredPasscodeStillMismatch", func(t *testing.T) {

		// Arrange
		f := newFixture(t)
		f.withIdentity()
		pc := f.livePasscode(t, "111111")
		pc.ExpiresAt = testNow.Add(-time.Minute)
		f.repoDB.getLatest = func(context.Context, string) (*entity.Passcode, error) {
			return &pc, nil
		}

		// Act
		_, err := f.uc.VerifyOtp(context.Background(), in)

		// Assert
		if codeOf(t, err) != goerror.CodeMismatch {
			t.Fatalf("expected mismatch to win over expiry, got %v", err)
		}
	})

	t.Run("ExpiredPasscode", func(t *testing.T) {

		// Arrange
		f := newFixture(t)
		f.withIdentity()
		pc := f.livePasscode(t, "482910")
		pc.ExpiresAt = testNow
		f.repoDB.getLatest = func(context.Context, string) (*entity.Passcode, error) {
			return &pc, nil
		}

		// Act
		_, err := f.uc.VerifyOtp(context.Background(), in)

		// Assert
		// A passcode stops verifying exactly at its expiry instant.
		if codeOf(t, err) != goerror.CodeExpired {
			t.Fatalf("expected expired, got %v", err)
		}
	})

	t.Run("AlreadyConsumedPasscode", func(t *testing.T) {

		// Arrange
		f := newFixture(t)
		f.withIdentity()
		pc := f.livePasscode(t, "482910")
		consumedAt := testNow.Add(-time.Minute)
		pc.ConsumedAt = &consumedAt
		pc.ConsumedReason = entity.ConsumedReasonVerified
		f.repoDB.getLatest = func(context.Context, string) (*entity.Passcode, error) {
			return &pc, nil
		}

		// Act
		_, err := f.uc.VerifyOtp(context.Background(), in)

		// Assert
		if codeOf(t, err) != goerror.CodeAlreadyUsed {
			t.Fatalf("expected already used, got %v", err)
		}
	})

	t.Run("ConcurrentConsumeLoses", func(t *testing.T) {

		// Arrange
		f := newFixture(t)
		f.withIdentity()
		pc := f.livePasscode(t, "482910")
		f.repoDB.getLatest = func(context.Context, string) (*entity.Passcode, error) {
			return &pc, nil
		}
		f.repoDB.consume = func(context.Context, int64, time.Time, entity.ConsumedReason) (bool, error) {
			return false, nil
		}

		// Act
		_, err := f.uc.VerifyOtp(context.Background(), in)

		// Assert
		if codeOf(t, err) != goerror.CodeAlreadyUsed {
			t.Fatalf("expected already used, got %v", err)
		}
	})

	t.Run("StoreOutage", func(t *testing.T) {

		// Arrange
		f := newFixture(t)
		f.repoDB.getIdentity = func(context.Context, string) (*entity.Identity, error) {
			return nil, fmt.Errorf("acquire connection: %w", goerror.ErrUnavailable)
		}

		// Act
		_, err := f.uc.VerifyOtp(context.Background(), in)

		// Assert
		if codeOf(t, err) != goerror.CodeUnavailable {
			t.Fatalf("expected unavailable, got %v", err)
		}
	})

	t.Run("Success", func(t *testing.T) {

		// Arrange
		f := newFixture(t)
		f.withIdentity()
		pc := f.livePasscode(t, "482910")
		f.repoDB.getLatest = func(context.Context, string) (*entity.Passcode, error) {
			return &pc, nil
		}
		var consumedID int64
		var consumedReason entity.ConsumedReason
		f.repoDB.consume = func(_ context.Context, id int64, _ time.Time, reason entity.ConsumedReason) (bool, error) {
			consumedID = id
			consumedReason = reason
			return true, nil
		}

		// Act
		out, err := f.uc.VerifyOtp(context.Background(), in)
		f.waitEvents(t)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.IdentityID != "idn-1" || out.SessionToken == "" {
			t.Fatalf("expected identity and session token, got %+v", out)
		}
		if consumedID != pc.ID || consumedReason != entity.ConsumedReasonVerified {
			t.Fatalf("expected passcode %d consumed as verified, got %d %v", pc.ID, consumedID, consumedReason)
		}
		if len(f.msg.verified) != 1 || f.msg.verified[0].PasscodeID != pc.ID {
			t.Fatalf("expected one verified event for passcode %d, got %+v", pc.ID, f.msg.verified)
		}

		claims, err := f.uc.jwt.Verify(out.SessionToken)
		if err != nil {
			t.Fatalf("verify session token: %v", err)
		}
		if claims.IdentityID != "idn-1" || claims.MobileNumber != "+628123456789" {
			t.Fatalf("unexpected claims: %+v", claims)
		}
	})
}
