package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

func TestSignUpOtp(t *testing.T) {

	t.Run("InvalidMobileNumber", func(t *testing.T) {

		// Arrange
		f := newFixture(t)

		// Act
		_, err := f.uc.SignUpOtp(context.Background(), SignUpOtpInput{MobileNumber: "0812345678"})

		// Assert
		if codeOf(t, err) != goerror.CodeInvalidInput {
			t.Fatalf("expected invalid input, got %v", err)
		}
	})

	t.Run("NewMobileNumberCreatesIdentity", func(t *testing.T) {

		// Arrange
		f := newFixture(t)
		var created *entity.Identity
		var stored *entity.Passcode
		f.repoDB.createIdentity = func(_ context.Context, in entity.Identity) error {
			created = &in
			return nil
		}
		f.repoDB.replace = func(_ context.Context, in entity.Passcode) error {
			stored = &in
			return nil
		}

		// Act
		out, err := f.uc.SignUpOtp(context.Background(), SignUpOtpInput{MobileNumber: "+628123456789"})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created == nil || created.MobileNumber != "+628123456789" {
			t.Fatalf("expected identity created for the mobile number, got %+v", created)
		}
		if out.IdentityID != created.ID {
			t.Fatalf("expected output identity %q, got %q", created.ID, out.IdentityID)
		}
		if stored == nil || stored.IdentityID != created.ID {
			t.Fatalf("expected passcode stored for the new identity, got %+v", stored)
		}
		if want := testNow.Add(5 * time.Minute); !out.ExpiresAt.Equal(want) {
			t.Fatalf("expected default expiry %v, got %v", want, out.ExpiresAt)
		}
		if !f.hmac.Verify(stored.CodeHash, "482910") {
			t.Fatal("expected stored hash to match the generated code")
		}
		if len(f.sms.sent) != 1 || f.sms.sent[0] != "482910" {
			t.Fatalf("expected code delivered once, got %v", f.sms.sent)
		}
	})

	t.Run("CreateRaceLoserReusesWinner", func(t *testing.T) {

		// Arrange
		f := newFixture(t)
		winner := &entity.Identity{ID: "winner-id", MobileNumber: "+628123456789"}
		reads := 0
		f.repoDB.getIdentity = func(context.Context, string) (*entity.Identity, error) {
			reads++
			if reads == 1 {
				return nil, goerror.ErrNotFound
			}
			return winner, nil
		}
		f.repoDB.createIdentity = func(context.Context, entity.Identity) error {
			return goerror.ErrConflict
		}

		// Act
		out, err := f.uc.SignUpOtp(context.Background(), SignUpOtpInput{MobileNumber: "+628123456789"})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.IdentityID != "winner-id" {
			t.Fatalf("expected loser to adopt winner identity, got %q", out.IdentityID)
		}
	})

	t.Run("DeliveryFailureKeepsPasscode", func(t *testing.T) {

		// Arrange
		f := newFixture(t)
		f.sms.err = errors.New("gateway down")
		stored := false
		f.repoDB.replace = func(context.Context, entity.Passcode) error {
			stored = true
			return nil
		}

		// Act
		_, err := f.uc.SignUpOtp(context.Background(), SignUpOtpInput{MobileNumber: "+628123456789"})

		// Assert
		if codeOf(t, err) != goerror.CodeDeliveryFailed {
			t.Fatalf("expected delivery failed, got %v", err)
		}
		if !stored {
			t.Fatal("expected passcode stored before delivery attempt")
		}
	})

	t.Run("PublishesIssuedEvent", func(t *testing.T) {

		// Arrange
		f := newFixture(t)

		// Act
		out, err := f.uc.SignUpOtp(context.Background(), SignUpOtpInput{MobileNumber: "+628123456789"})
		f.waitEvents(t)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(f.msg.issued) != 1 {
			t.Fatalf("expected one issued event, got %d", len(f.msg.issued))
		}
		if f.msg.issued[0].IdentityID != out.IdentityID {
			t.Fatalf("expected event for identity %q, got %q", out.IdentityID, f.msg.issued[0].IdentityID)
		}
	})

	t.Run("DuplicateIdempotencyKey", func(t *testing.T) {

		// Arrange
		f := newFixture(t)
		in := SignUpOtpInput{MobileNumber: "+628123456789", IdempotencyKey: "req-1"}
		if _, err := f.uc.SignUpOtp(context.Background(), in); err != nil {
			t.Fatalf("unexpected error on first call: %v", err)
		}

		// Act
		_, err := f.uc.SignUpOtp(context.Background(), in)

		// Assert
		if codeOf(t, err) != goerror.CodeConflict {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("RetryAfterDeliveryFailureSameKey", func(t *testing.T) {

		// Arrange
		f := newFixture(t)
		f.sms.err = errors.New("gateway down")
		in := SignUpOtpInput{MobileNumber: "+628123456789", IdempotencyKey: "req-1"}
		if _, err := f.uc.SignUpOtp(context.Background(), in); codeOf(t, err) != goerror.CodeDeliveryFailed {
			t.Fatalf("expected delivery failed on first call, got %v", err)
		}
		f.sms.err = nil

		// Act
		out, err := f.uc.SignUpOtp(context.Background(), in)

		// Assert
		if err != nil {
			t.Fatalf("expected retry with the same key to succeed, got %v", err)
		}
		if len(f.sms.sent) != 1 || f.sms.sent[0] != "482910" {
			t.Fatalf("expected code delivered on retry, got %v", f.sms.sent)
		}
		if want := testNow.Add(5 * time.Minute); !out.ExpiresAt.Equal(want) {
			t.Fatalf("expected expiry %v, got %v", want, out.ExpiresAt)
		}
	})

	t.Run("ConfiguredTTL", func(t *testing.T) {

		// Arrange
		f := newFixture(t)
		f.uc.cfg = stubConfig{minutes: map[string]time.Duration{
			"modules.otp.passcode_ttl_minutes": 2 * time.Minute,
		}}

		// Act
		out, err := f.uc.SignUpOtp(context.Background(), SignUpOtpInput{MobileNumber: "+628123456789"})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := testNow.Add(2 * time.Minute); !out.ExpiresAt.Equal(want) {
			t.Fatalf("expected expiry %v, got %v", want, out.ExpiresAt)
		}
	})
}
