package usecase

import (
	"context"
	"testing"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

func TestSignInOtp(t *testing.T) {

	t.Run("UnregisteredMobileNumber", func(t *testing.T) {

		// Arrange
		f := newFixture(t)

		// Act
		_, err := f.uc.SignInOtp(context.Background(), SignInOtpInput{MobileNumber: "+628123456789"})

		// Assert
		if codeOf(t, err) != goerror.CodeNotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("RegisteredMobileNumberNeverCreates", func(t *testing.T) {

		// Arrange
		f := newFixture(t)
		f.repoDB.getIdentity = func(context.Context, string) (*entity.Identity, error) {
			return &entity.Identity{ID: "idn-1", MobileNumber: "+628123456789"}, nil
		}
		f.repoDB.createIdentity = func(context.Context, entity.Identity) error {
			t.Fatal("sign-in must not create identities")
			return nil
		}

		// Act
		out, err := f.uc.SignInOtp(context.Background(), SignInOtpInput{MobileNumber: "+628123456789"})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.IdentityID != "idn-1" {
			t.Fatalf("expected identity idn-1, got %q", out.IdentityID)
		}
		if len(f.sms.sent) != 1 {
			t.Fatalf("expected one delivery, got %d", len(f.sms.sent))
		}
	})

	t.Run("InvalidMobileNumber", func(t *testing.T) {

		// Arrange
		f := newFixture(t)

		// Act
		_, err := f.uc.SignInOtp(context.Background(), SignInOtpInput{MobileNumber: "+1"})

		// Assert
		if codeOf(t, err) != goerror.CodeInvalidInput {
			t.Fatalf("expected invalid input, got %v", err)
		}
	})
}
