package tests

import (
	"net/http"
	"testing"
	"time"
)

func TestSignUpOtp(t *testing.T) {

	t.Run("NewMobileNumber", func(t *testing.T) {

		// Arrange
		mobileNumber := uniqueMobileNumber()

		// Act
		resp := signUpOtp(t, mobileNumber)

		// Assert
		if resp.ExpiresAt <= time.Now().Unix() {
			t.Fatalf("expected expires_at in the future, got %d", resp.ExpiresAt)
		}
	})

	t.Run("ExistingMobileNumberIssuesAgain", func(t *testing.T) {

		// Arrange
		mobileNumber := uniqueMobileNumber()
		first := signUpOtp(t, mobileNumber)

		// Act
		second := signUpOtp(t, mobileNumber)

		// Assert
		if second.ExpiresAt < first.ExpiresAt {
			t.Fatalf("expected second code to expire at or after the first")
		}
	})

	t.Run("InvalidMobileNumber", func(t *testing.T) {

		// Arrange
		payload := map[string]string{"mobile_number": "0812345678"}

		// Act
		status, body := doJSON(t, http.MethodPost, "/api/v1/auth/sign-up-otp", payload, nil)

		// Assert
		if status != http.StatusUnprocessableEntity {
			t.Fatalf("expected status 422, got %d", status)
		}
		errEnv := decodeError(t, body)
		if errEnv.Error["mobile_number"] == "" {
			t.Fatalf("expected validation detail for mobile_number")
		}
	})

	t.Run("UnknownFieldRejected", func(t *testing.T) {

		// Arrange
		payload := map[string]string{"mobile_number": uniqueMobileNumber(), "extra": "nope"}

		// Act
		status, _ := doJSON(t, http.MethodPost, "/api/v1/auth/sign-up-otp", payload, nil)

		// Assert
		if status != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", status)
		}
	})

	t.Run("DuplicateIdempotencyKey", func(t *testing.T) {

		// Arrange
		mobileNumber := uniqueMobileNumber()
		payload := map[string]string{"mobile_number": mobileNumber}
		headers := map[string]string{"Idempotency-Key": "sign-up-" + mobileNumber}

		status, _ := doJSON(t, http.MethodPost, "/api/v1/auth/sign-up-otp", payload, headers)
		if status != http.StatusOK {
			t.Fatalf("expected first request to succeed, got %d", status)
		}

		// Act
		status, body := doJSON(t, http.MethodPost, "/api/v1/auth/sign-up-otp", payload, headers)

		// Assert
		if status != http.StatusConflict {
			t.Fatalf("expected status 409, got %d", status)
		}
		errEnv := decodeError(t, body)
		if errEnv.Message == "" {
			t.Fatalf("expected error message in response")
		}
	})
}
