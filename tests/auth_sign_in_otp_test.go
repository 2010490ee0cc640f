package tests

import (
	"net/http"
	"testing"
	"time"
)

func TestSignInOtp(t *testing.T) {

	t.Run("RegisteredMobileNumber", func(t *testing.T) {

		// Arrange
		mobileNumber := uniqueMobileNumber()
		signUpOtp(t, mobileNumber)
		payload := map[string]string{"mobile_number": mobileNumber}

		// Act
		status, body := doJSON(t, http.MethodPost, "/api/v1/auth/sign-in-otp", payload, nil)

		// Assert
		if status != http.StatusOK {
			errEnv := decodeError(t, body)
			t.Fatalf("sign-in-otp failed: status=%d message=%q", status, errEnv.Message)
		}
		var data issueOtpData
		decodeSuccess(t, body, &data)
		if data.ExpiresAt <= time.Now().Unix() {
			t.Fatalf("expected expires_at in the future, got %d", data.ExpiresAt)
		}
	})

	t.Run("UnregisteredMobileNumber", func(t *testing.T) {

		// Arrange
		payload := map[string]string{"mobile_number": uniqueMobileNumber()}

		// Act
		status, body := doJSON(t, http.MethodPost, "/api/v1/auth/sign-in-otp", payload, nil)

		// Assert
		if status != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", status)
		}
		errEnv := decodeError(t, body)
		if errEnv.Message == "" {
			t.Fatalf("expected error message in response")
		}
	})

	t.Run("InvalidMobileNumber", func(t *testing.T) {

		// Arrange
		payload := map[string]string{"mobile_number": "not-a-number"}

		// Act
		status, _ := doJSON(t, http.MethodPost, "/api/v1/auth/sign-in-otp", payload, nil)

		// Assert
		if status != http.StatusUnprocessableEntity {
			t.Fatalf("expected status 422, got %d", status)
		}
	})
}
