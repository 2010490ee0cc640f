package tests

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

type issueOtpData struct {
	ExpiresAt int64 `json:"expires_at"`
}

func uniqueMobileNumber() string {
	// 13 digits after the plus sign keeps it inside the accepted range.
	return fmt.Sprintf("+62%011d", time.Now().UnixNano()%100000000000)
}

func signUpOtp(t *testing.T, mobileNumber string) issueOtpData {
	t.Helper()

	payload := map[string]string{"mobile_number": mobileNumber}

	status, body := doJSON(t, http.MethodPost, "/api/v1/auth/sign-up-otp", payload, nil)
	if status != http.StatusOK {
		errEnv := decodeError(t, body)
		t.Fatalf("sign-up-otp failed: status=%d message=%q", status, errEnv.Message)
	}

	var data issueOtpData
	decodeSuccess(t, body, &data)

	return data
}
