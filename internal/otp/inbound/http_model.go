package inbound

type SignUpOtpRequest struct {
	MobileNumber string `json:"mobile_number"`
}

type SignInOtpRequest struct {
	MobileNumber string `json:"mobile_number"`
}

type IssueOtpResponse struct {
	ExpiresAt int64 `json:"expires_at"`
}

func (IssueOtpResponse) Message() string {
	return "We have sent a verification code to your mobile number."
}

type VerifyOtpRequest struct {
	MobileNumber string `json:"mobile_number"`
	Code         string `json:"code"`
}

type VerifyOtpResponse struct {
	IdentityID   string `json:"identity_id"`
	SessionToken string `json:"session_token"`
}

type SessionResponse struct {
	IdentityID   string `json:"identity_id"`
	MobileNumber string `json:"mobile_number"`
	ExpiresAt    int64  `json:"expires_at"`
}
