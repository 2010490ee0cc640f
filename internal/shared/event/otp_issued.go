package event

const OtpIssuedDestination string = "otp_issued"

type OtpIssuedMessage struct {
	IdentityID   string `json:"identity_id"`
	MobileNumber string `json:"mobile_number"`
	PasscodeID   int64  `json:"passcode_id"`
	ExpiresAt    int64  `json:"expires_at"`
}
