package event

const OtpVerifiedDestination string = "otp_verified"

type OtpVerifiedMessage struct {
	IdentityID   string `json:"identity_id"`
	MobileNumber string `json:"mobile_number"`
	PasscodeID   int64  `json:"passcode_id"`
}
