package entity

type ConsumedReason int16

const (
	// ConsumedReasonUnknown is mean the reason is not known / not set.
	ConsumedReasonUnknown ConsumedReason = 0

	// ConsumedReasonVerified mean the passcode was used in a successful verification.
	ConsumedReasonVerified ConsumedReason = 1

	// ConsumedReasonSuperseded mean a newer passcode was issued for the same identity.
	ConsumedReasonSuperseded ConsumedReason = 2
)

func (cr ConsumedReason) String() string {
	switch cr {
	case ConsumedReasonVerified:
		return "verified"
	case ConsumedReasonSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

func ConsumedReasonFromString(s string) ConsumedReason {
	switch s {
	case "verified":
		return ConsumedReasonVerified
	case "superseded":
		return ConsumedReasonSuperseded
	default:
		return ConsumedReasonUnknown
	}
}
