package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const defaultPasscodeTTL = 5 * time.Minute

type OtpIssuedEvent struct {
	IdentityID   string
	MobileNumber string
	PasscodeID   int64
	ExpiresAt    time.Time
}

type OtpVerifiedEvent struct {
	IdentityID   string
	MobileNumber string
	PasscodeID   int64
}

type repoMessaging interface {
	PublishOtpIssued(ctx context.Context, msg OtpIssuedEvent) error
	PublishOtpVerified(ctx context.Context, msg OtpVerifiedEvent) error
}

type repoDB interface {
	GetIdentityByMobileNumber(ctx context.Context, mobileNumber string) (*entity.Identity, error)
	GetLatestPasscode(ctx context.Context, identityID string) (*entity.Passcode, error)

	CreateIdentity(ctx context.Context, in entity.Identity) error
	ReplacePasscodes(ctx context.Context, in entity.Passcode) error

	ConsumePasscode(ctx context.Context, id int64, at time.Time, reason entity.ConsumedReason) (bool, error)
}

type repoSMS interface {
	SendPasscode(ctx context.Context, mobileNumber, code string) error
}

type codeGenerator interface {
	Generate() (string, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	repoSMS       repoSMS
	idemp         idempotency.Idempotency
	validator     validator.Validator
	cfg           config.Config
	hmac          hash.Hash
	passcode      codeGenerator
	uid           uid.NumberID
	uuid          uid.StringID
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	RepoSMS       repoSMS
	Idempotency   idempotency.Idempotency
	Validator     validator.Validator
	Config        config.Config
	HMAC          hash.Hash
	Passcode      codeGenerator
	UID           uid.NumberID
	UUID          uid.StringID
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		repoSMS:       dep.RepoSMS,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		passcode:      dep.Passcode,
		uid:           dep.UID,
		uuid:          dep.UUID,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.usecase").Start(ctx, name)
}

// storeError keeps an unreachable store distinguishable from a plain bug.
func storeError(err error) error {
	if errors.Is(err, goerror.ErrUnavailable) {
		return goerror.NewUnavailable(err)
	}
	return goerror.NewServer(err)
}

func (s *Usecase) passcodeTTL() time.Duration {
	if ttl := s.cfg.GetMinute("modules.otp.passcode_ttl_minutes"); ttl > 0 {
		return ttl
	}
	return defaultPasscodeTTL
}
