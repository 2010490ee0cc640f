package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
)

type fakeRepoDB struct {
	getIdentity    func(ctx context.Context, mobileNumber string) (*entity.Identity, error)
	getLatest      func(ctx context.Context, identityID string) (*entity.Passcode, error)
	createIdentity func(ctx context.Context, in entity.Identity) error
	replace        func(ctx context.Context, in entity.Passcode) error
	consume        func(ctx context.Context, id int64, at time.Time, reason entity.ConsumedReason) (bool, error)
}

func (f *fakeRepoDB) GetIdentityByMobileNumber(ctx context.Context, mobileNumber string) (*entity.Identity, error) {
	if f.getIdentity == nil {
		return nil, goerror.ErrNotFound
	}
	return f.getIdentity(ctx, mobileNumber)
}

func (f *fakeRepoDB) GetLatestPasscode(ctx context.Context, identityID string) (*entity.Passcode, error) {
	if f.getLatest == nil {
		return nil, goerror.ErrNotFound
	}
	return f.getLatest(ctx, identityID)
}

func (f *fakeRepoDB) CreateIdentity(ctx context.Context, in entity.Identity) error {
	if f.createIdentity == nil {
		return nil
	}
	return f.createIdentity(ctx, in)
}

func (f *fakeRepoDB) ReplacePasscodes(ctx context.Context, in entity.Passcode) error {
	if f.replace == nil {
		return nil
	}
	return f.replace(ctx, in)
}

func (f *fakeRepoDB) ConsumePasscode(ctx context.Context, id int64, at time.Time, reason entity.ConsumedReason) (bool, error) {
	if f.consume == nil {
		return true, nil
	}
	return f.consume(ctx, id, at, reason)
}

type fakeMessaging struct {
	issued   []OtpIssuedEvent
	verified []OtpVerifiedEvent
}

func (f *fakeMessaging) PublishOtpIssued(_ context.Context, msg OtpIssuedEvent) error {
	f.issued = append(f.issued, msg)
	return nil
}

func (f *fakeMessaging) PublishOtpVerified(_ context.Context, msg OtpVerifiedEvent) error {
	f.verified = append(f.verified, msg)
	return nil
}

type fakeSMS struct {
	sent []string
	err  error
}

func (f *fakeSMS) SendPasscode(_ context.Context, mobileNumber, code string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, code)
	return nil
}

type fixedCode string

func (c fixedCode) Generate() (string, error) { return string(c), nil }

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

type seqNumberID struct{ next int64 }

func (s *seqNumberID) Generate() int64 {
	s.next++
	return s.next
}

type fixedStringID string

func (s fixedStringID) Generate() string { return string(s) }

// stubConfig overrides only the getters the usecase reads. Every other
// method panics through the embedded nil interface if touched.
type stubConfig struct {
	config.Config
	minutes map[string]time.Duration
}

func (c stubConfig) GetMinute(key string) time.Duration { return c.minutes[key] }

// memoryIdempotency mirrors the StateTracker state machine without redis:
// completed and in-progress keys reject reruns, failed keys run again.
type memoryIdempotency struct {
	states map[string]idempotency.State
}

func (m *memoryIdempotency) state(key string) idempotency.State {
	if m.states == nil {
		m.states = map[string]idempotency.State{}
	}
	if s, ok := m.states[key]; ok {
		return s
	}
	return idempotency.StateNone
}

func (m *memoryIdempotency) Acquire(_ context.Context, key string, _ time.Duration) (idempotency.State, error) {
	return m.state(key), nil
}

func (m *memoryIdempotency) MarkCompleted(_ context.Context, key string, _ time.Duration) error {
	m.states[key] = idempotency.StateCompleted
	return nil
}

func (m *memoryIdempotency) MarkFailed(_ context.Context, key string, _ time.Duration) error {
	m.states[key] = idempotency.StateFailed
	return nil
}

func (m *memoryIdempotency) Exec(ctx context.Context, key string, fn func(context.Context) error, _ ...idempotency.Option) error {
	switch m.state(key) {
	case idempotency.StateInProgress:
		return idempotency.ErrAlreadyInProgress
	case idempotency.StateCompleted:
		return idempotency.ErrAlreadyCompleted
	}
	if err := fn(ctx); err != nil {
		m.states[key] = idempotency.StateFailed
		return err
	}
	m.states[key] = idempotency.StateCompleted
	return nil
}

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type fixture struct {
	repoDB *fakeRepoDB
	msg    *fakeMessaging
	sms    *fakeSMS
	hmac   hash.Hash
	uc     *Usecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	secret := make([]byte, 64)
	for i := range secret {
		secret[i] = byte(i)
	}
	tokens, err := jwt.NewHS512(jwt.Config{
		Secret:     secret,
		Issuer:     "otpgate-test",
		Audiences:  []string{"otpgate"},
		TTLMinutes: 15 * time.Minute,
		Clock:      fixedClock(testNow),
		UUID:       fixedStringID("jti-1"),
	})
	if err != nil {
		t.Fatalf("new jwt: %v", err)
	}

	f := &fixture{
		repoDB: &fakeRepoDB{},
		msg:    &fakeMessaging{},
		sms:    &fakeSMS{},
		hmac:   hash.NewHMACSHA256("test-secret"),
	}

	f.uc = New(Dependency{
		RepoDB:        f.repoDB,
		RepoMessaging: f.msg,
		RepoSMS:       f.sms,
		Idempotency:   &memoryIdempotency{},
		Validator:     v10,
		Config:        stubConfig{minutes: map[string]time.Duration{}},
		HMAC:          f.hmac,
		Passcode:      fixedCode("482910"),
		UID:           &seqNumberID{},
		UUID:          fixedStringID("11111111-2222-7333-8444-555555555555"),
		Clock:         fixedClock(testNow),
		JWT:           tokens,
		Instrument:    instrument.NewNoop(),
		Goroutine:     goroutine.NewManager(4),
	})

	return f
}

// waitEvents flushes the background publishers before asserting on events.
func (f *fixture) waitEvents(t *testing.T) {
	t.Helper()

	if err := f.uc.goroutine.Wait(); err != nil {
		t.Fatalf("wait goroutines: %v", err)
	}
}

func codeOf(t *testing.T, err error) goerror.Code {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *goerror.Error, got %T: %v", err, err)
	}
	return gerr.Code()
}
