package sms

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
)

const defaultTimeout = 10 * time.Second

type Config struct {
	// BaseURL is the message endpoint of the SMS gateway.
	BaseURL string
	// APIKey authenticates against the gateway.
	APIKey string
	// Sender is the originator shown on the handset.
	Sender string
	// DryRun logs the message instead of calling the gateway.
	DryRun bool
	// Timeout bounds a single gateway call.
	Timeout time.Duration
}

// Client delivers passcodes through an HTTP SMS gateway.
type Client struct {
	cfg Config
	hc  *http.Client
	ins instrument.Instrumentation
}

func NewClient(cfg Config, ins instrument.Instrumentation) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		cfg: cfg,
		hc:  &http.Client{Timeout: cfg.Timeout},
		ins: ins,
	}
}

func (c *Client) SendPasscode(ctx context.Context, mobileNumber, code string) error {
	ctx, span := c.ins.Tracer("otp.outbound.sms").Start(ctx, "SendPasscode")
	defer span.End()

	if c.cfg.DryRun {
		slog.InfoContext(ctx, "sms dry-run, skipping gateway call", "mobile_number", mobileNumber)
		return nil
	}

	text := fmt.Sprintf("%s is your verification code.", code)

	// Gateway hiccups and 5xx responses are retried, 4xx responses are not.
	backoff := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		return c.send(ctx, mobileNumber, text)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (c *Client) send(ctx context.Context, mobileNumber, text string) error {
	form := url.Values{}
	form.Set("apiKey", c.cfg.APIKey)
	form.Set("from", c.cfg.Sender)
	form.Set("recipient", mobileNumber)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.hc.Do(req)
	if err != nil {
		return retry.RetryableError(err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusInternalServerError {
		return retry.RetryableError(fmt.Errorf("sms gateway responded %d", resp.StatusCode))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sms gateway rejected message with status %d", resp.StatusCode)
	}

	return nil
}
