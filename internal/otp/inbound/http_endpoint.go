package inbound

import (
	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

const headerIdempotencyKey = "Idempotency-Key"

// HTTPEndpoint exposes HTTP handlers for passwordless authentication.
type HTTPEndpoint struct {
	uc uc
}

// SignUpOtp issues a verification code for a new or existing mobile number.
// @Summary Request sign-up verification code
// @Description Resolves the identity for the mobile number, creating it on first sight, and delivers a fresh verification code over SMS.
// @Tags Auth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Deduplicates retried requests"
// @Param request body SignUpOtpRequest true "Sign-up payload"
// @Success 200 {object} router.successResponse{data=IssueOtpResponse} "Code delivered"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 502 {object} router.errorResponse "Delivery failed"
// @Router /api/v1/auth/sign-up-otp [post]
func (h *HTTPEndpoint) SignUpOtp(r *router.Request) (any, error) {
	var req SignUpOtpRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.SignUpOtp(r.Context(), usecase.SignUpOtpInput{
		MobileNumber:   req.MobileNumber,
		IdempotencyKey: r.GetHeader(headerIdempotencyKey),
	})
	if err != nil {
		return nil, err
	}

	return IssueOtpResponse{ExpiresAt: resp.ExpiresAt.Unix()}, nil
}

// SignInOtp issues a verification code for an already registered mobile number.
// @Summary Request sign-in verification code
// @Description Delivers a fresh verification code over SMS. The mobile number must already be registered.
// @Tags Auth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Deduplicates retried requests"
// @Param request body SignInOtpRequest true "Sign-in payload"
// @Success 200 {object} router.successResponse{data=IssueOtpResponse} "Code delivered"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 404 {object} router.errorResponse "Mobile number not registered"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 502 {object} router.errorResponse "Delivery failed"
// @Router /api/v1/auth/sign-in-otp [post]
func (h *HTTPEndpoint) SignInOtp(r *router.Request) (any, error) {
	var req SignInOtpRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.SignInOtp(r.Context(), usecase.SignInOtpInput{
		MobileNumber:   req.MobileNumber,
		IdempotencyKey: r.GetHeader(headerIdempotencyKey),
	})
	if err != nil {
		return nil, err
	}

	return IssueOtpResponse{ExpiresAt: resp.ExpiresAt.Unix()}, nil
}

// VerifyOtp checks a verification code and starts a session.
// @Summary Verify code
// @Description Verifies the latest code issued for the mobile number. A code verifies at most once.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body VerifyOtpRequest true "Verify payload"
// @Success 200 {object} router.successResponse{data=VerifyOtpResponse} "Session started"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Code mismatch, expired, or already used"
// @Failure 404 {object} router.errorResponse "Mobile number not registered or no code issued"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/auth/verify-otp [post]
func (h *HTTPEndpoint) VerifyOtp(r *router.Request) (any, error) {
	var req VerifyOtpRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.VerifyOtp(r.Context(), usecase.VerifyOtpInput{
		MobileNumber: req.MobileNumber,
		Code:         req.Code,
	})
	if err != nil {
		return nil, err
	}

	return VerifyOtpResponse{
		IdentityID:   resp.IdentityID,
		SessionToken: resp.SessionToken,
	}, nil
}

// Session returns the identity behind the presented session token.
// @Summary Inspect session
// @Description Returns the authenticated identity and session expiry.
// @Tags Auth
// @Produce json
// @Success 200 {object} router.successResponse{data=SessionResponse} "Session detail"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Router /api/v1/auth/session [get]
func (h *HTTPEndpoint) Session(r *router.Request) (any, error) {
	resp, err := h.uc.Session(r.Context())
	if err != nil {
		return nil, err
	}

	return SessionResponse{
		IdentityID:   resp.IdentityID,
		MobileNumber: resp.MobileNumber,
		ExpiresAt:    resp.ExpiresAt.Unix(),
	}, nil
}
