package inbound

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

type uc interface {
	SignUpOtp(ctx context.Context, in usecase.SignUpOtpInput) (*usecase.IssueOutput, error)
	SignInOtp(ctx context.Context, in usecase.SignInOtpInput) (*usecase.IssueOutput, error)
	VerifyOtp(ctx context.Context, in usecase.VerifyOtpInput) (*usecase.VerifyOtpOutput, error)

	Session(ctx context.Context) (*usecase.SessionOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Passwordless Authentication
	r.POST("/api/v1/auth/sign-up-otp", end.SignUpOtp)
	r.POST("/api/v1/auth/sign-in-otp", end.SignInOtp)
	r.POST("/api/v1/auth/verify-otp", end.VerifyOtp)

	// Session (need authenticated)
	r.GET("/api/v1/auth/session", end.Session)
}
