package authflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/berniyo/paygate/internal/forms"
	"github.com/berniyo/paygate/internal/paygate"
	"github.com/berniyo/paygate/internal/session"
)

// AuthAPI is the subset of the API client used by the flows.
type AuthAPI interface {
	SendOTP(ctx context.Context, phone string) paygate.Result[paygate.Ack]
	VerifyOTP(ctx context.Context, phone, otp string) paygate.Result[paygate.AuthGrant]
	SendEmailOTP(ctx context.Context, email string) paygate.Result[paygate.Ack]
	VerifyEmailOTP(ctx context.Context, email, otp string) paygate.Result[paygate.AuthGrant]
	Register(ctx context.Context, email, password string) paygate.Result[paygate.AuthGrant]
	Login(ctx context.Context, email, password string) paygate.Result[paygate.AuthGrant]
}

// SessionStore receives the session produced by a successful sign-in.
type SessionStore interface {
	Login(ctx context.Context, token string, user session.User) error
}

// RejectedError reports a call the backend (or transport) refused.
type RejectedError struct {
	Op         string
	Message    string
	StatusCode int
}

func (e *RejectedError) Error() string {
	return e.Message
}

func rejected[T any](op string, res paygate.Result[T]) error {
	return &RejectedError{Op: op, Message: res.Error, StatusCode: res.StatusCode}
}

// Flow drives every supported sign-in method and records the session.
type Flow struct {
	api    AuthAPI
	store  SessionStore
	logger *zap.Logger
}

// NewFlow wires the API and session store. logger may be nil.
func NewFlow(api AuthAPI, store SessionStore, logger *zap.Logger) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flow{api: api, store: store, logger: logger}
}

// SendOTP dispatches a code for the state's phone number and advances to
// AwaitingOtp. On any error the returned state is unchanged.
func (f *Flow) SendOTP(ctx context.Context, s State) (State, error) {
	if s.Step != AwaitingPhone {
		return s, fmt.Errorf("%w: send otp from %s", ErrInvalidTransition, s.Step)
	}
	if err := s.ValidatePhone(); err != nil {
		return s, err
	}

	res := f.api.SendOTP(ctx, s.FullPhone())
	if !res.Success {
		return s, rejected("send-otp", res)
	}
	f.logger.Info("otp dispatched", zap.String("channel", "phone"))
	return s.OTPDispatched()
}

// VerifyOTP checks the state's code. A failed verification leaves the state
// on AwaitingOtp so the caller may retry or change number.
func (f *Flow) VerifyOTP(ctx context.Context, s State) (State, error) {
	if s.Step != AwaitingOtp {
		return s, fmt.Errorf("%w: verify otp from %s", ErrInvalidTransition, s.Step)
	}
	if err := s.ValidateOTP(); err != nil {
		return s, err
	}

	res := f.api.VerifyOTP(ctx, s.FullPhone(), s.OTP)
	grant, err := f.accept(ctx, "verify-otp", res)
	if err != nil {
		return s.VerificationFailed(), err
	}
	return s.Verified(grant)
}

// SendEmailOTP dispatches a code to email.
func (f *Flow) SendEmailOTP(ctx context.Context, email string) error {
	if err := forms.Validate(forms.EmailForm{Email: email}); err != nil {
		return err
	}
	res := f.api.SendEmailOTP(ctx, email)
	if !res.Success {
		return rejected("send-email-otp", res)
	}
	f.logger.Info("otp dispatched", zap.String("channel", "email"))
	return nil
}

// VerifyEmailOTP signs in with an emailed code.
func (f *Flow) VerifyEmailOTP(ctx context.Context, email, otp string) (paygate.AuthGrant, error) {
	otp = forms.Digits(otp, forms.OTPDigits)
	if err := forms.Validate(forms.EmailForm{Email: email}); err != nil {
		return paygate.AuthGrant{}, err
	}
	if err := forms.Validate(forms.OTPForm{OTP: otp}); err != nil {
		return paygate.AuthGrant{}, err
	}
	return f.accept(ctx, "verify-email-otp", f.api.VerifyEmailOTP(ctx, email, otp))
}

// PasswordLogin signs in with email and password.
func (f *Flow) PasswordLogin(ctx context.Context, email, password string) (paygate.AuthGrant, error) {
	if err := forms.Validate(forms.LoginForm{Email: email, Password: password}); err != nil {
		return paygate.AuthGrant{}, err
	}
	return f.accept(ctx, "login", f.api.Login(ctx, email, password))
}

// Register creates an account and signs in with it.
func (f *Flow) Register(ctx context.Context, form forms.RegisterForm) (paygate.AuthGrant, error) {
	if err := forms.Validate(form); err != nil {
		return paygate.AuthGrant{}, err
	}
	return f.accept(ctx, "register", f.api.Register(ctx, form.Email, form.Password))
}

// accept turns a grant result into a stored session.
func (f *Flow) accept(ctx context.Context, op string, res paygate.Result[paygate.AuthGrant]) (paygate.AuthGrant, error) {
	if !res.Success {
		return paygate.AuthGrant{}, rejected(op, res)
	}
	if res.Data.Token == "" {
		return paygate.AuthGrant{}, &RejectedError{Op: op, Message: "response did not include a session token", StatusCode: res.StatusCode}
	}
	if err := f.store.Login(ctx, res.Data.Token, res.Data.User); err != nil {
		return paygate.AuthGrant{}, fmt.Errorf("store session: %w", err)
	}
	f.logger.Info("signed in", zap.String("method", op), zap.String("user_id", res.Data.User.ID))
	return res.Data, nil
}
