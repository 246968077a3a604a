// Package authflow models phone/OTP sign-in as a value-typed state machine.
// Transitions are pure; Flow performs the network calls between them.
package authflow

import (
	"errors"
	"fmt"

	"github.com/berniyo/paygate/internal/forms"
	"github.com/berniyo/paygate/internal/paygate"
)

// ErrInvalidTransition is returned when a transition is not allowed from the current step.
var ErrInvalidTransition = errors.New("invalid auth flow transition")

// Step is a position in the phone/OTP flow.
type Step int

const (
	AwaitingPhone Step = iota
	AwaitingOtp
	Authenticated
)

func (s Step) String() string {
	switch s {
	case AwaitingPhone:
		return "awaiting_phone"
	case AwaitingOtp:
		return "awaiting_otp"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// State is an immutable snapshot of the flow.
type State struct {
	Step        Step
	CountryCode string
	Phone       string
	OTP         string
	Grant       *paygate.AuthGrant
}

// Start returns the initial state for the given dialling prefix, e.g. "+91".
func Start(countryCode string) State {
	return State{Step: AwaitingPhone, CountryCode: countryCode}
}

// FullPhone is the country code followed by the national number.
func (s State) FullPhone() string {
	return s.CountryCode + s.Phone
}

// WithPhone records the national number, keeping digits only.
func (s State) WithPhone(raw string) State {
	s.Phone = forms.Digits(raw, forms.PhoneDigits)
	return s
}

// WithOTP records the code, keeping at most six digits.
func (s State) WithOTP(raw string) State {
	s.OTP = forms.Digits(raw, forms.OTPDigits)
	return s
}

// ValidatePhone checks the number before dispatching an OTP.
func (s State) ValidatePhone() error {
	return forms.Validate(forms.PhoneForm{Phone: s.Phone})
}

// ValidateOTP checks the code before verification.
func (s State) ValidateOTP() error {
	return forms.Validate(forms.OTPForm{OTP: s.OTP})
}

// OTPDispatched moves to AwaitingOtp once a code was sent to a valid number.
func (s State) OTPDispatched() (State, error) {
	if s.Step != AwaitingPhone {
		return s, fmt.Errorf("%w: otp dispatched from %s", ErrInvalidTransition, s.Step)
	}
	if err := s.ValidatePhone(); err != nil {
		return s, err
	}
	s.Step = AwaitingOtp
	s.OTP = ""
	return s, nil
}

// Verified completes the flow with the backend's grant.
func (s State) Verified(grant paygate.AuthGrant) (State, error) {
	if s.Step != AwaitingOtp {
		return s, fmt.Errorf("%w: verified from %s", ErrInvalidTransition, s.Step)
	}
	if err := s.ValidateOTP(); err != nil {
		return s, err
	}
	s.Step = Authenticated
	s.Grant = &grant
	return s, nil
}

// VerificationFailed keeps the flow on AwaitingOtp so the user can retry.
// There is no attempt limit.
func (s State) VerificationFailed() State {
	return s
}

// ChangeNumber returns to AwaitingPhone and clears the code.
func (s State) ChangeNumber() (State, error) {
	if s.Step != AwaitingOtp {
		return s, fmt.Errorf("%w: change number from %s", ErrInvalidTransition, s.Step)
	}
	s.Step = AwaitingPhone
	s.OTP = ""
	return s, nil
}
