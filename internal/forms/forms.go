// Package forms validates user input before any request is issued.
package forms

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Limits enforced on wallet operations, in major currency units.
const (
	MinTopUp    = 10
	MaxTopUp    = 100000
	MinTransfer = 1
	MaxNoteLen  = 200
	PhoneDigits = 10
	OTPDigits   = 6
	MinPassword = 6
)

// ValidationError carries the first human-readable problem found.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PhoneForm is the phone-number step of OTP login.
type PhoneForm struct {
	Phone string `json:"phone" validate:"required,numeric,min=10" msg:"Please enter a valid phone number"`
}

// OTPForm is the code step of OTP login.
type OTPForm struct {
	OTP string `json:"otp" validate:"required,numeric,len=6" msg:"Please enter a valid 6-digit OTP"`
}

// EmailForm starts an email OTP login.
type EmailForm struct {
	Email string `json:"email" validate:"required,email" msg:"Please enter a valid email address"`
}

// LoginForm is the email and password sign-in.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email" msg:"Please enter a valid email address"`
	Password string `json:"password" validate:"required" msg:"Password is required"`
}

// RegisterForm creates a password account.
type RegisterForm struct {
	Email           string `json:"email" validate:"required,email" msg:"Please enter a valid email address"`
	Password        string `json:"password" validate:"required,min=6" msg:"Password must be at least 6 characters"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password" msg:"Passwords do not match"`
}

// TopUpForm adds funds through the hosted checkout.
type TopUpForm struct {
	Amount float64 `json:"amount" validate:"gt=0,gte=10,lte=100000" msg:"Please enter a valid amount"`
}

// TransferForm sends funds to another wallet.
type TransferForm struct {
	ToPhone string  `json:"toPhone" validate:"required,min=10" msg:"Please enter a valid phone number"`
	Amount  float64 `json:"amount" validate:"gt=0,gte=1" msg:"Please enter a valid amount"`
	Note    string  `json:"note" validate:"max=200" msg:"Note must be at most 200 characters"`
}

// MerchantForm registers a merchant.
type MerchantForm struct {
	Name       string `json:"name" validate:"required" msg:"Please fill in all required fields"`
	WebhookURL string `json:"webhookUrl" validate:"required,url" msg:"Please enter a valid webhook URL"`
}

// OrderForm is a raw payment-gateway order submission.
type OrderForm struct {
	OrderID        string  `json:"orderId" validate:"required" msg:"Missing required fields"`
	Amount         float64 `json:"amount" validate:"gt=0" msg:"Invalid amount"`
	IdempotencyKey string  `json:"idempotencyKey" validate:"required" msg:"Missing required fields"`
	APIKey         string  `json:"apiKey" validate:"required" msg:"Missing required fields"`
	Signature      string  `json:"signature" validate:"required" msg:"Missing required fields"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks a form struct and returns a *ValidationError for the first
// failing field.
func Validate(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	return &ValidationError{Field: fe.Field(), Message: messageFor(form, fe)}
}

// Specific bound messages, keyed by form and tag.
var boundMessages = map[string]string{
	"TopUpForm.gte":    "Minimum top-up amount is ₹10",
	"TopUpForm.lte":    "Maximum top-up amount is ₹1,00,000",
	"TransferForm.gte": "Minimum transfer amount is ₹1",
}

func messageFor(form any, fe validator.FieldError) string {
	t := reflect.TypeOf(form)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if msg, ok := boundMessages[t.Name()+"."+fe.Tag()]; ok {
		return msg
	}
	if f, ok := t.FieldByName(fe.StructField()); ok {
		if msg := f.Tag.Get("msg"); msg != "" {
			return msg
		}
	}
	return fe.Error()
}

// Digits strips every non-digit and truncates to max digits when max > 0.
func Digits(raw string, max int) string {
	var b strings.Builder
	n := 0
	for _, r := range raw {
		if r < '0' || r > '9' {
			continue
		}
		if max > 0 && n == max {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// CheckBalance rejects a transfer exceeding a known balance. A nil balance
// means it has not been fetched and the check is skipped.
func CheckBalance(amount float64, balance *float64) error {
	if balance != nil && amount > *balance {
		return &ValidationError{Field: "amount", Message: "Insufficient balance"}
	}
	return nil
}
