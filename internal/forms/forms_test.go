package forms

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateMessages(t *testing.T) {
	tests := []struct {
		name  string
		form  any
		field string
		want  string
	}{
		{name: "short phone", form: PhoneForm{Phone: "98765"}, field: "phone", want: "Please enter a valid phone number"},
		{name: "otp length", form: OTPForm{OTP: "12345"}, field: "otp", want: "Please enter a valid 6-digit OTP"},
		{name: "otp letters", form: OTPForm{OTP: "12a456"}, field: "otp", want: "Please enter a valid 6-digit OTP"},
		{name: "bad email", form: EmailForm{Email: "nope"}, field: "email", want: "Please enter a valid email address"},
		{name: "short password", form: RegisterForm{Email: "a@b.co", Password: "12345", ConfirmPassword: "12345"}, field: "password", want: "Password must be at least 6 characters"},
		{name: "password mismatch", form: RegisterForm{Email: "a@b.co", Password: "123456", ConfirmPassword: "123457"}, field: "confirmPassword", want: "Passwords do not match"},
		{name: "zero topup", form: TopUpForm{Amount: 0}, field: "amount", want: "Please enter a valid amount"},
		{name: "small topup", form: TopUpForm{Amount: 9}, field: "amount", want: "Minimum top-up amount is ₹10"},
		{name: "large topup", form: TopUpForm{Amount: 100001}, field: "amount", want: "Maximum top-up amount is ₹1,00,000"},
		{name: "small transfer", form: TransferForm{ToPhone: "9876543210", Amount: 0.5}, field: "amount", want: "Minimum transfer amount is ₹1"},
		{name: "long note", form: TransferForm{ToPhone: "9876543210", Amount: 5, Note: strings.Repeat("x", 201)}, field: "note", want: "Note must be at most 200 characters"},
		{name: "merchant name", form: MerchantForm{WebhookURL: "https://m.io/h"}, field: "name", want: "Please fill in all required fields"},
		{name: "merchant webhook", form: MerchantForm{Name: "m", WebhookURL: "not a url"}, field: "webhookUrl", want: "Please enter a valid webhook URL"},
		{name: "order amount", form: OrderForm{OrderID: "o", Amount: -1, IdempotencyKey: "i", APIKey: "k", Signature: "s"}, field: "amount", want: "Invalid amount"},
		{name: "order missing key", form: OrderForm{OrderID: "o", Amount: 1, APIKey: "k", Signature: "s"}, field: "idempotencyKey", want: "Missing required fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.form)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			require.Equal(t, tt.field, verr.Field)
			require.Equal(t, tt.want, verr.Message)
		})
	}
}

func TestValidateAcceptsGoodInput(t *testing.T) {
	require.NoError(t, Validate(PhoneForm{Phone: "9876543210"}))
	require.NoError(t, Validate(OTPForm{OTP: "012345"}))
	require.NoError(t, Validate(RegisterForm{Email: "a@b.co", Password: "secret", ConfirmPassword: "secret"}))
	require.NoError(t, Validate(&TopUpForm{Amount: 10}))
	require.NoError(t, Validate(TopUpForm{Amount: 100000}))
	require.NoError(t, Validate(TransferForm{ToPhone: "9876543210", Amount: 1}))
	require.NoError(t, Validate(MerchantForm{Name: "Shop", WebhookURL: "https://shop.io/hook"}))
	require.NoError(t, Validate(OrderForm{OrderID: "o", Amount: 0.5, IdempotencyKey: "i", APIKey: "k", Signature: "s"}))
}

func TestDigits(t *testing.T) {
	require.Equal(t, "9876543210", Digits("(987) 654-3210 99", PhoneDigits))
	require.Equal(t, "123456", Digits("12 34 56 78", OTPDigits))
	require.Equal(t, "42", Digits("a4b2", 0))
	require.Empty(t, Digits("abc", 6))
}

func TestCheckBalance(t *testing.T) {
	balance := 100.0
	require.NoError(t, CheckBalance(50, &balance))
	require.NoError(t, CheckBalance(100, &balance))
	require.EqualError(t, CheckBalance(100.01, &balance), "Insufficient balance")
	require.NoError(t, CheckBalance(1e9, nil))
}
