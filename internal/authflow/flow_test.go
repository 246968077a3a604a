package authflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/berniyo/paygate/internal/forms"
	"github.com/berniyo/paygate/internal/paygate"
	"github.com/berniyo/paygate/internal/session"
)

type fakeAPI struct {
	sendOTPFn   func(ctx context.Context, phone string) paygate.Result[paygate.Ack]
	verifyOTPFn func(ctx context.Context, phone, otp string) paygate.Result[paygate.AuthGrant]
	grantFn     func(op, id, secret string) paygate.Result[paygate.AuthGrant]
	sendEmailFn func(ctx context.Context, email string) paygate.Result[paygate.Ack]
	calls       int
}

func (f *fakeAPI) SendOTP(ctx context.Context, phone string) paygate.Result[paygate.Ack] {
	f.calls++
	return f.sendOTPFn(ctx, phone)
}

func (f *fakeAPI) VerifyOTP(ctx context.Context, phone, otp string) paygate.Result[paygate.AuthGrant] {
	f.calls++
	return f.verifyOTPFn(ctx, phone, otp)
}

func (f *fakeAPI) SendEmailOTP(ctx context.Context, email string) paygate.Result[paygate.Ack] {
	f.calls++
	return f.sendEmailFn(ctx, email)
}

func (f *fakeAPI) VerifyEmailOTP(_ context.Context, email, otp string) paygate.Result[paygate.AuthGrant] {
	f.calls++
	return f.grantFn("verify-email-otp", email, otp)
}

func (f *fakeAPI) Register(_ context.Context, email, password string) paygate.Result[paygate.AuthGrant] {
	f.calls++
	return f.grantFn("register", email, password)
}

func (f *fakeAPI) Login(_ context.Context, email, password string) paygate.Result[paygate.AuthGrant] {
	f.calls++
	return f.grantFn("login", email, password)
}

func grant(token, id string) paygate.Result[paygate.AuthGrant] {
	return paygate.Ok(paygate.AuthGrant{Token: token, User: session.User{ID: id}}, 200)
}

func TestPhoneFlowHappyPath(t *testing.T) {
	ctx := context.Background()
	var sentTo, verifiedWith string
	api := &fakeAPI{
		sendOTPFn: func(_ context.Context, phone string) paygate.Result[paygate.Ack] {
			sentTo = phone
			return paygate.Ok(paygate.Ack{Message: "sent"}, 200)
		},
		verifyOTPFn: func(_ context.Context, phone, otp string) paygate.Result[paygate.AuthGrant] {
			verifiedWith = phone + "/" + otp
			return grant("tok", "u1")
		},
	}
	store := session.NewStore(nil)
	flow := NewFlow(api, store, nil)

	state := Start("+91").WithPhone("98765-43210")
	state, err := flow.SendOTP(ctx, state)
	require.NoError(t, err)
	require.Equal(t, AwaitingOtp, state.Step)
	require.Equal(t, "+919876543210", sentTo)

	state, err = flow.VerifyOTP(ctx, state.WithOTP("123456"))
	require.NoError(t, err)
	require.Equal(t, Authenticated, state.Step)
	require.Equal(t, "+919876543210/123456", verifiedWith)
	require.Equal(t, "tok", state.Grant.Token)

	token, ok := store.Token()
	require.True(t, ok)
	require.Equal(t, "tok", token)
}

func TestPhoneFlowValidationSkipsNetwork(t *testing.T) {
	api := &fakeAPI{}
	flow := NewFlow(api, session.NewStore(nil), nil)

	state, err := flow.SendOTP(context.Background(), Start("+91").WithPhone("12345"))
	var verr *forms.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, AwaitingPhone, state.Step)

	state = State{Step: AwaitingOtp, CountryCode: "+91", Phone: "9876543210"}
	state, err = flow.VerifyOTP(context.Background(), state.WithOTP("12a4"))
	require.ErrorAs(t, err, &verr)
	require.Equal(t, AwaitingOtp, state.Step)

	require.Zero(t, api.calls)
}

func TestPhoneFlowRejectedDispatchStaysOnPhone(t *testing.T) {
	api := &fakeAPI{
		sendOTPFn: func(context.Context, string) paygate.Result[paygate.Ack] {
			return paygate.Fail[paygate.Ack]("Too many requests", 429)
		},
	}
	flow := NewFlow(api, session.NewStore(nil), nil)

	state, err := flow.SendOTP(context.Background(), Start("+91").WithPhone("9876543210"))
	var rej *RejectedError
	require.ErrorAs(t, err, &rej)
	require.Equal(t, "Too many requests", rej.Message)
	require.Equal(t, 429, rej.StatusCode)
	require.Equal(t, AwaitingPhone, state.Step)
}

func TestPhoneFlowWrongCodeAllowsRetry(t *testing.T) {
	attempts := 0
	api := &fakeAPI{
		verifyOTPFn: func(_ context.Context, _, otp string) paygate.Result[paygate.AuthGrant] {
			attempts++
			if otp != "222222" {
				return paygate.Fail[paygate.AuthGrant]("Invalid OTP", 400)
			}
			return grant("tok", "u1")
		},
	}
	store := session.NewStore(nil)
	flow := NewFlow(api, store, nil)
	state := State{Step: AwaitingOtp, CountryCode: "+91", Phone: "9876543210"}

	for i := 0; i < 3; i++ {
		var err error
		state, err = flow.VerifyOTP(context.Background(), state.WithOTP("111111"))
		require.EqualError(t, err, "Invalid OTP")
		require.Equal(t, AwaitingOtp, state.Step)
		require.False(t, store.IsAuthenticated())
	}

	state, err := flow.VerifyOTP(context.Background(), state.WithOTP("222222"))
	require.NoError(t, err)
	require.Equal(t, Authenticated, state.Step)
	require.Equal(t, 4, attempts)
}

func TestVerifyWithoutTokenIsRejected(t *testing.T) {
	api := &fakeAPI{
		verifyOTPFn: func(context.Context, string, string) paygate.Result[paygate.AuthGrant] {
			return paygate.Ok(paygate.AuthGrant{}, 200)
		},
	}
	store := session.NewStore(nil)
	flow := NewFlow(api, store, nil)
	state := State{Step: AwaitingOtp, CountryCode: "+91", Phone: "9876543210", OTP: "123456"}

	state, err := flow.VerifyOTP(context.Background(), state)
	var rej *RejectedError
	require.ErrorAs(t, err, &rej)
	require.Equal(t, AwaitingOtp, state.Step)
	require.False(t, store.IsAuthenticated())
}

func TestFlowRejectsOutOfOrderCalls(t *testing.T) {
	flow := NewFlow(&fakeAPI{}, session.NewStore(nil), nil)

	_, err := flow.VerifyOTP(context.Background(), Start("+91"))
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = flow.SendOTP(context.Background(), State{Step: Authenticated})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPasswordAndRegister(t *testing.T) {
	var ops []string
	api := &fakeAPI{
		grantFn: func(op, id, _ string) paygate.Result[paygate.AuthGrant] {
			ops = append(ops, op)
			if op == "login" && id == "wrong@b.co" {
				return paygate.Fail[paygate.AuthGrant]("Invalid credentials", 401)
			}
			return grant("tok-"+op, "u1")
		},
	}
	store := session.NewStore(nil)
	flow := NewFlow(api, store, nil)
	ctx := context.Background()

	_, err := flow.Register(ctx, forms.RegisterForm{Email: "a@b.co", Password: "secret", ConfirmPassword: "secrets"})
	require.EqualError(t, err, "Passwords do not match")
	require.Empty(t, ops)

	g, err := flow.Register(ctx, forms.RegisterForm{Email: "a@b.co", Password: "secret", ConfirmPassword: "secret"})
	require.NoError(t, err)
	require.Equal(t, "tok-register", g.Token)

	_, err = flow.PasswordLogin(ctx, "wrong@b.co", "secret")
	require.EqualError(t, err, "Invalid credentials")
	token, _ := store.Token()
	require.Equal(t, "tok-register", token)

	_, err = flow.PasswordLogin(ctx, "a@b.co", "secret")
	require.NoError(t, err)
	token, _ = store.Token()
	require.Equal(t, "tok-login", token)
	require.Equal(t, []string{"register", "login", "login"}, ops)
}

func TestEmailOTP(t *testing.T) {
	api := &fakeAPI{
		sendEmailFn: func(context.Context, string) paygate.Result[paygate.Ack] {
			return paygate.Fail[paygate.Ack]("dial tcp: connection refused", 0)
		},
		grantFn: func(op, email, otp string) paygate.Result[paygate.AuthGrant] {
			return grant("tok-email", email+":"+otp)
		},
	}
	store := session.NewStore(nil)
	flow := NewFlow(api, store, nil)
	ctx := context.Background()

	err := flow.SendEmailOTP(ctx, "a@b.co")
	var rej *RejectedError
	require.True(t, errors.As(err, &rej))
	require.Zero(t, rej.StatusCode)

	g, err := flow.VerifyEmailOTP(ctx, "a@b.co", "12 34 56")
	require.NoError(t, err)
	require.Equal(t, "a@b.co:123456", g.User.ID)
	require.True(t, store.IsAuthenticated())
}
