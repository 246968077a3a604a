package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/berniyo/paygate/internal/authflow"
	"github.com/berniyo/paygate/internal/forms"
)

func (a *app) loginOTP(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login-otp", flag.ContinueOnError)
	phone := fs.String("phone", "", "national phone number (digits)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	state := authflow.Start(a.cfg.Auth.CountryCode)
	for state.Step != authflow.Authenticated {
		switch state.Step {
		case authflow.AwaitingPhone:
			raw, err := a.valueOr(*phone, fmt.Sprintf("Phone number (%s): ", a.cfg.Auth.CountryCode))
			if err != nil {
				return err
			}
			*phone = ""

			next, err := a.flow.SendOTP(ctx, state.WithPhone(raw))
			if err != nil {
				fmt.Fprintln(a.out, err)
				state = next
				continue
			}
			state = next
			fmt.Fprintf(a.out, "OTP sent to %s\n", state.FullPhone())

		case authflow.AwaitingOtp:
			raw, err := a.prompt("Enter OTP (or \"change\" to use another number): ")
			if err != nil {
				return err
			}
			if strings.EqualFold(raw, "change") {
				state, err = state.ChangeNumber()
				if err != nil {
					return err
				}
				continue
			}

			next, err := a.flow.VerifyOTP(ctx, state.WithOTP(raw))
			state = next
			if err != nil {
				fmt.Fprintln(a.out, err)
			}
		}
	}

	a.printWelcome()
	return nil
}

func (a *app) loginEmailOTP(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login-email-otp", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	addr, err := a.valueOr(*email, "Email: ")
	if err != nil {
		return err
	}
	if err := a.flow.SendEmailOTP(ctx, addr); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "OTP sent to %s\n", addr)

	for {
		code, err := a.prompt("Enter OTP: ")
		if err != nil {
			return err
		}
		if _, err := a.flow.VerifyEmailOTP(ctx, addr, code); err != nil {
			fmt.Fprintln(a.out, err)
			continue
		}
		a.printWelcome()
		return nil
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	addr, err := a.valueOr(*email, "Email: ")
	if err != nil {
		return err
	}
	secret, err := a.valueOr(*password, "Password: ")
	if err != nil {
		return err
	}
	if _, err := a.flow.PasswordLogin(ctx, addr, secret); err != nil {
		return err
	}
	a.printWelcome()
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", fmt.Sprintf("password, at least %d characters", forms.MinPassword))
	confirm := fs.String("confirm", "", "password confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var form forms.RegisterForm
	var err error
	if form.Email, err = a.valueOr(*email, "Email: "); err != nil {
		return err
	}
	if form.Password, err = a.valueOr(*password, "Password: "); err != nil {
		return err
	}
	if form.ConfirmPassword, err = a.valueOr(*confirm, "Confirm password: "); err != nil {
		return err
	}
	if _, err := a.flow.Register(ctx, form); err != nil {
		return err
	}
	a.printWelcome()
	return nil
}

func (a *app) logout(ctx context.Context, _ []string) error {
	return a.store.Logout(ctx)
}

func (a *app) whoami(_ context.Context, _ []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	user, _ := a.store.User()
	fmt.Fprintf(a.out, "%s\n", user.DisplayName())
	fmt.Fprintf(a.out, "  id:    %s\n", user.ID)
	if user.Email != "" {
		fmt.Fprintf(a.out, "  email: %s\n", user.Email)
	}
	if user.Role != "" {
		fmt.Fprintf(a.out, "  role:  %s\n", user.Role)
	}
	if exp, ok := a.store.TokenExpiry(); ok {
		fmt.Fprintf(a.out, "  session expires %s\n", exp.Local().Format(time.RFC1123))
	}
	return nil
}

func (a *app) printWelcome() {
	user, _ := a.store.User()
	fmt.Fprintf(a.out, "Signed in as %s\n", user.DisplayName())
}
