package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/text/currency"

	"github.com/berniyo/paygate/internal/authflow"
	"github.com/berniyo/paygate/internal/checkout"
	"github.com/berniyo/paygate/internal/config"
	"github.com/berniyo/paygate/internal/money"
	"github.com/berniyo/paygate/internal/paygate"
	"github.com/berniyo/paygate/internal/session"
)

var errSignInRequired = errors.New("not signed in: run `paygate login-otp` first")

type command func(ctx context.Context, args []string) error

type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *session.Store
	client   *paygate.Client
	flow     *authflow.Flow
	loader   *checkout.Loader
	registry *prometheus.Registry
	unit     currency.Unit
	in       *bufio.Reader
	out      io.Writer
	closers  []io.Closer
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, in io.Reader, out io.Writer) (*app, error) {
	unit, err := money.ParseCurrency(cfg.Checkout.Currency)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		unit:     unit,
		in:       bufio.NewReader(in),
		out:      out,
	}

	storage, err := a.openStorage()
	if err != nil {
		return nil, err
	}
	a.store = session.NewStore(storage,
		session.WithLogger(logger),
		session.WithSignInRedirect(func() {
			fmt.Fprintln(out, "Signed out. Run `paygate login-otp` to sign in again.")
		}),
	)
	if err := a.store.Restore(ctx); err != nil {
		logger.Warn("session restore failed", zap.Error(err))
	}

	a.client = paygate.NewClient(cfg.API.BaseURL, a.store,
		paygate.WithLogger(logger),
		paygate.WithMetrics(paygate.NewMetrics("paygate", a.registry)),
	)
	a.flow = authflow.NewFlow(a.client, a.store, logger)
	a.loader = checkout.NewLoader(cfg.Checkout.ScriptURL, checkout.WithLogger(logger))
	return a, nil
}

func (a *app) openStorage() (session.Storage, error) {
	switch a.cfg.Session.Backend {
	case config.BackendMemory:
		return session.NewMemoryStorage(), nil
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		a.closers = append(a.closers, rdb)
		return session.NewRedisStorage(rdb, a.cfg.Redis.Prefix), nil
	default:
		fs, err := session.NewFileStorage(a.cfg.Session.Path)
		if err != nil {
			return nil, fmt.Errorf("open session file: %w", err)
		}
		return fs, nil
	}
}

// Close releases backend connections.
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
}

func (a *app) commands() map[string]command {
	return map[string]command{
		"login-otp":       a.loginOTP,
		"login-email-otp": a.loginEmailOTP,
		"login":           a.login,
		"register":        a.register,
		"logout":          a.logout,
		"whoami":          a.whoami,
		"dashboard":       a.dashboard,
		"balance":         a.balance,
		"transactions":    a.transactions,
		"topup":           a.topUp,
		"transfer":        a.transfer,
		"merchants":       a.merchants,
		"pg-order":        a.pgOrder,
	}
}

// requireSession guards the commands behind sign-in.
func (a *app) requireSession() error {
	if !a.store.IsAuthenticated() {
		return errSignInRequired
	}
	return nil
}

// prompt reads one trimmed line. A final line without a newline is returned
// before io.EOF is reported.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// valueOr prompts for label when v is empty.
func (a *app) valueOr(v, label string) (string, error) {
	if v != "" {
		return v, nil
	}
	return a.prompt(label)
}

func (a *app) format(amount float64) string {
	return money.Format(money.DefaultLocale, a.unit, amount)
}

func failure[T any](res paygate.Result[T]) error {
	return errors.New(res.Error)
}
