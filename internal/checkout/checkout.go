// Package checkout bridges wallet top-ups to the hosted checkout widget.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/berniyo/paygate/internal/money"
	"github.com/berniyo/paygate/internal/paygate"
)

// DefaultScriptURL is the widget script loaded before opening checkout.
const DefaultScriptURL = "https://checkout.razorpay.com/v1/checkout.js"

// Loader fetches the widget script once. Load never returns an error: a
// failure yields false so callers can show a recoverable message.
type Loader struct {
	scriptURL  string
	httpClient *http.Client
	logger     *zap.Logger

	mu    sync.Mutex
	ready bool
}

// Option customizes the loader.
type Option func(*Loader)

// WithHTTPClient swaps the HTTP client used to fetch the script.
func WithHTTPClient(hc *http.Client) Option {
	return func(l *Loader) {
		if hc != nil {
			l.httpClient = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg *zap.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// NewLoader builds a loader for scriptURL, or DefaultScriptURL when empty.
func NewLoader(scriptURL string, opts ...Option) *Loader {
	scriptURL = strings.TrimSpace(scriptURL)
	if scriptURL == "" {
		scriptURL = DefaultScriptURL
	}
	l := &Loader{
		scriptURL:  scriptURL,
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load makes the widget available. Once it has succeeded, later calls return
// true immediately. Concurrent callers wait on the same fetch.
func (l *Loader) Load(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ready {
		return true
	}
	if err := l.fetch(ctx); err != nil {
		l.logger.Warn("checkout script unavailable", zap.String("url", l.scriptURL), zap.Error(err))
		return false
	}
	l.ready = true
	return true
}

// Ready reports whether a previous Load succeeded.
func (l *Loader) Ready() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ready
}

func (l *Loader) fetch(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.scriptURL, nil)
	if err != nil {
		return err
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("script returned %d", resp.StatusCode)
	}
	n, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New("script is empty")
	}
	return nil
}

// Config holds merchant-level widget settings.
type Config struct {
	Key         string
	Currency    string
	Name        string
	Description string
}

// Options is the descriptor handed to the widget. Amount is in minor units.
type Options struct {
	Key         string `json:"key"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OrderID     string `json:"order_id"`
}

// NewOptions builds the widget descriptor for a top-up order. Values on the
// order take precedence over cfg.
func NewOptions(order paygate.TopUpOrder, cfg Config) (Options, error) {
	if order.OrderID == "" {
		return Options{}, errors.New("order id is required")
	}
	if order.Amount <= 0 {
		return Options{}, errors.New("order amount must be positive")
	}

	code := order.Currency
	if code == "" {
		code = cfg.Currency
	}
	if code == "" {
		code = "INR"
	}
	unit, err := money.ParseCurrency(strings.ToUpper(code))
	if err != nil {
		return Options{}, err
	}

	key := order.KeyID
	if key == "" {
		key = cfg.Key
	}
	description := cfg.Description
	if description == "" {
		description = "Wallet top-up"
	}

	return Options{
		Key:         key,
		Amount:      money.MinorUnits(order.Amount, unit),
		Currency:    unit.String(),
		Name:        cfg.Name,
		Description: description,
		OrderID:     order.OrderID,
	}, nil
}
