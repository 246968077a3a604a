package handler

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/berniyo/paygate/internal/forms"
	"github.com/berniyo/paygate/internal/paygate"
)

// ErrTransport marks a submission that never reached the backend. Lambda
// redelivers the same event, which carries the same idempotency key.
var ErrTransport = errors.New("order submission did not reach the gateway")

// OrderClient defines the subset of the API client used by the processor.
type OrderClient interface {
	CreateOrder(ctx context.Context, attempt paygate.OrderAttempt) paygate.Result[paygate.PGOrder]
}

// OrderEvent is the payload sent to the Lambda function.
type OrderEvent struct {
	OrderID        string         `json:"orderId"`
	Amount         float64        `json:"amount"`
	IdempotencyKey string         `json:"idempotencyKey"`
	APIKey         string         `json:"apiKey"`
	Signature      string         `json:"signature"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// OrderSummary echoes the request without merchant secrets.
type OrderSummary struct {
	OrderID        string         `json:"orderId"`
	Amount         float64        `json:"amount"`
	IdempotencyKey string         `json:"idempotencyKey"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// OrderResponse is emitted after processing completes.
type OrderResponse struct {
	Success    bool             `json:"success"`
	StatusCode int              `json:"statusCode,omitempty"`
	Order      *paygate.PGOrder `json:"order,omitempty"`
	Message    string           `json:"message,omitempty"`
	Request    OrderSummary     `json:"request"`
}

// CallbackSender delivers order outcomes to downstream systems.
type CallbackSender interface {
	Send(ctx context.Context, payload OrderResponse) error
}

// Processor submits payment-gateway orders on behalf of merchants.
type Processor struct {
	client   OrderClient
	logger   *zap.Logger
	callback CallbackSender
}

// Option customizes the processor.
type Option func(*Processor)

// WithLogger lets callers supply a custom logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithCallbackSender wires a callback destination invoked after processing concludes.
func WithCallbackSender(sender CallbackSender) Option {
	return func(p *Processor) {
		p.callback = sender
	}
}

// NewProcessor builds a Processor with sane defaults.
func NewProcessor(client OrderClient, opts ...Option) *Processor {
	p := &Processor{
		client: client,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle implements the AWS Lambda handler entry point. Gateway rejections
// are reported in the response; only transport failures return an error so
// that the invocation is retried with the same key.
func (p *Processor) Handle(ctx context.Context, event OrderEvent) (OrderResponse, error) {
	if err := validateEvent(event); err != nil {
		return OrderResponse{}, err
	}

	attempt := paygate.OrderAttempt{
		OrderID:        event.OrderID,
		Amount:         event.Amount,
		IdempotencyKey: event.IdempotencyKey,
		Credentials:    paygate.Credentials{APIKey: event.APIKey, Signature: event.Signature},
	}
	summary := OrderSummary{
		OrderID:        event.OrderID,
		Amount:         event.Amount,
		IdempotencyKey: event.IdempotencyKey,
		Metadata:       event.Metadata,
	}

	p.logger.Info("submitting order",
		zap.String("order_id", event.OrderID),
		zap.Float64("amount", event.Amount),
		zap.String("idempotency_key", event.IdempotencyKey),
	)
	res := p.client.CreateOrder(ctx, attempt)
	if res.TransportFailure() {
		p.logger.Warn("order submission failed in transit", zap.String("order_id", event.OrderID), zap.String("error", res.Error))
		return OrderResponse{}, fmt.Errorf("%w: %s", ErrTransport, res.Error)
	}

	resp := OrderResponse{
		Success:    res.Success,
		StatusCode: res.StatusCode,
		Request:    summary,
	}
	if res.Success {
		order := res.Data
		resp.Order = &order
		p.logger.Info("order accepted", zap.String("order_id", event.OrderID), zap.String("status", order.Status))
	} else {
		resp.Message = res.Error
		p.logger.Warn("order rejected", zap.String("order_id", event.OrderID), zap.Int("status", res.StatusCode), zap.String("error", res.Error))
	}

	p.emitCallback(ctx, resp)
	return resp, nil
}

func validateEvent(event OrderEvent) error {
	return forms.Validate(forms.OrderForm{
		OrderID:        event.OrderID,
		Amount:         event.Amount,
		IdempotencyKey: event.IdempotencyKey,
		APIKey:         event.APIKey,
		Signature:      event.Signature,
	})
}

func (p *Processor) emitCallback(ctx context.Context, resp OrderResponse) {
	if p.callback == nil {
		return
	}
	if err := p.callback.Send(ctx, resp); err != nil {
		p.logger.Warn("callback delivery failed", zap.Error(err))
	}
}
