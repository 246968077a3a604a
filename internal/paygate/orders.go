package paygate

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Header names carried by payment-gateway order creation.
const (
	HeaderAPIKey         = "x-api-key"
	HeaderSignature      = "x-signature"
	HeaderIdempotencyKey = "idempotency-key"
)

// Credentials authenticate a merchant against the payment gateway.
type Credentials struct {
	APIKey    string
	Signature string
}

// OrderAttempt is one logical order submission. Resubmitting the same value
// is a genuine retry and reuses its idempotency key; Fresh starts a new one.
type OrderAttempt struct {
	OrderID        string
	Amount         float64
	IdempotencyKey string
	Credentials    Credentials
}

// NewOrderID returns an id of the form ORD_<unix-millis>_<0..9999>.
func NewOrderID() string {
	return fmt.Sprintf("ORD_%d_%d", time.Now().UnixMilli(), rand.Intn(10000))
}

// NewIdempotencyKey returns a random key for a new logical attempt.
func NewIdempotencyKey() string {
	return uuid.NewString()
}

// NewOrderAttempt prepares a submission with freshly generated ids.
func NewOrderAttempt(amount float64, creds Credentials) OrderAttempt {
	return OrderAttempt{
		OrderID:        NewOrderID(),
		Amount:         amount,
		IdempotencyKey: NewIdempotencyKey(),
		Credentials:    creds,
	}
}

// Fresh returns a new logical attempt for the same amount and credentials.
func (a OrderAttempt) Fresh() OrderAttempt {
	return NewOrderAttempt(a.Amount, a.Credentials)
}

// Headers returns the out-of-band headers for the attempt.
func (a OrderAttempt) Headers() Headers {
	return Headers{
		HeaderAPIKey:         a.Credentials.APIKey,
		HeaderSignature:      a.Credentials.Signature,
		HeaderIdempotencyKey: a.IdempotencyKey,
	}
}

// Validate checks the attempt is complete enough to submit.
func (a OrderAttempt) Validate() error {
	switch {
	case a.Amount <= 0:
		return errors.New("amount must be positive")
	case a.OrderID == "":
		return errors.New("order id is required")
	case a.IdempotencyKey == "":
		return errors.New("idempotency key is required")
	case a.Credentials.APIKey == "" || a.Credentials.Signature == "":
		return errors.New("merchant credentials are required")
	}
	return nil
}

// CreateOrder submits a payment-gateway order. The attempt's headers are sent
// verbatim and win over any default header of the same name.
func (c *Client) CreateOrder(ctx context.Context, attempt OrderAttempt) Result[PGOrder] {
	body := map[string]any{
		"orderId": attempt.OrderID,
		"amount":  attempt.Amount,
	}
	return decodeEnveloped[PGOrder](c.Post(ctx, "/api/pg/orders", body, attempt.Headers()))
}
