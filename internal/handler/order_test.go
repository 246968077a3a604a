package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berniyo/paygate/internal/forms"
	"github.com/berniyo/paygate/internal/paygate"
)

type fakeClient struct {
	createOrderFn func(ctx context.Context, attempt paygate.OrderAttempt) paygate.Result[paygate.PGOrder]
	attempts      []paygate.OrderAttempt
}

func (f *fakeClient) CreateOrder(ctx context.Context, attempt paygate.OrderAttempt) paygate.Result[paygate.PGOrder] {
	f.attempts = append(f.attempts, attempt)
	return f.createOrderFn(ctx, attempt)
}

type fakeCallback struct {
	calls []OrderResponse
	err   error
}

func (f *fakeCallback) Send(ctx context.Context, payload OrderResponse) error {
	f.calls = append(f.calls, payload)
	return f.err
}

func sampleEvent() OrderEvent {
	return OrderEvent{
		OrderID:        "ORD_1_1",
		Amount:         499,
		IdempotencyKey: "idem-1",
		APIKey:         "key_live",
		Signature:      "sig",
		Metadata:       map[string]any{"cart": "c-9"},
	}
}

func TestProcessorHandleSuccess(t *testing.T) {
	client := &fakeClient{
		createOrderFn: func(ctx context.Context, attempt paygate.OrderAttempt) paygate.Result[paygate.PGOrder] {
			return paygate.Ok(paygate.PGOrder{ID: "pg_1", OrderID: attempt.OrderID, Amount: attempt.Amount, Status: "created"}, 201)
		},
	}
	cb := &fakeCallback{}
	processor := NewProcessor(client, WithCallbackSender(cb))

	event := sampleEvent()
	resp, err := processor.Handle(context.Background(), event)
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, 201, resp.StatusCode)
	require.Equal(t, "created", resp.Order.Status)
	require.Equal(t, event.IdempotencyKey, resp.Request.IdempotencyKey)
	require.Equal(t, "c-9", resp.Request.Metadata["cart"])

	require.Len(t, client.attempts, 1)
	attempt := client.attempts[0]
	require.Equal(t, "idem-1", attempt.IdempotencyKey)
	require.Equal(t, paygate.Credentials{APIKey: "key_live", Signature: "sig"}, attempt.Credentials)

	require.Len(t, cb.calls, 1)
	require.Equal(t, resp, cb.calls[0])
}

func TestProcessorHandleRejection(t *testing.T) {
	client := &fakeClient{
		createOrderFn: func(context.Context, paygate.OrderAttempt) paygate.Result[paygate.PGOrder] {
			return paygate.Fail[paygate.PGOrder]("Invalid signature", 401)
		},
	}
	cb := &fakeCallback{err: errors.New("callback down")}
	processor := NewProcessor(client, WithCallbackSender(cb))

	resp, err := processor.Handle(context.Background(), sampleEvent())
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.Equal(t, 401, resp.StatusCode)
	require.Equal(t, "Invalid signature", resp.Message)
	require.Nil(t, resp.Order)
	require.Len(t, cb.calls, 1)
}

func TestProcessorHandleTransportFailureIsRetryable(t *testing.T) {
	client := &fakeClient{
		createOrderFn: func(context.Context, paygate.OrderAttempt) paygate.Result[paygate.PGOrder] {
			return paygate.Fail[paygate.PGOrder]("connection reset by peer", 0)
		},
	}
	cb := &fakeCallback{}
	processor := NewProcessor(client, WithCallbackSender(cb))

	_, err := processor.Handle(context.Background(), sampleEvent())
	require.ErrorIs(t, err, ErrTransport)
	require.Empty(t, cb.calls)

	_, err = processor.Handle(context.Background(), sampleEvent())
	require.ErrorIs(t, err, ErrTransport)
	require.Len(t, client.attempts, 2)
	require.Equal(t, client.attempts[0].IdempotencyKey, client.attempts[1].IdempotencyKey)
}

func TestProcessorHandleValidatesInput(t *testing.T) {
	client := &fakeClient{}
	processor := NewProcessor(client)

	event := sampleEvent()
	event.IdempotencyKey = ""
	_, err := processor.Handle(context.Background(), event)
	var verr *forms.ValidationError
	require.ErrorAs(t, err, &verr)
	require.EqualError(t, err, "Missing required fields")

	event = sampleEvent()
	event.Amount = -5
	_, err = processor.Handle(context.Background(), event)
	require.EqualError(t, err, "Invalid amount")
	require.Empty(t, client.attempts)
}

func TestHTTPSCallbackSenderSend(t *testing.T) {
	var got OrderResponse
	var secret, key string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret = r.Header.Get("X-Callback-Secret")
		key = r.Header.Get("Idempotency-Key")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	sender, err := NewHTTPSCallbackSender(srv.URL, "shh", srv.Client())
	require.NoError(t, err)

	payload := OrderResponse{Success: true, StatusCode: 201, Request: OrderSummary{OrderID: "ORD_1", IdempotencyKey: "idem-1"}}
	require.NoError(t, sender.Send(context.Background(), payload))
	require.Equal(t, "shh", secret)
	require.Equal(t, "idem-1", key)
	require.Equal(t, "ORD_1", got.Request.OrderID)
	require.True(t, got.Success)
}

func TestHTTPSCallbackSenderErrors(t *testing.T) {
	_, err := NewHTTPSCallbackSender("  ", "", nil)
	require.EqualError(t, err, "callback URL is required")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	sender, err := NewHTTPSCallbackSender(srv.URL, "", nil)
	require.NoError(t, err)
	err = sender.Send(context.Background(), OrderResponse{})
	require.EqualError(t, err, "callback endpoint returned 502: nope")
}
