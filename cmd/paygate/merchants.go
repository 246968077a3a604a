package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"go.uber.org/zap"

	"github.com/berniyo/paygate/internal/forms"
	"github.com/berniyo/paygate/internal/paygate"
)

func (a *app) merchants(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: paygate merchants list|create [flags]")
	}
	if err := a.requireSession(); err != nil {
		return err
	}
	switch args[0] {
	case "list":
		return a.listMerchants(ctx, args[1:])
	case "create":
		return a.createMerchant(ctx, args[1:])
	default:
		return fmt.Errorf("unknown merchants subcommand %q", args[0])
	}
}

func (a *app) listMerchants(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("merchants list", flag.ContinueOnError)
	reveal := fs.Bool("reveal", false, "show API secrets")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res := a.client.ListMerchants(ctx)
	if !res.Success {
		return failure(res)
	}
	if len(res.Data) == 0 {
		fmt.Fprintln(a.out, "No merchants yet")
		return nil
	}
	for _, m := range res.Data {
		fmt.Fprintf(a.out, "%s (%s)\n", m.Name, m.ID)
		fmt.Fprintf(a.out, "  webhook: %s\n", m.WebhookURL)
		fmt.Fprintf(a.out, "  key:     %s\n", m.KeyPreview())
		fmt.Fprintf(a.out, "  secret:  %s\n", m.SecretView(*reveal))
		if m.Status != "" {
			fmt.Fprintf(a.out, "  status:  %s\n", m.Status)
		}
	}
	return nil
}

func (a *app) createMerchant(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("merchants create", flag.ContinueOnError)
	name := fs.String("name", "", "merchant name")
	webhook := fs.String("webhook", "", "webhook URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	form := forms.MerchantForm{Name: *name, WebhookURL: *webhook}
	if err := forms.Validate(form); err != nil {
		return err
	}
	res := a.client.CreateMerchant(ctx, paygate.MerchantRequest{Name: form.Name, WebhookURL: form.WebhookURL})
	if !res.Success {
		return failure(res)
	}

	m := res.Data
	fmt.Fprintf(a.out, "Merchant %s created\n", m.Name)
	fmt.Fprintf(a.out, "  api key:    %s\n", m.APIKey)
	fmt.Fprintf(a.out, "  api secret: %s\n", m.APISecret)
	fmt.Fprintln(a.out, "Store the secret now. It is masked in listings.")
	return nil
}

func (a *app) pgOrder(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pg-order", flag.ContinueOnError)
	amount := fs.Float64("amount", 0, "order amount")
	apiKey := fs.String("api-key", "", "merchant API key")
	signature := fs.String("signature", "", "request signature")
	orderID := fs.String("order-id", "", "order id (generated when empty)")
	idemKey := fs.String("idempotency-key", "", "idempotency key (generated when empty)")
	retries := fs.Int("retries", 0, "resubmit the same attempt this many times on transport failure")
	if err := fs.Parse(args); err != nil {
		return err
	}

	attempt := paygate.NewOrderAttempt(*amount, paygate.Credentials{APIKey: *apiKey, Signature: *signature})
	if *orderID != "" {
		attempt.OrderID = *orderID
	}
	if *idemKey != "" {
		attempt.IdempotencyKey = *idemKey
	}
	if err := attempt.Validate(); err != nil {
		return err
	}

	res := a.client.CreateOrder(ctx, attempt)
	for try := 1; res.TransportFailure() && try <= *retries && ctx.Err() == nil; try++ {
		a.logger.Warn("retrying order with the same idempotency key",
			zap.String("order_id", attempt.OrderID),
			zap.Int("attempt", try+1),
			zap.String("error", res.Error),
		)
		res = a.client.CreateOrder(ctx, attempt)
	}

	fmt.Fprintf(a.out, "order id:        %s\n", attempt.OrderID)
	fmt.Fprintf(a.out, "idempotency key: %s\n", attempt.IdempotencyKey)
	if !res.Success {
		return failure(res)
	}
	fmt.Fprintf(a.out, "Order created: %s", a.format(res.Data.Amount))
	if res.Data.Status != "" {
		fmt.Fprintf(a.out, " (%s)", res.Data.Status)
	}
	fmt.Fprintln(a.out)
	return nil
}
