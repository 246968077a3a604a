package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/berniyo/paygate/internal/checkout"
	"github.com/berniyo/paygate/internal/forms"
	"github.com/berniyo/paygate/internal/paygate"
)

// Recent activity shown on the dashboard.
const (
	dashboardLimit  = 5
	dashboardStatus = "success"
)

func (a *app) dashboard(ctx context.Context, _ []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}

	var (
		wg      sync.WaitGroup
		balance paygate.Result[paygate.Balance]
		recent  paygate.Result[paygate.TransactionPage]
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		balance = a.client.Balance(ctx)
	}()
	go func() {
		defer wg.Done()
		recent = a.client.Transactions(ctx, paygate.TransactionQuery{Limit: dashboardLimit, Status: dashboardStatus})
	}()
	wg.Wait()

	user, _ := a.store.User()
	fmt.Fprintf(a.out, "Welcome back, %s\n\n", user.DisplayName())

	if balance.Success {
		fmt.Fprintf(a.out, "Balance: %s\n\n", a.format(balance.Data.Balance))
	} else {
		fmt.Fprintf(a.out, "Balance unavailable: %s\n\n", balance.Error)
	}

	fmt.Fprintln(a.out, "Recent transactions")
	if !recent.Success {
		fmt.Fprintf(a.out, "  unavailable: %s\n", recent.Error)
		return nil
	}
	a.printTransactions(recent.Data.Transactions)
	return nil
}

func (a *app) balance(ctx context.Context, _ []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	res := a.client.Balance(ctx)
	if !res.Success {
		return failure(res)
	}
	fmt.Fprintln(a.out, a.format(res.Data.Balance))
	return nil
}

func (a *app) transactions(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("transactions", flag.ContinueOnError)
	page := fs.Int("page", 0, "page number")
	limit := fs.Int("limit", 0, "page size")
	status := fs.String("status", "", "filter by status, e.g. success")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	res := a.client.Transactions(ctx, paygate.TransactionQuery{Page: *page, Limit: *limit, Status: *status})
	if !res.Success {
		return failure(res)
	}
	a.printTransactions(res.Data.Transactions)
	if res.Data.Total > 0 {
		fmt.Fprintf(a.out, "%d of %d\n", len(res.Data.Transactions), res.Data.Total)
	}
	return nil
}

func (a *app) printTransactions(txs []paygate.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(a.out, "  No transactions yet")
		return
	}
	for _, tx := range txs {
		sign := "-"
		if tx.Credit() {
			sign = "+"
		}
		label := tx.Purpose
		if label == "" {
			label = tx.Type
		}
		when := ""
		if !tx.CreatedAt.IsZero() {
			when = tx.CreatedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(a.out, "  %s%s  %-10s %-8s %s", sign, a.format(tx.Amount), label, tx.Status, when)
		if tx.Note != "" {
			fmt.Fprintf(a.out, "  %q", tx.Note)
		}
		fmt.Fprintln(a.out)
	}
}

func (a *app) topUp(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("topup", flag.ContinueOnError)
	amount := fs.Float64("amount", 0, fmt.Sprintf("amount between %d and %d", forms.MinTopUp, forms.MaxTopUp))
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}
	if err := forms.Validate(forms.TopUpForm{Amount: *amount}); err != nil {
		return err
	}

	res := a.client.TopUp(ctx, *amount)
	if !res.Success {
		return failure(res)
	}
	if !a.loader.Load(ctx) {
		return errors.New("failed to load the payment widget, please try again")
	}

	opts, err := checkout.NewOptions(res.Data, checkout.Config{
		Key:      a.cfg.Checkout.Key,
		Currency: a.cfg.Checkout.Currency,
		Name:     a.cfg.Checkout.Name,
	})
	if err != nil {
		return err
	}
	a.logger.Info("checkout prepared", zap.String("order_id", opts.OrderID), zap.Int64("amount_minor", opts.Amount))

	fmt.Fprintf(a.out, "Top-up of %s created. Complete it in the checkout widget with:\n", a.format(*amount))
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(opts)
}

func (a *app) transfer(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("transfer", flag.ContinueOnError)
	to := fs.String("to", "", "recipient phone number")
	amount := fs.Float64("amount", 0, fmt.Sprintf("amount, at least %d", forms.MinTransfer))
	note := fs.String("note", "", fmt.Sprintf("optional note, at most %d characters", forms.MaxNoteLen))
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	form := forms.TransferForm{ToPhone: *to, Amount: *amount, Note: *note}
	if err := forms.Validate(form); err != nil {
		return err
	}

	var known *float64
	if bal := a.client.Balance(ctx); bal.Success {
		known = &bal.Data.Balance
	} else {
		a.logger.Debug("balance unknown, skipping funds check", zap.String("error", bal.Error))
	}
	if err := forms.CheckBalance(form.Amount, known); err != nil {
		return err
	}

	res := a.client.Transfer(ctx, paygate.TransferRequest{ToPhone: form.ToPhone, Amount: form.Amount, Note: form.Note})
	if !res.Success {
		return failure(res)
	}
	msg := res.Data.Message
	if msg == "" {
		msg = "Transfer successful"
	}
	fmt.Fprintf(a.out, "%s: %s to %s\n", msg, a.format(form.Amount), form.ToPhone)
	if res.Data.Balance != nil {
		fmt.Fprintf(a.out, "New balance: %s\n", a.format(*res.Data.Balance))
	}
	return nil
}
