package paygate

import (
	"context"
	"net/url"
	"strconv"
)

// Balance fetches the wallet balance.
func (c *Client) Balance(ctx context.Context) Result[Balance] {
	return Decode[Balance](c.Get(ctx, "/api/wallet/balance"))
}

// Transactions lists wallet entries, optionally paginated and filtered by status.
func (c *Client) Transactions(ctx context.Context, q TransactionQuery) Result[TransactionPage] {
	params := url.Values{}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Status != "" {
		params.Set("status", q.Status)
	}

	path := "/api/wallet/transactions"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	return Decode[TransactionPage](c.Get(ctx, path))
}

// TopUp creates an order to be completed in the hosted checkout widget.
func (c *Client) TopUp(ctx context.Context, amount float64) Result[TopUpOrder] {
	return Decode[TopUpOrder](c.Post(ctx, "/api/wallet/topup", map[string]float64{"amount": amount}, nil))
}

// Transfer sends funds to another wallet.
func (c *Client) Transfer(ctx context.Context, req TransferRequest) Result[TransferReceipt] {
	return Decode[TransferReceipt](c.Post(ctx, "/api/wallet/transfer", req, nil))
}
