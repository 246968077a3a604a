package paygate

import (
	"bytes"
	"context"
	"encoding/json"
)

// CreateMerchant registers a merchant. Credentials are issued server-side.
func (c *Client) CreateMerchant(ctx context.Context, req MerchantRequest) Result[Merchant] {
	return decodeEnveloped[Merchant](c.Post(ctx, "/api/merchants", req, nil))
}

// ListMerchants returns the caller's merchants.
func (c *Client) ListMerchants(ctx context.Context) Result[[]Merchant] {
	res := decodeEnveloped[[]Merchant](c.Get(ctx, "/api/merchants/"))
	if res.Success && res.Data == nil {
		res.Data = []Merchant{}
	}
	return res
}

// decodeEnveloped decodes {"data": T} when the body carries a data field and
// T itself otherwise.
func decodeEnveloped[T any](raw Result[json.RawMessage]) Result[T] {
	if !raw.Success {
		return Fail[T](raw.Error, raw.StatusCode)
	}

	body := bytes.TrimSpace(raw.Data)
	if len(body) > 0 && body[0] == '{' {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(body, &probe); err == nil {
			if inner, ok := probe["data"]; ok {
				return Decode[T](Ok(inner, raw.StatusCode))
			}
		}
	}
	return Decode[T](raw)
}
