package paygate

import (
	"encoding/json"
	"time"

	"github.com/berniyo/paygate/internal/session"
)

// Ack is the loose acknowledgement returned by OTP dispatch endpoints.
type Ack struct {
	Message string `json:"message,omitempty"`
}

// AuthGrant is returned by every call that authenticates a user.
type AuthGrant struct {
	Token string       `json:"token"`
	User  session.User `json:"user"`
}

// Balance is the wallet balance in major currency units.
type Balance struct {
	Balance float64 `json:"balance"`
}

// Transaction is a single wallet ledger entry.
type Transaction struct {
	ID        string    `json:"_id"`
	Amount    float64   `json:"amount"`
	Type      string    `json:"type"`
	Purpose   string    `json:"purpose,omitempty"`
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Credit reports whether the entry added funds.
func (t Transaction) Credit() bool {
	return t.Type == "credit"
}

// TransactionPage is the transactions listing envelope.
type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total,omitempty"`
	Page         int           `json:"page,omitempty"`
	Limit        int           `json:"limit,omitempty"`
}

// TransactionQuery filters the transaction listing. Zero values are omitted.
type TransactionQuery struct {
	Page   int
	Limit  int
	Status string
}

// TopUpOrder describes the order the hosted checkout widget completes.
type TopUpOrder struct {
	OrderID  string  `json:"orderId"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
	KeyID    string  `json:"keyId,omitempty"`
}

// TransferRequest moves funds to another wallet identified by phone.
type TransferRequest struct {
	ToPhone string  `json:"toPhone"`
	Amount  float64 `json:"amount"`
	Note    string  `json:"note,omitempty"`
}

// TransferReceipt is the backend's answer to a transfer.
type TransferReceipt struct {
	Message     string       `json:"message,omitempty"`
	Balance     *float64     `json:"balance,omitempty"`
	Transaction *Transaction `json:"transaction,omitempty"`
}

// MerchantRequest creates a merchant.
type MerchantRequest struct {
	Name       string `json:"name"`
	WebhookURL string `json:"webhookUrl"`
}

const maskedSecret = "••••••••••"

// Merchant holds server-issued credentials. APIKey and APISecret are opaque
// and never modified client-side.
type Merchant struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	WebhookURL string    `json:"webhookUrl"`
	APIKey     string    `json:"apiKey"`
	APISecret  string    `json:"apiSecret"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// UnmarshalJSON accepts both "id" and "_id".
func (m *Merchant) UnmarshalJSON(data []byte) error {
	type alias Merchant
	var raw struct {
		alias
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Merchant(raw.alias)
	if m.ID == "" {
		m.ID = raw.MongoID
	}
	return nil
}

// KeyPreview shows the first ten characters of the API key.
func (m Merchant) KeyPreview() string {
	if len(m.APIKey) <= 10 {
		return m.APIKey
	}
	return m.APIKey[:10] + "..."
}

// SecretView returns the secret when reveal is set and a mask otherwise.
func (m Merchant) SecretView(reveal bool) string {
	if reveal {
		return m.APISecret
	}
	return maskedSecret
}

// PGOrder is the payment-gateway order created for a merchant.
type PGOrder struct {
	ID        string    `json:"id,omitempty"`
	OrderID   string    `json:"orderId"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}
