package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	domainErrors "github.com/polkiloo/freshcart/internal/domain/errors"
	"github.com/polkiloo/freshcart/internal/domain/model"
)

// Verifier checks HMAC-SHA256 signatures issued by the payment provider.
// Checkout signatures use the API key secret, webhooks their own secret.
type Verifier struct {
	keySecret     []byte
	webhookSecret []byte
}

// NewVerifier builds a Verifier from the two provider secrets.
func NewVerifier(keySecret, webhookSecret string) (*Verifier, error) {
	if keySecret == "" || webhookSecret == "" {
		return nil, fmt.Errorf("payment secrets are not configured")
	}
	return &Verifier{keySecret: []byte(keySecret), webhookSecret: []byte(webhookSecret)}, nil
}

// VerifyPayment checks the signature over "order_id|payment_id".
func (v *Verifier) VerifyPayment(providerOrderID, providerPaymentID, signature string) error {
	return verify(v.keySecret, []byte(providerOrderID+"|"+providerPaymentID), signature)
}

// VerifyWebhook checks the signature over the raw request body.
func (v *Verifier) VerifyWebhook(body []byte, signature string) error {
	return verify(v.webhookSecret, body, signature)
}

type webhookBody struct {
	Event   string `json:"event"`
	Payload struct {
		Payment *struct {
			Entity paymentEntity `json:"entity"`
		} `json:"payment"`
		Refund *struct {
			Entity refundEntity `json:"entity"`
		} `json:"refund"`
	} `json:"payload"`
}

type paymentEntity struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Amount  int64  `json:"amount"`
	Status  string `json:"status"`
}

type refundEntity struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
}

// DecodeWebhook maps a webhook body onto WebhookEvent. Unknown event names
// are passed through so the caller can acknowledge and ignore them.
func (v *Verifier) DecodeWebhook(body []byte) (*model.WebhookEvent, error) {
	var data webhookBody
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("webhook body: %w", domainErrors.ErrInvalidInput)
	}
	if data.Event == "" {
		return nil, fmt.Errorf("webhook event missing: %w", domainErrors.ErrInvalidInput)
	}

	event := &model.WebhookEvent{Kind: model.WebhookKind(data.Event)}
	if p := data.Payload.Payment; p != nil {
		event.PaymentID = p.Entity.ID
		event.ProviderOrderID = p.Entity.OrderID
		event.Amount = FromMinorUnits(p.Entity.Amount)
	}
	if r := data.Payload.Refund; r != nil {
		event.RefundID = r.Entity.ID
		if event.PaymentID == "" {
			event.PaymentID = r.Entity.PaymentID
		}
		event.Amount = FromMinorUnits(r.Entity.Amount)
	}
	return event, nil
}

// Sign returns the hex HMAC-SHA256 of message under secret.
func Sign(secret, message []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

func verify(secret, message []byte, signature string) error {
	got, err := hex.DecodeString(signature)
	if err != nil {
		return domainErrors.ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(message)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return domainErrors.ErrInvalidSignature
	}
	return nil
}
