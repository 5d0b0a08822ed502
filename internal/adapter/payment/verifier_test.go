package payment

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/freshcart/internal/domain/errors"
	"github.com/polkiloo/freshcart/internal/domain/model"
)

func newTestVerifier(t *testing.T) *Verifier {
	t.Helper()
	v, err := NewVerifier("key_secret", "hook_secret")
	require.NoError(t, err)
	return v
}

func TestNewVerifierRequiresSecrets(t *testing.T) {
	_, err := NewVerifier("", "hook")
	assert.Error(t, err)
	_, err = NewVerifier("key", "")
	assert.Error(t, err)
}

func TestVerifyPayment(t *testing.T) {
	v := newTestVerifier(t)
	sig := Sign([]byte("key_secret"), []byte("order_abc|pay_1"))

	assert.NoError(t, v.VerifyPayment("order_abc", "pay_1", sig))
	assert.ErrorIs(t, v.VerifyPayment("order_abc", "pay_2", sig), domainErrors.ErrInvalidSignature)
	assert.ErrorIs(t, v.VerifyPayment("order_abc", "pay_1", "zz-not-hex"), domainErrors.ErrInvalidSignature)

	hookSigned := Sign([]byte("hook_secret"), []byte("order_abc|pay_1"))
	assert.ErrorIs(t, v.VerifyPayment("order_abc", "pay_1", hookSigned), domainErrors.ErrInvalidSignature)
}

func TestVerifyWebhook(t *testing.T) {
	v := newTestVerifier(t)
	body := []byte(`{"event":"payment.captured"}`)

	assert.NoError(t, v.VerifyWebhook(body, Sign([]byte("hook_secret"), body)))
	assert.ErrorIs(t, v.VerifyWebhook(body, Sign([]byte("key_secret"), body)), domainErrors.ErrInvalidSignature)
	assert.ErrorIs(t, v.VerifyWebhook(append(body, ' '), Sign([]byte("hook_secret"), body)), domainErrors.ErrInvalidSignature)
}

func TestDecodeWebhook(t *testing.T) {
	v := newTestVerifier(t)

	tests := []struct {
		name string
		body string
		want model.WebhookEvent
	}{
		{
			name: "captured",
			body: `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_abc","amount":63000,"status":"captured"}}}}`,
			want: model.WebhookEvent{Kind: model.WebhookPaymentCaptured, PaymentID: "pay_1", ProviderOrderID: "order_abc", Amount: decimal.NewFromInt(630)},
		},
		{
			name: "refund",
			body: `{"event":"refund.processed","payload":{"refund":{"entity":{"id":"rfnd_1","payment_id":"pay_1","amount":15050}}}}`,
			want: model.WebhookEvent{Kind: model.WebhookRefundProcessed, PaymentID: "pay_1", RefundID: "rfnd_1", Amount: decimal.RequireFromString("150.5")},
		},
		{
			name: "unknown event",
			body: `{"event":"order.paid","payload":{}}`,
			want: model.WebhookEvent{Kind: "order.paid"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.DecodeWebhook([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want.Kind, got.Kind)
			assert.Equal(t, tt.want.PaymentID, got.PaymentID)
			assert.Equal(t, tt.want.ProviderOrderID, got.ProviderOrderID)
			assert.Equal(t, tt.want.RefundID, got.RefundID)
			assert.True(t, tt.want.Amount.Equal(got.Amount), "amount %s", got.Amount)
		})
	}
}

func TestDecodeWebhookRejectsBadBodies(t *testing.T) {
	v := newTestVerifier(t)
	for _, body := range []string{`not json`, `{"payload":{}}`} {
		_, err := v.DecodeWebhook([]byte(body))
		assert.True(t, errors.Is(err, domainErrors.ErrInvalidInput), "body %q: %v", body, err)
	}
}
