package signature

import (
	"testing"

	"github.com/smallbiznis/gymdesk/internal/config"
	"github.com/smallbiznis/gymdesk/internal/payment/domain"
	"github.com/stretchr/testify/assert"
)

func TestVerifyPaymentSignature(t *testing.T) {
	v := NewVerifier(config.GatewayConfig{KeySecret: "key_secret"})
	valid := Sign([]byte("key_secret"), []byte("order_1|pay_1"))

	assert.NoError(t, v.VerifyPaymentSignature("order_1", "pay_1", valid))
	assert.ErrorIs(t, v.VerifyPaymentSignature("order_1", "pay_2", valid), domain.ErrSignatureMismatch)
	assert.ErrorIs(t, v.VerifyPaymentSignature("order_1", "pay_1", ""), domain.ErrSignatureMismatch)
	assert.ErrorIs(t, v.VerifyPaymentSignature("order_1", "pay_1", "deadbeef"), domain.ErrSignatureMismatch)
}

func TestSignKnownVector(t *testing.T) {
	got := Sign([]byte("key"), []byte("The quick brown fox jumps over the lazy dog"))
	assert.Equal(t, "f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8", got)
}

func TestVerifyWebhookSignatureUsesExactBytes(t *testing.T) {
	v := NewVerifier(config.GatewayConfig{WebhookSecret: "whsec"})
	body := []byte(`{"event":"payment.captured"}`)
	sig := Sign([]byte("whsec"), body)

	assert.NoError(t, v.VerifyWebhookSignature(body, sig))
	assert.NoError(t, v.VerifyWebhookSignature(body, " "+sig+" "))
	assert.ErrorIs(t, v.VerifyWebhookSignature([]byte(`{"event": "payment.captured"}`), sig), domain.ErrSignatureMismatch)
}

func TestVerifierWithoutSecrets(t *testing.T) {
	v := NewVerifier(config.GatewayConfig{})
	assert.ErrorIs(t, v.VerifyPaymentSignature("a", "b", "c"), domain.ErrGatewayNotConfigured)
	assert.ErrorIs(t, v.VerifyWebhookSignature([]byte("x"), "c"), domain.ErrGatewayNotConfigured)
}
