// Package signature verifies gateway HMAC-SHA256 signatures.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/smallbiznis/gymdesk/internal/config"
	"github.com/smallbiznis/gymdesk/internal/payment/domain"
)

// Verifier holds the gateway secrets. It is built explicitly from the
// gateway config and never reads the environment itself.
type Verifier struct {
	keySecret     []byte
	webhookSecret []byte
}

func NewVerifier(cfg config.GatewayConfig) *Verifier {
	return &Verifier{
		keySecret:     []byte(cfg.KeySecret),
		webhookSecret: []byte(cfg.WebhookSecret),
	}
}

// VerifyPaymentSignature checks hex(HMAC(keySecret, orderID|paymentID)).
func (v *Verifier) VerifyPaymentSignature(orderID, paymentID, signature string) error {
	if len(v.keySecret) == 0 {
		return domain.ErrGatewayNotConfigured
	}
	return compare(Sign(v.keySecret, []byte(orderID+"|"+paymentID)), signature)
}

// VerifyWebhookSignature checks hex(HMAC(webhookSecret, rawBody)) over the
// exact bytes received on the wire.
func (v *Verifier) VerifyWebhookSignature(rawBody []byte, signature string) error {
	if len(v.webhookSecret) == 0 {
		return domain.ErrGatewayNotConfigured
	}
	return compare(Sign(v.webhookSecret, rawBody), signature)
}

// Sign returns the lowercase hex HMAC-SHA256 of payload.
func Sign(secret, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func compare(expected, provided string) error {
	provided = strings.ToLower(strings.TrimSpace(provided))
	if provided == "" || !hmac.Equal([]byte(expected), []byte(provided)) {
		return domain.ErrSignatureMismatch
	}
	return nil
}
