package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// WebhookSignatureHeader cabecera con la firma del cuerpo.
const WebhookSignatureHeader = "X-Shopify-Hmac-Sha256"

// VerifyWebhook compara la firma base64 de HMAC-SHA256(secret, body) en tiempo constante.
// Un secreto vacío nunca valida.
func VerifyWebhook(secret string, body []byte, signature string) bool {
	if secret == "" {
		return false
	}
	got, err := base64.StdEncoding.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(got) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), got)
}

// SignWebhook firma un cuerpo como lo hace la tienda. Útil para pruebas y reenvíos manuales.
func SignWebhook(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
