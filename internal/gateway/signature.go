package gateway

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// SignatureVerifier checks that a notification was produced by the provider:
// signature_key = hex(sha512(order_id + status_code + gross_amount + server_key)).
//
// Only those three fields are signed. transaction_status and fraud_status are
// bound indirectly through status_code (200 capture/settlement, 201 pending,
// 202 deny/cancel/expire). custom_field1..3, which carry the recipient and
// payer, are not signed at all; their integrity rests on the callback being
// server to server and on the order id being credited at most once.
type SignatureVerifier struct {
	serverKey string
}

func NewSignatureVerifier(serverKey string) *SignatureVerifier {
	return &SignatureVerifier{serverKey: serverKey}
}

func (v *SignatureVerifier) Sign(orderID, statusCode, grossAmount string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + v.serverKey))
	return hex.EncodeToString(sum[:])
}

func (v *SignatureVerifier) Verify(n Notification) bool {
	if n.SignatureKey == "" || n.OrderID == "" {
		return false
	}
	expected := v.Sign(n.OrderID, n.StatusCode.String(), n.GrossAmount.String())
	got := strings.ToLower(n.SignatureKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}
