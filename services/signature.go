package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignatureHeader carries the gateway's HMAC of the raw webhook body.
const SignatureHeader = "X-GPG-Signature"

// SignPayload returns the lowercase hex HMAC-SHA256 of body.
func SignPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks signature against body. An empty secret verifies
// nothing.
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	got, err := hex.DecodeString(strings.ToLower(strings.TrimSpace(signature)))
	if err != nil {
		return false
	}
	want, _ := hex.DecodeString(SignPayload(secret, body))
	return hmac.Equal(got, want)
}
