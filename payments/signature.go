package payments

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// ComputeSignature returns the hex HMAC-SHA512 of the raw payload bytes.
// The provider signs the body exactly as transmitted; re-serializing the JSON
// before verification would break the signature.
func ComputeSignature(secret string, rawBody []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(rawBody)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a callback signature in constant time
func VerifySignature(secret string, rawBody []byte, signature string) bool {
	if signature == "" {
		return false
	}
	expected := ComputeSignature(secret, rawBody)
	return hmac.Equal([]byte(expected), []byte(signature))
}
