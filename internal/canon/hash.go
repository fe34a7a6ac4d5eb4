package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashPayload computes the content hash of a canonical payload with domain
// separation: SHA256(domain + 0x00 + canonical_bytes), lowercase hex.
//
// Every layer hashes under its own domain string (for example
// "synergraph/graph/v1") so identical payload bytes in different layers can
// never collide. The null byte prevents domain/payload boundary ambiguity.
func HashPayload(domain string, payload Value) (string, error) {
	data, err := MarshalCanonical(payload)
	if err != nil {
		return "", fmt.Errorf("hash payload: %w", err)
	}
	return hashWithDomain(domain, data), nil
}

// MustHashPayload is like HashPayload but panics on error. Payloads built
// from Value types cannot fail to marshal, so layer code uses this form.
func MustHashPayload(domain string, payload Value) string {
	h, err := HashPayload(domain, payload)
	if err != nil {
		panic(err)
	}
	return h
}

func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
