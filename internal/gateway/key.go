package gateway

import (
	"fmt"
	"strings"
)

// IsValidPublicKey reports whether the key is safe to hand to the gateway for
// tokenization. Public keys start with "p_"; test keys ("p_test_") may carry
// combined material and are accepted on format alone, while production keys
// must not contain embedded secret-key markers.
func IsValidPublicKey(key string) bool {
	if key == "" {
		return false
	}

	isPublicFormat := strings.HasPrefix(key, "p_") && len(key) > 10

	if strings.HasPrefix(key, "p_test_") {
		return isPublicFormat
	}

	hasEmbeddedSecret := strings.Contains(key, "c18") ||
		strings.Contains(key, "s_") ||
		strings.Contains(key, "_s_")

	return isPublicFormat && !hasEmbeddedSecret
}

// IsSecretKey reports whether the key looks like a secret key. Secret keys
// must never leave the backend.
func IsSecretKey(key string) bool {
	return strings.HasPrefix(key, "s_") && len(key) > 10
}

// ValidatePublicKey returns a configuration error with a descriptive message
// when the key fails the public-key shape check. A failure here means the
// backend is misconfigured; the checkout must stop before any card data is
// transmitted.
func ValidatePublicKey(key, operation string) error {
	if IsValidPublicKey(key) {
		return nil
	}

	msg := fmt.Sprintf("Invalid public key provided for %s. ", operation)
	switch {
	case strings.HasPrefix(key, "s_"):
		msg += "Received secret key instead of public key. "
	case strings.Contains(key, "c18") || strings.Contains(key, "s_"):
		msg += "Key appears to contain embedded secret key data. " +
			"Backend is likely incorrectly concatenating or embedding secret keys in the public_key field. "
	default:
		msg += `Public keys must start with "p_". `
	}
	msg += "Make sure your backend returns a clean public key (starts with p_) for tokenization."

	return newError(KindConfiguration, msg)
}
