// Package duplicate derives a case-insensitive identifier for a parsed
// payload and decides whether it has been scanned before.
package duplicate

import (
	"strings"

	"twigascan/internal/scan/payload"
)

// Normalize returns the duplicate-detection key for p. It reports false for
// payloads that carry a format error, for unknown content and when ct does
// not match the payload variant. The result is lowercased, so applying it to
// equivalent inputs in any letter case gives the same key.
func Normalize(ct payload.ContentType, p payload.Payload) (string, bool) {
	if payload.HasFormatError(p) || p.ContentType() != ct {
		return "", false
	}

	var key string
	switch v := p.(type) {
	case *payload.LightningAddress:
		key = v.Address
	case *payload.LnurlRequest:
		key = v.Endpoint()
		if key == "" {
			key = v.Lnurl
		}
	case *payload.LightningInvoice:
		key = v.Invoice
	case *payload.BitcoinPayment:
		key = v.Address
	default:
		return "", false
	}

	key = strings.ToLower(strings.TrimSpace(key))
	return key, key != ""
}
