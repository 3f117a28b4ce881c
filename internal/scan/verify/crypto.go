package verify

import (
	"context"

	"twigascan/internal/scan/parser"
	"twigascan/internal/scan/payload"
)

// CryptoVerifier decides crypto_valid for one content type. Implementations
// may do real signature or checksum work; the defaults below only restate
// format checks, which is the current trust policy.
type CryptoVerifier interface {
	Verify(ctx context.Context, p payload.Payload) (bool, error)
}

// CryptoVerifierFunc adapts a function to CryptoVerifier.
type CryptoVerifierFunc func(ctx context.Context, p payload.Payload) (bool, error)

func (f CryptoVerifierFunc) Verify(ctx context.Context, p payload.Payload) (bool, error) {
	return f(ctx, p)
}

// AddressAccepted trusts any address the BIP21 parser accepted. Checksums
// are not verified.
var AddressAccepted CryptoVerifier = CryptoVerifierFunc(func(_ context.Context, p payload.Payload) (bool, error) {
	btc, ok := p.(*payload.BitcoinPayment)
	return ok && btc.Address != "", nil
})

// Bolt11Format re-applies the invoice format rules in place of a signature
// check. The data part is not decoded and no signature is verified.
var Bolt11Format CryptoVerifier = CryptoVerifierFunc(func(_ context.Context, p payload.Payload) (bool, error) {
	inv, ok := p.(*payload.LightningInvoice)
	if !ok || inv.Invoice == "" {
		return false, nil
	}
	return parser.CheckBOLT11Format(inv.Invoice) == nil, nil
})

// DefaultCryptoVerifiers returns the verifier table used unless overridden.
// LNURL and Lightning Address have none and keep crypto_valid false.
func DefaultCryptoVerifiers() map[payload.ContentType]CryptoVerifier {
	return map[payload.ContentType]CryptoVerifier{
		payload.ContentTypeBIP21:  AddressAccepted,
		payload.ContentTypeBOLT11: Bolt11Format,
	}
}
