package parser

import (
	"fmt"
	"strings"

	"twigascan/internal/scan/payload"
)

const (
	bolt11MinLength = 100
	bolt11MaxLength = 2000

	bech32Alphabet = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"
)

// Invoice prefixes, longest first so lnbcrt is not mistaken for lnbc.
var bolt11Prefixes = []struct {
	prefix  string
	network payload.Network
}{
	{"lnbcrt", payload.NetworkRegtest},
	{"lnbc", payload.NetworkMainnet},
	{"lntb", payload.NetworkTestnet},
}

// ParseBOLT11 validates a Lightning invoice at the format level. It never
// decodes the data part, so the decoded fields stay nil.
func ParseBOLT11(invoice string) *payload.LightningInvoice {
	out := &payload.LightningInvoice{Base: payload.Base{RawContent: invoice}}

	if err := CheckBOLT11Format(invoice); err != nil {
		out.Error = fmt.Sprintf("Invalid BOLT11 invoice format: %v", err)
		return out
	}
	out.Invoice = invoice
	out.Network = InvoiceNetwork(invoice)
	return out
}

// CheckBOLT11Format applies the format rules: a known prefix, a length within
// [100, 2000], a bech32 separator after the prefix, and only bech32 alphabet
// characters after the separator. Case is ignored.
func CheckBOLT11Format(invoice string) error {
	lower := strings.ToLower(invoice)

	prefix := matchInvoicePrefix(lower)
	if prefix == "" {
		return fmt.Errorf("prefix must be one of lnbc, lntb, lnbcrt")
	}

	if n := len(invoice); n < bolt11MinLength || n > bolt11MaxLength {
		return fmt.Errorf("length %d outside [%d, %d]", n, bolt11MinLength, bolt11MaxLength)
	}

	sep := strings.LastIndexByte(lower, '1')
	if sep < len(prefix) {
		return fmt.Errorf("missing bech32 separator")
	}

	for i, c := range lower[sep+1:] {
		if !strings.ContainsRune(bech32Alphabet, c) {
			return fmt.Errorf("invalid bech32 character %q at position %d", c, sep+1+i)
		}
	}
	return nil
}

// InvoiceNetwork maps an invoice prefix to its network.
func InvoiceNetwork(invoice string) payload.Network {
	lower := strings.ToLower(invoice)
	for _, p := range bolt11Prefixes {
		if strings.HasPrefix(lower, p.prefix) {
			return p.network
		}
	}
	return payload.NetworkUnknown
}

func matchInvoicePrefix(lower string) string {
	for _, p := range bolt11Prefixes {
		if strings.HasPrefix(lower, p.prefix) {
			return p.prefix
		}
	}
	return ""
}
