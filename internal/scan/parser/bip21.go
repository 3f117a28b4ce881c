package parser

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"twigascan/internal/scan/payload"
)

const bitcoinScheme = "bitcoin:"

const (
	base58Charset = `[a-km-zA-HJ-NP-Z1-9]`
	bech32Charset = `[qpzry9x8gf2tvdw0s3jn54khce6mua7l]`
)

// Address shapes, checked in this order. Taproot precedes SegWit so the more
// specific shape is the one reported.
var addressShapes = []struct {
	kind    payload.AddressType
	pattern *regexp.Regexp
}{
	{payload.AddressTypeP2PKH, regexp.MustCompile(`^1` + base58Charset + `{25,34}$`)},
	{payload.AddressTypeP2SH, regexp.MustCompile(`^[23]` + base58Charset + `{25,34}$`)},
	{payload.AddressTypeTaproot, regexp.MustCompile(`^bc1p` + bech32Charset + `{39,59}$`)},
	{payload.AddressTypeSegWit, regexp.MustCompile(`^bc1` + bech32Charset + `{39,59}$`)},
}

var (
	satoshisPerBTC = decimal.NewFromInt(100_000_000)
	maxSatoshis    = decimal.NewFromInt(math.MaxInt64)
)

// Amount exponents outside this range are rejected before any arithmetic;
// scaling such a decimal allocates a power of ten with that many digits.
const (
	minAmountExponent = -20
	maxAmountExponent = 20
)

// ParseBIP21 parses a bitcoin: URI. The scheme is matched case-insensitively;
// the address keeps its case. An unacceptable address yields a payload with
// Error set. A malformed amount only leaves AmountSatoshis unset.
func ParseBIP21(uri string) *payload.BitcoinPayment {
	out := &payload.BitcoinPayment{Base: payload.Base{RawContent: uri}}

	rest := uri
	if hasPrefixFold(rest, bitcoinScheme) {
		rest = rest[len(bitcoinScheme):]
	}

	address, query, _ := strings.Cut(rest, "?")

	kind, ok := classifyAddress(address)
	if !ok {
		out.Error = fmt.Sprintf("Invalid Bitcoin address: %s", address)
		return out
	}
	out.Address = address
	out.AddressType = kind
	out.Params = parseQuery(query)

	if amount, ok := out.Params.Get("amount"); ok {
		out.AmountBTC = amount
		out.AmountSatoshis = btcToSatoshis(amount)
	}
	out.Label, _ = out.Params.Get("label")
	out.Message, _ = out.Params.Get("message")
	out.PaymentRequestURL, _ = out.Params.Get("r")

	return out
}

// IsValidBitcoinAddress reports whether address matches one of the accepted
// shapes. It is a format check only; checksums are not verified.
func IsValidBitcoinAddress(address string) bool {
	_, ok := classifyAddress(address)
	return ok
}

func classifyAddress(address string) (payload.AddressType, bool) {
	for _, shape := range addressShapes {
		if shape.pattern.MatchString(address) {
			return shape.kind, true
		}
	}
	return "", false
}

// parseQuery decodes a query string the way form decoding does: '+' is a
// space, blank values are dropped, and pairs that fail to unescape are skipped.
func parseQuery(query string) payload.QueryParams {
	var params payload.QueryParams
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil || key == "" {
			continue
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil || value == "" {
			continue
		}
		params.Add(key, value)
	}
	return params
}

// btcToSatoshis multiplies a BTC decimal string by 1e8 and truncates. Returns
// nil for anything that is not a finite number representable in int64, or
// whose exponent falls outside [minAmountExponent, maxAmountExponent].
func btcToSatoshis(amount string) *int64 {
	btc, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil
	}
	if exp := btc.Exponent(); exp < minAmountExponent || exp > maxAmountExponent {
		return nil
	}
	sats := btc.Mul(satoshisPerBTC).Truncate(0)
	if sats.Abs().GreaterThan(maxSatoshis) {
		return nil
	}
	v := sats.IntPart()
	return &v
}
