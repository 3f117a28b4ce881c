// Package payload holds the pure domain types produced by scanning a payment
// string: the content type tag, one payload variant per recognised format,
// verification results and the combined scan outcome.
//
// Domain Purity: no I/O, no context.Context, no time.Now() in this package.
//
// Format failures are data, not errors: every variant embeds Base, whose Error
// field carries the parser's complaint. Only the router's guardrails (empty or
// oversized content) surface as Go errors.
package payload

// ContentType tags which payment format a scanned string was classified as.
type ContentType string

const (
	ContentTypeBIP21            ContentType = "BIP21"
	ContentTypeBOLT11           ContentType = "BOLT11"
	ContentTypeLNURL            ContentType = "LNURL"
	ContentTypeLightningAddress ContentType = "LIGHTNING_ADDRESS"
	ContentTypeUnknown          ContentType = "UNKNOWN"
)

// String returns the wire form of the content type.
func (c ContentType) String() string {
	return string(c)
}

// Payload is the tagged union over the parsed formats. The set of
// implementations is closed: BitcoinPayment, LightningInvoice, LnurlRequest,
// LightningAddress and Unknown.
type Payload interface {
	ContentType() ContentType
	// Raw returns the scanned content the payload was parsed from.
	Raw() string
	// FormatError returns the parser's error annotation, or "" when the
	// content parsed cleanly.
	FormatError() string
	isPayload()
}

// Base carries the fields every variant shares.
type Base struct {
	RawContent string `json:"raw_content"`
	Error      string `json:"error,omitempty"`
}

func (b Base) Raw() string         { return b.RawContent }
func (b Base) FormatError() string { return b.Error }
func (Base) isPayload()            {}

// HasFormatError reports whether p carries a parse failure.
func HasFormatError(p Payload) bool {
	return p == nil || p.FormatError() != ""
}

// AddressType names which accepted Bitcoin address shape matched.
type AddressType string

const (
	AddressTypeP2PKH   AddressType = "p2pkh"
	AddressTypeP2SH    AddressType = "p2sh"
	AddressTypeSegWit  AddressType = "segwit"
	AddressTypeTaproot AddressType = "taproot"
)

// BitcoinPayment is a parsed BIP21 URI.
type BitcoinPayment struct {
	Base
	Address     string      `json:"address,omitempty"`
	AddressType AddressType `json:"address_type,omitempty"`
	// AmountBTC is the amount parameter exactly as it appeared in the URI.
	AmountBTC string `json:"amount_btc,omitempty"`
	// AmountSatoshis is nil when no amount was given or it was not numeric.
	AmountSatoshis    *int64      `json:"amount_satoshis"`
	Label             string      `json:"label,omitempty"`
	Message           string      `json:"message,omitempty"`
	PaymentRequestURL string      `json:"payment_request_url,omitempty"`
	Params            QueryParams `json:"params,omitempty"`
}

func (*BitcoinPayment) ContentType() ContentType { return ContentTypeBIP21 }

// Network is the Lightning network an invoice prefix designates.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
	NetworkRegtest Network = "regtest"
	NetworkUnknown Network = "unknown"
)

// LightningInvoice is a BOLT11 invoice validated at the format level only.
// PaymentHash, Description and Expiry are reserved; they stay nil because the
// invoice data part is never decoded. DecodedFieldsAvailable is always false.
type LightningInvoice struct {
	Base
	Invoice                string  `json:"invoice,omitempty"`
	Network                Network `json:"network,omitempty"`
	AmountSats             *int64  `json:"amount_sats"`
	PaymentHash            *string `json:"payment_hash"`
	Description            *string `json:"description"`
	Expiry                 *int64  `json:"expiry"`
	DecodedFieldsAvailable bool    `json:"decoded_fields_available"`
}

func (*LightningInvoice) ContentType() ContentType { return ContentTypeBOLT11 }

// LnurlType is the LNURL sub-protocol derived from the URL path.
type LnurlType string

const (
	LnurlTypePayRequest      LnurlType = "payRequest"
	LnurlTypeWithdrawRequest LnurlType = "withdrawRequest"
	LnurlTypeChannelRequest  LnurlType = "channelRequest"
	LnurlTypeAuthRequest     LnurlType = "authRequest"
	LnurlTypeUnknown         LnurlType = "unknown"
)

// LnurlRequest is either a bech32 LNURL (Lnurl set, URL/Domain/Type nil since
// the string is never decoded) or an https LNURL endpoint.
type LnurlRequest struct {
	Base
	Lnurl  string     `json:"lnurl,omitempty"`
	URL    *string    `json:"url"`
	Domain *string    `json:"domain"`
	Path   string     `json:"path,omitempty"`
	Type   *LnurlType `json:"type"`
}

func (*LnurlRequest) ContentType() ContentType { return ContentTypeLNURL }

// Endpoint returns the https URL to check, or "" for the bech32 form.
func (l *LnurlRequest) Endpoint() string {
	if l.URL == nil {
		return ""
	}
	return *l.URL
}

// LightningAddress is a user@domain identifier and its LNURL-pay endpoint.
type LightningAddress struct {
	Base
	Address  string `json:"lightning_address,omitempty"`
	Username string `json:"username,omitempty"`
	Domain   string `json:"domain,omitempty"`
	LnurlURL string `json:"lnurl_url,omitempty"`
}

func (*LightningAddress) ContentType() ContentType { return ContentTypeLightningAddress }

// Unknown is content no parser claimed.
type Unknown struct {
	Base
}

func (*Unknown) ContentType() ContentType { return ContentTypeUnknown }
