package parser

import (
	"fmt"
	"net/url"
	"strings"

	"twigascan/internal/scan/payload"
)

const (
	lnurlPrefix    = "LNURL"
	lnurlMinLength = 50
)

// Path markers for each LNURL sub-protocol, in priority order.
var lnurlPathTypes = []struct {
	marker string
	kind   payload.LnurlType
}{
	{"/lnurlp/", payload.LnurlTypePayRequest},
	{"/lnurlw/", payload.LnurlTypeWithdrawRequest},
	{"/lnurlc/", payload.LnurlTypeChannelRequest},
	{"/lnurla/", payload.LnurlTypeAuthRequest},
}

// ParseLNURL handles both the bech32 form and the https endpoint form. The
// bech32 form is checked for shape only and never decoded, so URL, Domain and
// Type remain nil.
func ParseLNURL(content string) *payload.LnurlRequest {
	out := &payload.LnurlRequest{Base: payload.Base{RawContent: content}}

	switch {
	case strings.HasPrefix(content, lnurlPrefix):
		if err := checkLNURLBech32(content); err != nil {
			out.Error = fmt.Sprintf("Invalid LNURL format: %v", err)
			return out
		}
		out.Lnurl = content
	case hasPrefixFold(content, "https://"):
		u, err := url.Parse(content)
		if err != nil || u.Host == "" {
			out.Error = "Invalid LNURL format: malformed https URL"
			return out
		}
		domain := u.Host
		kind := LnurlTypeForPath(u.Path)
		out.URL = &content
		out.Domain = &domain
		out.Path = u.Path
		out.Type = &kind
	default:
		out.Error = "Invalid LNURL format"
	}
	return out
}

// LnurlTypeForPath derives the sub-protocol from the first matching path marker.
func LnurlTypeForPath(path string) payload.LnurlType {
	for _, t := range lnurlPathTypes {
		if strings.Contains(path, t.marker) {
			return t.kind
		}
	}
	return payload.LnurlTypeUnknown
}

func checkLNURLBech32(s string) error {
	if len(s) < lnurlMinLength {
		return fmt.Errorf("length %d below %d", len(s), lnurlMinLength)
	}
	if s[len(lnurlPrefix)] != '1' {
		return fmt.Errorf("missing bech32 separator")
	}
	for _, c := range strings.ToLower(s[len(lnurlPrefix)+1:]) {
		if !strings.ContainsRune(bech32Alphabet, c) {
			return fmt.Errorf("invalid bech32 character %q", c)
		}
	}
	return nil
}

// ParseLightningAddress splits user@domain once and derives the LNURL-pay URL.
func ParseLightningAddress(address string) *payload.LightningAddress {
	out := &payload.LightningAddress{Base: payload.Base{RawContent: address}}

	username, domain, ok := strings.Cut(address, "@")
	if !ok || username == "" || domain == "" {
		out.Error = "Invalid Lightning address format"
		return out
	}
	out.Address = address
	out.Username = username
	out.Domain = domain
	out.LnurlURL = fmt.Sprintf("https://%s/.well-known/lnurlp/%s", domain, username)
	return out
}
