// Package parser classifies scanned payment strings and turns them into
// structured payloads. Parsers never return errors for malformed content;
// they annotate the payload instead. Only the router's guardrails fail.
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	dErrors "twigascan/pkg/domain-errors"

	"twigascan/internal/scan/payload"
)

// MaxContentLength bounds scanned content, in characters, after trimming.
const MaxContentLength = 10000

const unrecognizedFormat = "Unrecognized payment format"

var (
	ErrEmptyContent    = errors.New("content is empty")
	ErrContentTooLarge = fmt.Errorf("content exceeds %d characters", MaxContentLength)
)

var (
	standaloneAddress = regexp.MustCompile(`^(bc1|[13])[a-zA-HJ-NP-Z0-9]{25,39}$`)
	lightningAddress  = regexp.MustCompile(`^[\w.%+-]+@[\w.-]+\.[A-Za-z]{2,}$`)
)

// Rule is one entry in the dispatch table: the first rule whose Match
// accepts the content decides the parser.
type Rule struct {
	Name  payload.ContentType
	Match func(content string) bool
	Parse func(content string) payload.Payload
}

// Rules returns the dispatch table in precedence order.
func Rules() []Rule {
	return []Rule{
		{
			Name:  payload.ContentTypeBIP21,
			Match: func(s string) bool { return hasPrefixFold(s, bitcoinScheme) },
			Parse: func(s string) payload.Payload { return ParseBIP21(s) },
		},
		{
			Name:  payload.ContentTypeBIP21,
			Match: standaloneAddress.MatchString,
			Parse: func(s string) payload.Payload { return ParseBIP21(bitcoinScheme + s) },
		},
		{
			Name:  payload.ContentTypeBOLT11,
			Match: func(s string) bool { return matchInvoicePrefix(strings.ToLower(s)) != "" },
			Parse: func(s string) payload.Payload { return ParseBOLT11(s) },
		},
		{
			Name:  payload.ContentTypeLNURL,
			Match: looksLikeLNURL,
			Parse: func(s string) payload.Payload { return ParseLNURL(s) },
		},
		{
			Name:  payload.ContentTypeLightningAddress,
			Match: lightningAddress.MatchString,
			Parse: func(s string) payload.Payload { return ParseLightningAddress(s) },
		},
	}
}

// Router dispatches content to the first matching parser.
type Router struct {
	rules []Rule
}

// NewRouter builds a router over the default rule table.
func NewRouter() *Router {
	return &Router{rules: Rules()}
}

// Route trims content, enforces the guardrails and parses it. The returned
// error is non-nil only for empty or oversized content and carries
// dErrors.CodeValidation.
func (r *Router) Route(content string) (payload.Payload, error) {
	trimmed, err := Sanitize(content)
	if err != nil {
		return nil, err
	}
	for _, rule := range r.rules {
		if rule.Match(trimmed) {
			return rule.Parse(trimmed), nil
		}
	}
	return &payload.Unknown{Base: payload.Base{RawContent: trimmed, Error: unrecognizedFormat}}, nil
}

// Parse routes content with the default rule table.
func Parse(content string) (payload.Payload, error) {
	return defaultRouter.Route(content)
}

var defaultRouter = NewRouter()

// Sanitize trims surrounding whitespace and applies the length guardrails.
func Sanitize(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", dErrors.Wrap(ErrEmptyContent, dErrors.CodeValidation, "content is required")
	}
	if utf8.RuneCountInString(trimmed) > MaxContentLength {
		return "", dErrors.Wrap(ErrContentTooLarge, dErrors.CodeValidation, ErrContentTooLarge.Error())
	}
	return trimmed, nil
}

func looksLikeLNURL(s string) bool {
	if strings.HasPrefix(s, lnurlPrefix) {
		return true
	}
	if !hasPrefixFold(s, "https://") {
		return false
	}
	lower := strings.ToLower(s)
	return strings.Contains(lower, "lnurl") || strings.Contains(lower, "lightning")
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
