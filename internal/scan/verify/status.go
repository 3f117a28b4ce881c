package verify

import "twigascan/internal/scan/payload"

// DetermineAuthStatus folds the four checks into an auth status.
//
// Invalid when the format check failed. A BOLT11 invoice whose format and
// signature proxy both pass is Verified outright. Everything else is scored by
// how many of crypto, domain and provider passed: two or more is Verified, one
// is Suspicious, none is Invalid.
func DetermineAuthStatus(ct payload.ContentType, c payload.Checks) payload.AuthStatus {
	if !c.FormatValid {
		return payload.AuthStatusInvalid
	}
	if ct == payload.ContentTypeBOLT11 && c.CryptoValid {
		return payload.AuthStatusVerified
	}

	score := 0
	for _, ok := range []bool{c.CryptoValid, c.DomainValid, c.ProviderKnown} {
		if ok {
			score++
		}
	}
	switch {
	case score >= 2:
		return payload.AuthStatusVerified
	case score == 1:
		return payload.AuthStatusSuspicious
	default:
		return payload.AuthStatusInvalid
	}
}
