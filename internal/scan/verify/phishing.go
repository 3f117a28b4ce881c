package verify

import "strings"

var suspiciousDomainPatterns = []string{
	"bitcoin-wallet",
	"wallet-secure",
	"coinbase-secure",
	"binance-secure",
	"crypto-wallet",
	"bitcoin-recovery",
}

// SuspiciousDomain reports whether host contains a known phishing pattern.
func SuspiciousDomain(host string) bool {
	lower := strings.ToLower(host)
	for _, p := range suspiciousDomainPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
