package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"twigascan/internal/scan/payload"
)

func TestDetermineAuthStatus(t *testing.T) {
	tests := []struct {
		name   string
		ct     payload.ContentType
		checks payload.Checks
		want   payload.AuthStatus
	}{
		{"format invalid wins", payload.ContentTypeBIP21, payload.Checks{CryptoValid: true, DomainValid: true, ProviderKnown: true}, payload.AuthStatusInvalid},
		{"bolt11 carve-out", payload.ContentTypeBOLT11, payload.Checks{FormatValid: true, CryptoValid: true}, payload.AuthStatusVerified},
		{"bolt11 without crypto is scored", payload.ContentTypeBOLT11, payload.Checks{FormatValid: true, ProviderKnown: true}, payload.AuthStatusSuspicious},
		{"bolt11 format invalid", payload.ContentTypeBOLT11, payload.Checks{CryptoValid: true}, payload.AuthStatusInvalid},
		{"score three", payload.ContentTypeBIP21, payload.Checks{FormatValid: true, CryptoValid: true, DomainValid: true, ProviderKnown: true}, payload.AuthStatusVerified},
		{"score two", payload.ContentTypeBIP21, payload.Checks{FormatValid: true, CryptoValid: true, ProviderKnown: true}, payload.AuthStatusVerified},
		{"score one", payload.ContentTypeBIP21, payload.Checks{FormatValid: true, CryptoValid: true}, payload.AuthStatusSuspicious},
		{"score zero", payload.ContentTypeLNURL, payload.Checks{FormatValid: true}, payload.AuthStatusInvalid},
		{"lightning address domain and provider", payload.ContentTypeLightningAddress, payload.Checks{FormatValid: true, DomainValid: true, ProviderKnown: true}, payload.AuthStatusVerified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineAuthStatus(tt.ct, tt.checks))
		})
	}
}

func TestDetermineAuthStatusIsPure(t *testing.T) {
	types := []payload.ContentType{
		payload.ContentTypeBIP21, payload.ContentTypeBOLT11, payload.ContentTypeLNURL,
		payload.ContentTypeLightningAddress, payload.ContentTypeUnknown,
	}
	for _, ct := range types {
		for mask := 0; mask < 16; mask++ {
			c := payload.Checks{
				FormatValid:   mask&1 != 0,
				CryptoValid:   mask&2 != 0,
				DomainValid:   mask&4 != 0,
				ProviderKnown: mask&8 != 0,
			}
			first := DetermineAuthStatus(ct, c)
			for i := 0; i < 3; i++ {
				assert.Equal(t, first, DetermineAuthStatus(ct, c))
			}
		}
	}
}
