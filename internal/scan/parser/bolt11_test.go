package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twigascan/internal/scan/payload"
)

func TestParseBOLT11Networks(t *testing.T) {
	tests := []struct {
		prefix string
		want   payload.Network
	}{
		{"lnbc", payload.NetworkMainnet},
		{"lntb", payload.NetworkTestnet},
		{"lnbcrt", payload.NetworkRegtest},
		{"LNBCRT", payload.NetworkRegtest},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			inv := ParseBOLT11(validInvoice(tt.prefix))
			require.Empty(t, inv.Error)
			assert.Equal(t, tt.want, inv.Network)
			assert.False(t, inv.DecodedFieldsAvailable)
			assert.Nil(t, inv.PaymentHash)
			assert.Nil(t, inv.Description)
			assert.Nil(t, inv.Expiry)
			assert.Nil(t, inv.AmountSats)
		})
	}
}

func TestCheckBOLT11Format(t *testing.T) {
	tests := []struct {
		name    string
		invoice string
		valid   bool
	}{
		{"valid", validInvoice("lnbc"), true},
		{"amount before separator", "lnbc10u1" + strings.Repeat("p", 150), true},
		{"minimum length", "lnbc1" + strings.Repeat("q", 95), true},
		{"maximum length", "lnbc1" + strings.Repeat("q", 1995), true},
		{"too short", "lnbc1" + strings.Repeat("q", 94), false},
		{"too long", "lnbc1" + strings.Repeat("q", 1996), false},
		{"wrong prefix", "btc1" + strings.Repeat("q", 200), false},
		{"no separator", "lnbc" + strings.Repeat("q", 200), false},
		{"non bech32 after separator", "lnbc1" + strings.Repeat("q", 100) + "b", false},
		{"uppercase accepted", strings.ToUpper(validInvoice("lntb")), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckBOLT11Format(tt.invoice)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestParseBOLT11MalformedIsData(t *testing.T) {
	inv := ParseBOLT11("lnbc1qqq")
	assert.Contains(t, inv.Error, "Invalid BOLT11 invoice format")
	assert.Equal(t, "lnbc1qqq", inv.RawContent)
	assert.Empty(t, inv.Invoice)
}
