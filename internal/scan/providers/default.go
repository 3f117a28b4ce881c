package providers

// defaultRecords is the built-in table used when no registry file is configured.
var defaultRecords = []ProviderRecord{
	{KeyKind: KeyKindAddress, Key: "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh", Name: "Bitcoin Core Development Fund", Type: ProviderTypeDonation},
	{KeyKind: KeyKindPubkey, Key: "03eec7245d6b7d2ccb30380bfbe2a3648cd7a942653f5aa340edcea1f283686619", Name: "ACINQ Node", Type: ProviderTypeLightningProvider},
	{KeyKind: KeyKindDomain, Key: "btcpay.example.com", Name: "BTCPay Server", Type: ProviderTypePaymentProcessor},
	{KeyKind: KeyKindDomain, Key: "strike.me", Name: "Strike", Type: ProviderTypeLightningProvider},
	{KeyKind: KeyKindDomain, Key: "lightning.engineering", Name: "Lightning Labs", Type: ProviderTypeLightningProvider},
	{KeyKind: KeyKindDomain, Key: "fedi.org", Name: "Fedi Wallet", Type: ProviderTypeWallet},
	{KeyKind: KeyKindInvoicePattern, Key: "fedi", Name: "Fedi Wallet", Type: ProviderTypeWallet},
}

// Default returns a registry over the built-in provider table.
func Default() *Registry {
	return MustNew(defaultRecords...)
}
