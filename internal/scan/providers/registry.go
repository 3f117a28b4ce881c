// Package providers holds the read-only table of known payment providers.
//
// A Registry is built once at startup and injected into the verifier. It is
// never mutated afterwards, so lookups need no locking.
package providers

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// KeyKind says what a ProviderRecord key is matched against.
type KeyKind string

const (
	KeyKindAddress        KeyKind = "address"
	KeyKindInvoicePattern KeyKind = "invoice_pattern"
	KeyKindDomain         KeyKind = "domain"
	KeyKindPubkey         KeyKind = "pubkey"
)

// Valid reports whether k is a known key kind.
func (k KeyKind) Valid() bool {
	switch k {
	case KeyKindAddress, KeyKindInvoicePattern, KeyKindDomain, KeyKindPubkey:
		return true
	}
	return false
}

// ProviderType classifies what a known provider does.
type ProviderType string

const (
	ProviderTypeDonation          ProviderType = "donation"
	ProviderTypeLightningProvider ProviderType = "lightning_provider"
	ProviderTypePaymentProcessor  ProviderType = "payment_processor"
	ProviderTypeWallet            ProviderType = "wallet"
)

// ProviderRecord is one entry of the registry table.
type ProviderRecord struct {
	KeyKind KeyKind      `json:"key_kind" yaml:"key_kind"`
	Key     string       `json:"key" yaml:"key"`
	Name    string       `json:"name" yaml:"name"`
	Type    ProviderType `json:"type" yaml:"type"`
}

// Registry indexes provider records by key kind.
type Registry struct {
	records   []ProviderRecord
	addresses map[string]ProviderRecord
	pubkeys   map[string]ProviderRecord
	domains   map[string]ProviderRecord
	// invoice patterns keep table order; the first substring hit wins
	patterns []ProviderRecord
}

// New validates and indexes records. Duplicate keys within a kind and
// records with an unknown kind, empty key or empty name are rejected.
func New(records ...ProviderRecord) (*Registry, error) {
	r := &Registry{
		addresses: make(map[string]ProviderRecord),
		pubkeys:   make(map[string]ProviderRecord),
		domains:   make(map[string]ProviderRecord),
	}
	for i, rec := range records {
		rec.Key = strings.TrimSpace(rec.Key)
		if !rec.KeyKind.Valid() {
			return nil, fmt.Errorf("provider record %d: unknown key kind %q", i, rec.KeyKind)
		}
		if rec.Key == "" || strings.TrimSpace(rec.Name) == "" {
			return nil, fmt.Errorf("provider record %d: key and name are required", i)
		}

		var index map[string]ProviderRecord
		key := rec.Key
		switch rec.KeyKind {
		case KeyKindAddress:
			index = r.addresses
			key = addressKey(key)
		case KeyKindPubkey:
			index = r.pubkeys
			key = strings.ToLower(key)
		case KeyKindDomain:
			index = r.domains
			key = strings.TrimSuffix(strings.ToLower(key), ".")
		case KeyKindInvoicePattern:
			rec.Key = strings.ToLower(key)
			for _, p := range r.patterns {
				if p.Key == rec.Key {
					return nil, fmt.Errorf("provider record %d: duplicate invoice pattern %q", i, rec.Key)
				}
			}
			r.patterns = append(r.patterns, rec)
			r.records = append(r.records, rec)
			continue
		}
		if _, exists := index[key]; exists {
			return nil, fmt.Errorf("provider record %d: duplicate %s %q", i, rec.KeyKind, rec.Key)
		}
		index[key] = rec
		r.records = append(r.records, rec)
	}
	return r, nil
}

// MustNew is New for tables known to be valid at compile time.
func MustNew(records ...ProviderRecord) *Registry {
	r, err := New(records...)
	if err != nil {
		panic(err)
	}
	return r
}

// LookupAddress matches a Bitcoin address exactly. Bech32 addresses are
// case-insensitive and compared lowercased.
func (r *Registry) LookupAddress(address string) (ProviderRecord, bool) {
	rec, ok := r.addresses[addressKey(address)]
	return rec, ok
}

// LookupInvoice returns the first invoice pattern contained in the invoice,
// ignoring case.
func (r *Registry) LookupInvoice(invoice string) (ProviderRecord, bool) {
	lower := strings.ToLower(invoice)
	for _, p := range r.patterns {
		if strings.Contains(lower, p.Key) {
			return p, true
		}
	}
	return ProviderRecord{}, false
}

// LookupDomain accepts a bare host or a URL. An exact host match wins;
// otherwise the longest registered parent domain is used.
func (r *Registry) LookupDomain(hostOrURL string) (ProviderRecord, bool) {
	host := HostOf(hostOrURL)
	if host == "" {
		return ProviderRecord{}, false
	}
	if rec, ok := r.domains[host]; ok {
		return rec, true
	}
	parent := host
	for {
		i := strings.IndexByte(parent, '.')
		if i < 0 {
			return ProviderRecord{}, false
		}
		parent = parent[i+1:]
		if rec, ok := r.domains[parent]; ok {
			return rec, true
		}
	}
}

// LookupPubkey matches a Lightning node public key.
func (r *Registry) LookupPubkey(pubkey string) (ProviderRecord, bool) {
	rec, ok := r.pubkeys[strings.ToLower(strings.TrimSpace(pubkey))]
	return rec, ok
}

// All returns a copy of every record sorted by kind then key.
func (r *Registry) All() []ProviderRecord {
	out := make([]ProviderRecord, len(r.records))
	copy(out, r.records)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].KeyKind != out[j].KeyKind {
			return out[i].KeyKind < out[j].KeyKind
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.records)
}

// HostOf extracts the lowercased host, without port, from a URL or bare host.
func HostOf(hostOrURL string) string {
	s := strings.TrimSpace(hostOrURL)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "//" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
}

func addressKey(address string) string {
	address = strings.TrimSpace(address)
	if len(address) >= 3 && strings.EqualFold(address[:3], "bc1") {
		return strings.ToLower(address)
	}
	return address
}
