package payload

import (
	"bytes"
	"encoding/json"
)

// QueryParam is one distinct query key and every value it appeared with.
type QueryParam struct {
	Key    string
	Values []string
}

// QueryParams keeps URI query parameters in first-appearance order. Repeated
// keys accumulate values under a single entry.
type QueryParams []QueryParam

// Add appends value under key, creating the entry on first sight.
func (q *QueryParams) Add(key, value string) {
	for i := range *q {
		if (*q)[i].Key == key {
			(*q)[i].Values = append((*q)[i].Values, value)
			return
		}
	}
	*q = append(*q, QueryParam{Key: key, Values: []string{value}})
}

// Get returns the first value for key.
func (q QueryParams) Get(key string) (string, bool) {
	for _, p := range q {
		if p.Key == key && len(p.Values) > 0 {
			return p.Values[0], true
		}
	}
	return "", false
}

// Values returns every value recorded for key.
func (q QueryParams) Values(key string) []string {
	for _, p := range q {
		if p.Key == key {
			return append([]string(nil), p.Values...)
		}
	}
	return nil
}

// MarshalJSON renders an object in key order; single values collapse to a
// scalar, repeated keys stay lists.
func (q QueryParams) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range q {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var value []byte
		if len(p.Values) == 1 {
			value, err = json.Marshal(p.Values[0])
		} else {
			value, err = json.Marshal(p.Values)
		}
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
