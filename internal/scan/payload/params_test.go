package payload

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryParams(t *testing.T) {
	var q QueryParams
	q.Add("amount", "0.1")
	q.Add("label", "coffee")
	q.Add("label", "tea")

	t.Run("get returns first value", func(t *testing.T) {
		v, ok := q.Get("label")
		require.True(t, ok)
		assert.Equal(t, "coffee", v)

		_, ok = q.Get("message")
		assert.False(t, ok)
	})

	t.Run("values returns a copy", func(t *testing.T) {
		vals := q.Values("label")
		vals[0] = "changed"
		assert.Equal(t, []string{"coffee", "tea"}, q.Values("label"))
	})

	t.Run("json collapses singletons and keeps order", func(t *testing.T) {
		b, err := json.Marshal(q)
		require.NoError(t, err)
		assert.Equal(t, `{"amount":"0.1","label":["coffee","tea"]}`, string(b))
	})
}

func TestBitcoinPaymentJSONOmitsEmptyParams(t *testing.T) {
	p := &BitcoinPayment{Base: Base{RawContent: "bitcoin:1abc"}, Address: "1abc"}
	b, err := json.Marshal(p)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.NotContains(t, m, "params")
	assert.Contains(t, m, "amount_satoshis")
	assert.Nil(t, m["amount_satoshis"])
}
