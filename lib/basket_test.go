package lib

import (
	"encoding/base64"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasketRoundTrip(t *testing.T) {
	baskets := []Basket{
		{},
		{"1": 1},
		{"1": 3, "20": 1, "32": 99},
		{"7": 1000000},
	}

	for _, b := range baskets {
		got := DecodeBasket(EncodeBasket(b))
		assert.Equal(t, b, got)
	}
}

func TestDecodeBasketForgivesBadInput(t *testing.T) {
	inputs := []string{
		"",
		"not base64 at all!",
		base64.RawURLEncoding.EncodeToString([]byte("{broken json")),
		base64.RawURLEncoding.EncodeToString([]byte(`["1", 2]`)),
		base64.RawURLEncoding.EncodeToString([]byte(`{"1": 2.5}`)),
		`{"1": 2}`,
	}

	for _, raw := range inputs {
		b := DecodeBasket(raw)
		require.NotNil(t, b, "input %q", raw)
		assert.Empty(t, b, "input %q", raw)
	}
}

func TestDecodeBasketDropsNonPositiveLines(t *testing.T) {
	raw := base64.RawURLEncoding.EncodeToString([]byte(`{"1": 2, "2": 0, "3": -4, "": 5}`))

	assert.Equal(t, Basket{"1": 2}, DecodeBasket(raw))
}

func TestEncodeBasketIsCookieSafe(t *testing.T) {
	encoded := EncodeBasket(Basket{"1": 2, "15": 3})

	assert.NotContains(t, encoded, `"`)
	assert.NotContains(t, encoded, ",")
	assert.NotContains(t, encoded, ";")
	assert.NotContains(t, encoded, " ")
}

func TestBasketAdd(t *testing.T) {
	b := Basket{}

	b.Add("4", 2)
	b.Add("4", 3)
	b.Add("9", 1)
	b.Add("9", 0)
	b.Add("9", -5)

	assert.Equal(t, Basket{"4": 5, "9": 1}, b)
	assert.Equal(t, 6, b.ItemCount())
}

func TestBasketSetQuantity(t *testing.T) {
	b := Basket{"1": 3, "2": 4, "3": 5}

	b.SetQuantity("1", 7)
	b.SetQuantity("2", 0)
	b.SetQuantity("3", -1)
	b.SetQuantity("4", 2)

	assert.Equal(t, Basket{"1": 7, "4": 2}, b)
}

func TestBasketRemove(t *testing.T) {
	b := Basket{"1": 3}

	b.Remove("2")
	assert.Equal(t, Basket{"1": 3}, b)

	b.Remove("1")
	assert.True(t, b.IsEmpty())
	assert.Equal(t, "", EncodeBasket(b))
}

func TestBasketEntries(t *testing.T) {
	b := Basket{"20": 1, "3": 2, "03": 1, "abc": 4, "-1": 1}

	entries, invalid := b.Entries()

	assert.Equal(t, []BasketEntry{{ProductID: 3, Quantity: 3}, {ProductID: 20, Quantity: 1}}, entries)
	assert.Equal(t, []string{"-1", "abc"}, invalid)
}

func TestBasketAddSaturates(t *testing.T) {
	b := Basket{}
	b.Add("7", math.MaxInt)
	b.Add("7", math.MaxInt)
	assert.Equal(t, math.MaxInt, b["7"])

	decoded := DecodeBasket(EncodeBasket(b))
	assert.Equal(t, Basket{"7": math.MaxInt}, decoded)
	assert.Equal(t, math.MaxInt, decoded.ItemCount())
}

func TestBasketEntriesMergeSaturates(t *testing.T) {
	b := Basket{"7": math.MaxInt, "07": 5, "8": 1}

	entries, _ := b.Entries()

	assert.Equal(t, []BasketEntry{{ProductID: 7, Quantity: math.MaxInt}, {ProductID: 8, Quantity: 1}}, entries)
	assert.Equal(t, math.MaxInt, b.ItemCount())
}
