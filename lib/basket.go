package lib

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// Basket maps a product id to the quantity the shopper wants. Quantities are
// always positive; a line that would drop to zero is removed instead.
type Basket map[string]int

// DecodeBasket reads a basket cookie value. Absent or unreadable input gives
// an empty basket, never an error, and lines with a blank id or a
// non-positive quantity are dropped.
func DecodeBasket(raw string) Basket {
	basket := Basket{}
	if raw == "" {
		return basket
	}

	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return basket
	}

	var decoded map[string]int
	if err := json.Unmarshal(data, &decoded); err != nil {
		return basket
	}

	for id, qty := range decoded {
		if id == "" || qty <= 0 {
			continue
		}
		basket[id] = qty
	}
	return basket
}

// EncodeBasket is the inverse of DecodeBasket. JSON is wrapped in base64url
// because cookie values may not carry quotes or commas.
func EncodeBasket(b Basket) string {
	if len(b) == 0 {
		return ""
	}

	data, err := json.Marshal(map[string]int(b))
	if err != nil {
		// map[string]int always marshals
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

// Add increments an existing line or inserts a new one. Non-positive deltas
// are ignored and the quantity saturates at math.MaxInt.
func (b Basket) Add(productID string, delta int) {
	if productID == "" || delta <= 0 {
		return
	}
	b[productID] = addQuantity(b[productID], delta)
}

// addQuantity sums two non-negative quantities without wrapping.
func addQuantity(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// SetQuantity overwrites a line; qty <= 0 removes it.
func (b Basket) SetQuantity(productID string, qty int) {
	if qty <= 0 {
		delete(b, productID)
		return
	}
	if productID == "" {
		return
	}
	b[productID] = qty
}

func (b Basket) Remove(productID string) {
	delete(b, productID)
}

func (b Basket) Has(productID string) bool {
	_, ok := b[productID]
	return ok
}

func (b Basket) IsEmpty() bool {
	return len(b) == 0
}

// ItemCount is the sum of all quantities.
func (b Basket) ItemCount() int {
	total := 0
	for _, qty := range b {
		total = addQuantity(total, qty)
	}
	return total
}

// BasketEntry is a basket line keyed by its numeric product id.
type BasketEntry struct {
	ProductID int64
	Quantity  int
}

// Entries returns the lines ordered by product id, merging keys that name the
// same id ("7" and "07"). Keys that are not positive integers are returned
// separately.
func (b Basket) Entries() (entries []BasketEntry, invalid []string) {
	merged := make(map[int64]int, len(b))
	for key, qty := range b {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil || id <= 0 {
			invalid = append(invalid, key)
			continue
		}
		merged[id] = addQuantity(merged[id], qty)
	}

	for id, qty := range merged {
		entries = append(entries, BasketEntry{ProductID: id, Quantity: qty})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ProductID < entries[j].ProductID })
	sort.Strings(invalid)
	return entries, invalid
}

// BasketKey converts a product id into its basket key.
func BasketKey(productID int64) string {
	return strconv.FormatInt(productID, 10)
}
