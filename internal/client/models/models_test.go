package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_DecodeKeepsServerTotal(t *testing.T) {
	raw := `{"items":[
		{"id":1,"product_id":10,"product":{"id":10,"name":"Mug","price":"4.10"},"quantity":2},
		{"id":2,"product_id":11,"product":{"id":11,"name":"Tea","price":3.3},"quantity":1}
	],"total":11.49}`

	var c Cart
	require.NoError(t, json.Unmarshal([]byte(raw), &c))

	// the server applied a discount; the client must not recompute it
	assert.True(t, c.Total.Equal(decimal.RequireFromString("11.49")))
	assert.Equal(t, 3, c.Count())

	l, ok := c.Line(10)
	require.True(t, ok)
	assert.Equal(t, "Mug", l.Product.Name)
	assert.True(t, l.Product.Price.Equal(decimal.RequireFromString("4.1")))

	_, ok = c.Line(99)
	assert.False(t, ok)
}

func TestCart_CloneIsDeep(t *testing.T) {
	c := &Cart{Items: []CartLine{{ProductID: 1, Quantity: 1}}, Total: decimal.NewFromInt(5)}
	cp := c.Clone()
	cp.Items[0].Quantity = 7

	assert.Equal(t, 1, c.Items[0].Quantity)
	assert.Nil(t, (*Cart)(nil).Clone())
	assert.Equal(t, 0, (*Cart)(nil).Count())
}

func TestProduct_SnapshotIsAValueCopy(t *testing.T) {
	p := Product{ID: 3, Name: "Old title", Price: decimal.NewFromInt(10)}
	snap := p.Snapshot()

	p.Name = "New title"
	p.Price = decimal.NewFromInt(99)

	assert.Equal(t, "Old title", snap.Name)
	assert.True(t, snap.Price.Equal(decimal.NewFromInt(10)))
}

func TestCredentials_UsesEmail(t *testing.T) {
	assert.True(t, Credentials{Email: "a@b.c", Password: "x"}.UsesEmail())
	assert.False(t, Credentials{Username: "a", Email: "a@b.c"}.UsesEmail())
	assert.False(t, Credentials{Username: "a"}.UsesEmail())
}

func TestParseOrderStatus(t *testing.T) {
	st, err := ParseOrderStatus("shipping")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusShipping, st)

	_, err = ParseOrderStatus("lost")
	require.Error(t, err)
}

func TestUserUpdate_OmitsNilFields(t *testing.T) {
	email := "new@example.com"
	b, err := json.Marshal(UserUpdate{Email: &email})
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"new@example.com"}`, string(b))
}
