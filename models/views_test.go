package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []Article{
	{ID: 1, Name: "Pen", PurchasePrice: 0.5, Margin: 0.2},
	{ID: 2, Name: "Desk", PurchasePrice: 50, Margin: 20},
}

func TestPublicViewHidesCostFields(t *testing.T) {
	raw, err := json.Marshal(Project(sample, ToPublic))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"name":"Pen"},{"id":2,"name":"Desk"}]`, string(raw))

	one, err := json.Marshal(ToPublic(sample[0]))
	require.NoError(t, err)
	assert.NotContains(t, string(one), "purchasePrice")
	assert.NotContains(t, string(one), "margin")
}

func TestAdminViewKeepsEveryField(t *testing.T) {
	raw, err := json.Marshal(Project(sample, ToAdmin))
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":1,"name":"Pen","purchasePrice":0.5,"margin":0.2},
		{"id":2,"name":"Desk","purchasePrice":50,"margin":20}
	]`, string(raw))
}

func TestAdminViewMatchesEntityEncoding(t *testing.T) {
	entity, err := json.Marshal(sample[1])
	require.NoError(t, err)
	admin, err := json.Marshal(ToAdmin(sample[1]))
	require.NoError(t, err)
	assert.JSONEq(t, string(entity), string(admin))
}

func TestProjectEmptyRendersArray(t *testing.T) {
	raw, err := json.Marshal(Project(nil, ToPublic))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}
