package parser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindProductsNested(t *testing.T) {
	payload := `{
		"data": {
			"category": {
				"sections": [
					{"items": [{"wrapper": {"name": "Молоко 2л", "price": 52.4}}]},
					{"meta": {"total": 120}}
				]
			}
		}
	}`

	var decoded any
	require.NoError(t, json.Unmarshal([]byte(payload), &decoded))

	products := FindProducts(decoded, 0)
	require.Len(t, products, 1)
	assert.Equal(t, "Молоко 2л", products[0]["name"])
}

func TestFindProductsIgnoresNonProducts(t *testing.T) {
	var decoded any
	require.NoError(t, json.Unmarshal([]byte(`{
		"named": {"name": "немає ціни"},
		"priced": {"price": 10},
		"both": {"title": "Кефір", "currentPrice": 45.9}
	}`), &decoded))

	products := FindProducts(decoded, 0)
	require.Len(t, products, 1)
	assert.Equal(t, "Кефір", products[0]["title"])
}

func TestFindProductsCap(t *testing.T) {
	items := make([]any, 0, 50)
	for i := 0; i < 50; i++ {
		items = append(items, map[string]any{"name": "x", "price": 1.0})
	}

	products := FindProducts(items, 10)
	assert.Len(t, products, 10)
}

func TestFindProductsDeepNesting(t *testing.T) {
	// A chain deep enough to crash a recursive walk must still terminate.
	leaf := map[string]any{"name": "глибокий", "prices": map[string]any{"current": 9.99}}
	var node any = leaf
	for i := 0; i < 100000; i++ {
		node = map[string]any{"child": node}
	}

	products := FindProducts(node, 0)
	require.Len(t, products, 1)
	assert.Equal(t, "глибокий", products[0]["name"])
}

func TestLooksLikeChallenge(t *testing.T) {
	assert.True(t, LooksLikeChallenge("<html>Just a Moment...</html>", ""))
	assert.True(t, LooksLikeChallenge(`<div id="cf-challenge-running"></div>`, ""))
	assert.True(t, LooksLikeChallenge("", "Challenge Validation"))
	assert.False(t, LooksLikeChallenge("<html><title>Молочні продукти</title></html>", "Молочні продукти"))
}
