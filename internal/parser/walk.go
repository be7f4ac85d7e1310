package parser

import "strings"

// DefaultWalkLimit caps the product-shaped-object search so a pathological
// payload cannot blow up memory or runtime.
const DefaultWalkLimit = 5000

var nameKeys = map[string]bool{"name": true, "title": true}

var priceKeys = map[string]bool{"price": true, "prices": true, "currentprice": true}

// LooksLikeProduct is the duck-typed test used across all strategies: a
// dictionary-shaped object carrying both a name-like and a price-like key.
func LooksLikeProduct(obj map[string]any) bool {
	var hasName, hasPrice bool
	for k := range obj {
		lk := strings.ToLower(k)
		if nameKeys[lk] {
			hasName = true
		}
		if priceKeys[lk] {
			hasPrice = true
		}
	}
	return hasName && hasPrice
}

// FindProducts traverses a decoded JSON value and collects objects that
// look like products, up to limit matches. The traversal is an explicit
// iterative stack walk, not recursion, so adversarial nesting depth cannot
// exhaust the goroutine stack.
func FindProducts(v any, limit int) []map[string]any {
	if limit <= 0 {
		limit = DefaultWalkLimit
	}
	var out []map[string]any
	stack := []any{v}
	for len(stack) > 0 && len(out) < limit {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch node := cur.(type) {
		case map[string]any:
			if LooksLikeProduct(node) {
				out = append(out, node)
				if len(out) >= limit {
					return out
				}
			}
			for _, child := range node {
				stack = append(stack, child)
			}
		case []any:
			for _, child := range node {
				stack = append(stack, child)
			}
		}
	}
	return out
}
