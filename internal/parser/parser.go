// Package parser holds the pure text side of the pipeline: pack, brand and
// price extraction from free-form titles, normalization of heterogeneous
// API payloads onto the canonical row shape, and the product-shaped-object
// search over untyped JSON. No I/O, deterministic.
package parser
