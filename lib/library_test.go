package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextToInstance(t *testing.T) {
	assert.JSONEq(t, `{"tokens": ["The", "[MASK]", "sat", "."],
		"mask_positions": [1], "target_ids": ["cat"]}`,
		wrapTextToInstance("just_spaces", "The [MASK] sat .", "cat"))

	assert.JSONEq(t, `{"tokens": ["[MASK]", "and", "[MASK]"],
		"mask_positions": [0, 2], "target_ids": []}`,
		wrapTextToInstance("", "[MASK] and [MASK]", " "))
}

func TestTextToInstanceErrors(t *testing.T) {
	assert.JSONEq(t, `{"error": "found 1 mask tokens and 2 targets"}`,
		wrapTextToInstance("just_spaces", "[MASK] x", "a b"))
	assert.Contains(t, wrapTextToInstance("bpe", "[MASK]", ""),
		"unknown tokenizer type")
}

func BenchmarkTextToInstance(b *testing.B) {
	sentence := "It was the best of times , it was the [MASK] of times ."
	for i := 0; i < b.N; i++ {
		wrapTextToInstance("just_spaces", sentence, "worst")
	}
}
