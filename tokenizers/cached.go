package tokenizers

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
	"github.com/wbrown/masked_lm/types"
)

// Cached memoizes another tokenizer's output per input text in an ARC cache.
type Cached struct {
	Inner     Tokenizer
	cache     *lru.ARCCache
	LruHits   atomic.Uint64
	LruMisses atomic.Uint64
}

func NewCached(inner Tokenizer, size int) (*Cached, error) {
	cache, err := lru.NewARC(size)
	if err != nil {
		return nil, err
	}
	return &Cached{Inner: inner, cache: cache}, nil
}

// Tokenize returns a fresh copy of the cached tokens, so callers may modify
// the result.
func (c *Cached) Tokenize(text string) (types.Tokens, error) {
	if cached, ok := c.cache.Get(text); ok {
		c.LruHits.Add(1)
		return append(types.Tokens(nil), cached.(types.Tokens)...), nil
	}
	c.LruMisses.Add(1)
	tokens, err := c.Inner.Tokenize(text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(text, append(types.Tokens(nil), tokens...))
	return tokens, nil
}

func (c *Cached) Len() int {
	return c.cache.Len()
}
