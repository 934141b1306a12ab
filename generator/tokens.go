package generator

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// TokenCounter estimates prompt sizes with tiktoken. Models tiktoken does not
// know (local ones included) are counted with o200k_base.
type TokenCounter struct {
	mu     sync.Mutex
	codecs map[string]tokenizer.Codec
}

func NewTokenCounter() *TokenCounter {
	return &TokenCounter{codecs: make(map[string]tokenizer.Codec)}
}

func (c *TokenCounter) Count(model, text string) int {
	codec := c.codec(model)
	if codec == nil {
		return len(text) / 4
	}
	ids, _, err := codec.Encode(text)
	if err != nil {
		return len(text) / 4
	}
	return len(ids)
}

func (c *TokenCounter) codec(model string) tokenizer.Codec {
	c.mu.Lock()
	defer c.mu.Unlock()
	if codec, ok := c.codecs[model]; ok {
		return codec
	}
	codec, err := tokenizer.ForModel(tokenizer.Model(model))
	if err != nil {
		codec, err = tokenizer.Get(tokenizer.O200kBase)
		if err != nil {
			return nil
		}
	}
	c.codecs[model] = codec
	return codec
}
