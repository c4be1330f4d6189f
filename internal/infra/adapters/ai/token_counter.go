package ai

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"cledumemoire/internal/domain/ports/adapter"
)

var _ adapter.TokenCounter = (*TiktokenCounter)(nil)

const fallbackEncoding = "cl100k_base"

// TiktokenCounter counts tokens with the BPE of the model, falling back to
// cl100k_base and finally to a 4-bytes-per-token estimate when no encoding
// can be loaded (tiktoken fetches its ranks on first use).
type TiktokenCounter struct {
	mu    sync.Mutex
	cache map[string]*tiktoken.Tiktoken
}

func NewTiktokenCounter() *TiktokenCounter {
	return &TiktokenCounter{cache: make(map[string]*tiktoken.Tiktoken)}
}

func (c *TiktokenCounter) Count(model, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	enc := c.encoding(model)
	if enc == nil {
		return estimateTokens(text), nil
	}
	return len(enc.Encode(text, nil, nil)), nil
}

func (c *TiktokenCounter) encoding(model string) *tiktoken.Tiktoken {
	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.cache[model]; ok {
		return enc
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
	}
	if err != nil {
		enc = nil
	}
	c.cache[model] = enc
	return enc
}

func estimateTokens(text string) int {
	n := (len(text) + 3) / 4
	if r := utf8.RuneCountInString(text) / 4; r > n {
		n = r
	}
	return n
}
