package rag

import (
	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter measures prompt size for context budgeting.
type TokenCounter interface {
	Count(text string) int
}

// TiktokenCounter counts tokens with the model's actual BPE encoding.
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenCounter resolves the encoding for model. It returns an error
// when the model is unknown to the tokenizer tables; callers should fall
// back to EstimateCounter in that case.
func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, err
	}
	return &TiktokenCounter{encoding: enc}, nil
}

func (c *TiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.encoding.Encode(text, nil, nil))
}

// EstimateCounter approximates tokens as len/4, the usual rule of thumb for
// English text. Used when no exact encoding is available.
type EstimateCounter struct{}

func (EstimateCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	n := len(text) / 4
	if n == 0 {
		n = 1
	}
	return n
}

// NewTokenCounter returns an exact counter for model, or an estimate-based
// one when the model has no known encoding.
func NewTokenCounter(model string) TokenCounter {
	if c, err := NewTiktokenCounter(model); err == nil {
		return c
	}
	return EstimateCounter{}
}
