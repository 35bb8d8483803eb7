package tokens

import (
	"errors"
	"fmt"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE encoding used when none is configured.
const DefaultEncoding = "cl100k_base"

// ErrEncoding is returned when a tiktoken encoding cannot be loaded.
var ErrEncoding = errors.New("token encoding unavailable")

// TiktokenCounter counts tokens with a real BPE tokenizer.
// Loading an encoding may fetch the rank file on first use, so construction
// can fail; Count itself never does.
type TiktokenCounter struct {
	encoding string
	enc      *tiktoken.Tiktoken
}

// NewTiktokenCounter loads the named encoding. An empty name selects
// DefaultEncoding.
func NewTiktokenCounter(encoding string) (*TiktokenCounter, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEncoding, encoding, err)
	}
	return &TiktokenCounter{encoding: encoding, enc: enc}, nil
}

// Encoding returns the name of the loaded encoding.
func (c *TiktokenCounter) Encoding() string {
	return c.encoding
}

// Count returns the number of BPE tokens in text.
func (c *TiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.enc.Encode(text, nil, nil))
}

// FitsInLimit returns true if the text fits within the token limit.
func (c *TiktokenCounter) FitsInLimit(text string, limit int) bool {
	return c.Count(text) <= limit
}
