package codec

// Bytes is an identity codec for []byte values: Encode/Decode return the
// input unchanged. Useful when the value type is already a raw byte slice
// and only the cache's framing and indexing are wanted.
type Bytes struct{}

func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return b, nil }

// String converts to and from UTF-8 bytes with no validation. This is the
// natural codec for prefix-token caches, where values are namespace tokens.
type String struct{}

func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (String) Decode(b []byte) (string, error) { return string(b), nil }
