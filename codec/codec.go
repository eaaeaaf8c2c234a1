// Package codec provides the serialization contract between caller values
// and the byte store, plus ready-made implementations: JSON, Msgpack, CBOR,
// Protobuf, and the identity codecs Bytes and String.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
