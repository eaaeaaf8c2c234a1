// Package wire frames cache entries so reads can tell a valid entry from
// foreign or corrupt bytes under the owned keyspace. Decode is strict: any
// header mismatch or trailing byte is ErrCorrupt, and the caller self-heals
// by deleting the entry.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const version byte = 1

var (
	ErrCorrupt = errors.New("prefixcache: corrupt entry")
	magic4     = [...]byte{'P', 'F', 'X', 'C'}
)

const headerLen = 4 + 1 + 4 // magic | ver | vlen

// Encode frames payload as: magic(4) | ver(1) | vlen(u32 be) | payload(vlen).
func Encode(payload []byte) []byte {
	out := make([]byte, headerLen+len(payload))
	copy(out, magic4[:])
	out[4] = version
	binary.BigEndian.PutUint32(out[5:9], uint32(len(payload)))
	copy(out[headerLen:], payload)
	return out
}

// Decode returns the payload subslice (zero-copy into b).
func Decode(b []byte) ([]byte, error) {
	if len(b) < headerLen || !bytes.Equal(b[:4], magic4[:]) || b[4] != version {
		return nil, ErrCorrupt
	}
	vlen := int(binary.BigEndian.Uint32(b[5:9]))
	if vlen < 0 || vlen != len(b)-headerLen { // strict: no trailing bytes
		return nil, ErrCorrupt
	}
	return b[headerLen:], nil
}
