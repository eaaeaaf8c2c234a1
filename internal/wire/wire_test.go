package wire

import (
	"bytes"
	"errors"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	for _, payload := range [][]byte{
		[]byte("hello"),
		{},
		bytes.Repeat([]byte{0xAB}, 1<<16),
	} {
		framed := Encode(payload)
		got, err := Decode(framed)
		if err != nil {
			t.Fatalf("Decode(Encode(%d bytes)): %v", len(payload), err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("payload mismatch: got %d bytes, want %d", len(got), len(payload))
		}
	}
}

func TestDecodeZeroCopy(t *testing.T) {
	framed := Encode([]byte("abc"))
	got, err := Decode(framed)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	framed[headerLen] = 'X'
	if got[0] != 'X' {
		t.Fatalf("Decode copied the payload; expected a view into the frame")
	}
}

func TestDecodeRejectsCorruptFrames(t *testing.T) {
	valid := Encode([]byte("payload"))

	cases := map[string][]byte{
		"empty":          {},
		"short":          valid[:headerLen-1],
		"bad_magic":      append([]byte("XXXX"), valid[4:]...),
		"bad_version":    append(append([]byte{}, valid[:4]...), append([]byte{99}, valid[5:]...)...),
		"trailing_bytes": append(append([]byte{}, valid...), 0x00),
		"truncated_body": valid[:len(valid)-2],
		"length_lies":    func() []byte { b := append([]byte{}, valid...); b[8]++; return b }(),
	}
	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(b); !errors.Is(err, ErrCorrupt) {
				t.Fatalf("Decode(%s): err = %v, want ErrCorrupt", name, err)
			}
		})
	}
}
