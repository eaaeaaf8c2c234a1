package index

import "testing"

// Key layout is a compatibility surface: entries written by one release must
// be enumerable by the next.
func TestRedisIndexKeyShapes(t *testing.T) {
	s := NewRedisIndex(nil, "user")

	if got, want := s.tokenKey("demo"), "pfx:user:tok:demo"; got != want {
		t.Fatalf("tokenKey = %q, want %q", got, want)
	}
	if got, want := s.liveKey(), "pfx:user:live"; got != want {
		t.Fatalf("liveKey = %q, want %q", got, want)
	}
	if got, want := s.memberKey("abc"), "pfx:user:m:abc"; got != want {
		t.Fatalf("memberKey = %q, want %q", got, want)
	}
}
