package index

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func newTestIndex(t *testing.T) *LocalIndex {
	t.Helper()
	s := NewLocalIndex(0, 0) // no background pruning in tests
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestObserveRecordsUnderMatchingTokens(t *testing.T) {
	ctx := context.Background()
	s := newTestIndex(t)

	if err := s.RegisterToken(ctx, "demo", "abc"); err != nil {
		t.Fatalf("RegisterToken: %v", err)
	}
	for _, k := range []string{"abc2", "abc1", "xxx1", "ab"} {
		if err := s.Observe(ctx, k); err != nil {
			t.Fatalf("Observe %q: %v", k, err)
		}
	}

	got, err := s.Drop(ctx, "demo", "abc")
	if err != nil {
		t.Fatalf("Drop: %v", err)
	}
	want := []string{"abc1", "abc2"} // sorted, non-matching keys excluded
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Drop members = %v, want %v", got, want)
	}
}

func TestObserveMatchesMultipleTokens(t *testing.T) {
	ctx := context.Background()
	s := newTestIndex(t)

	if err := s.RegisterToken(ctx, "pa", "ab"); err != nil {
		t.Fatalf("RegisterToken: %v", err)
	}
	if err := s.RegisterToken(ctx, "pb", "abc"); err != nil {
		t.Fatalf("RegisterToken: %v", err)
	}
	if err := s.Observe(ctx, "abcd"); err != nil {
		t.Fatalf("Observe: %v", err)
	}

	for _, tc := range []struct{ prefixKey, token string }{{"pa", "ab"}, {"pb", "abc"}} {
		got, err := s.Drop(ctx, tc.prefixKey, tc.token)
		if err != nil {
			t.Fatalf("Drop %q: %v", tc.token, err)
		}
		if !reflect.DeepEqual(got, []string{"abcd"}) {
			t.Fatalf("Drop %q = %v", tc.token, got)
		}
	}
}

func TestRegisterTokenReplacementDiscardsOldScope(t *testing.T) {
	ctx := context.Background()
	s := newTestIndex(t)

	if err := s.RegisterToken(ctx, "demo", "v1-"); err != nil {
		t.Fatalf("RegisterToken: %v", err)
	}
	if err := s.Observe(ctx, "v1-a"); err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if err := s.RegisterToken(ctx, "demo", "v2-"); err != nil {
		t.Fatalf("RegisterToken replacement: %v", err)
	}
	if err := s.Observe(ctx, "v2-a"); err != nil {
		t.Fatalf("Observe: %v", err)
	}

	// the retired token's membership is gone
	if got, err := s.Drop(ctx, "demo", "v1-"); err != nil || len(got) != 0 {
		t.Fatalf("Drop retired token = %v, err %v", got, err)
	}
	got, err := s.Drop(ctx, "demo", "v2-")
	if err != nil || !reflect.DeepEqual(got, []string{"v2-a"}) {
		t.Fatalf("Drop live token = %v, err %v", got, err)
	}
}

func TestRegisterSameTokenTwiceKeepsMembers(t *testing.T) {
	ctx := context.Background()
	s := newTestIndex(t)

	if err := s.RegisterToken(ctx, "demo", "abc"); err != nil {
		t.Fatalf("RegisterToken: %v", err)
	}
	if err := s.Observe(ctx, "abc1"); err != nil {
		t.Fatalf("Observe: %v", err)
	}
	// same token re-registered (idempotent refresh, not a re-issue)
	if err := s.RegisterToken(ctx, "demo", "abc"); err != nil {
		t.Fatalf("RegisterToken again: %v", err)
	}

	got, err := s.Drop(ctx, "demo", "abc")
	if err != nil || !reflect.DeepEqual(got, []string{"abc1"}) {
		t.Fatalf("Drop = %v, err %v", got, err)
	}
}

func TestDropUnknownToken(t *testing.T) {
	ctx := context.Background()
	s := newTestIndex(t)

	got, err := s.Drop(ctx, "demo", "never-registered")
	if err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Drop unknown token = %v", got)
	}
}

func TestCleanupPrunesInactiveTokens(t *testing.T) {
	ctx := context.Background()
	s := newTestIndex(t)

	if err := s.RegisterToken(ctx, "old", "old-"); err != nil {
		t.Fatalf("RegisterToken: %v", err)
	}
	if err := s.Observe(ctx, "old-1"); err != nil {
		t.Fatalf("Observe: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if err := s.RegisterToken(ctx, "fresh", "fresh-"); err != nil {
		t.Fatalf("RegisterToken: %v", err)
	}

	s.Cleanup(10 * time.Millisecond)

	if got, _ := s.Drop(ctx, "old", "old-"); len(got) != 0 {
		t.Fatalf("pruned token still has members: %v", got)
	}
	if _, ok := s.tokens["fresh-"]; !ok {
		t.Fatalf("fresh token was pruned")
	}
}

func TestCloseStopsCleanupLoop(t *testing.T) {
	s := NewLocalIndex(time.Millisecond, time.Minute)
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// second close is a no-op
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close twice: %v", err)
	}
}
