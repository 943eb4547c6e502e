package utils

import (
	"errors"
	"testing"
)

func TestLazyLoadsOnce(t *testing.T) {
	calls := 0
	l := NewLazy(func() (int, error) {
		calls++
		return 42, nil
	})

	for i := 0; i < 3; i++ {
		v, err := l.Get()
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if v != 42 {
			t.Errorf("Get: got %d, want 42", v)
		}
	}
	if calls != 1 {
		t.Errorf("load calls: got %d, want 1", calls)
	}
}

func TestLazyDoesNotCacheErrors(t *testing.T) {
	calls := 0
	l := NewLazy(func() (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("not yet")
		}
		return "ready", nil
	})

	if _, err := l.Get(); err == nil {
		t.Fatal("first Get should fail")
	}
	v, err := l.Get()
	if err != nil || v != "ready" {
		t.Errorf("second Get: got (%q, %v), want (ready, nil)", v, err)
	}
}
